// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ikmak/bson/decimal"
	"github.com/ikmak/bson/objectid"
)

// Value represents a BSON value with a type tag and the raw value bytes.
// Like Element, a Value borrows its Data from the buffer it was read from.
//
// The typed accessors return ElementTypeError when the requested type is
// incompatible with the value's tag. BSON's implicit widening rules apply:
// Int64 accepts an int32 source and Double accepts int32 and int64
// sources, but there is no implicit narrowing.
type Value struct {
	Type Type
	Data []byte
}

// Validate ensures the value bytes are complete for the value's type.
func (v Value) Validate() error {
	size, err := valueSize(v.Type, v.Data)
	if err != nil {
		return err
	}
	if int(size) > len(v.Data) {
		return NewErrTooSmall()
	}
	return nil
}

// IsNull returns true if the value is the BSON null value.
func (v Value) IsNull() bool {
	return v.Type == TypeNull
}

// HasValue returns true if the value holds something extractable. The check
// is tag based: null, minkey, and maxkey carry no payload.
func (v Value) HasValue() bool {
	switch v.Type {
	case TypeNull, TypeMinKey, TypeMaxKey:
		return false
	default:
		return v.Type.IsValid()
	}
}

// IsNumber returns true if the type of v is a numeric BSON type.
func (v Value) IsNumber() bool {
	switch v.Type {
	case TypeDouble, TypeInt32, TypeInt64, TypeDecimal128:
		return true
	default:
		return false
	}
}

// Double returns the value as a float64. Int32 and int64 sources are
// widened; any other type returns an ElementTypeError.
func (v Value) Double() (float64, error) {
	switch v.Type {
	case TypeDouble:
		f, ok := ReadDouble(v.Data)
		if !ok {
			return 0, NewErrTooSmall()
		}
		return f, nil
	case TypeInt32:
		i32, ok := ReadInt32(v.Data)
		if !ok {
			return 0, NewErrTooSmall()
		}
		return float64(i32), nil
	case TypeInt64:
		i64, ok := ReadInt64(v.Data)
		if !ok {
			return 0, NewErrTooSmall()
		}
		return float64(i64), nil
	default:
		return 0, ElementTypeError{Method: "bson.Value.Double", Type: v.Type}
	}
}

// Int32 returns the value as an int32. Only an int32 source is accepted;
// there is no narrowing from int64 or double.
func (v Value) Int32() (int32, error) {
	if v.Type != TypeInt32 {
		return 0, ElementTypeError{Method: "bson.Value.Int32", Type: v.Type}
	}
	i32, ok := ReadInt32(v.Data)
	if !ok {
		return 0, NewErrTooSmall()
	}
	return i32, nil
}

// Int64 returns the value as an int64. An int32 source is widened.
func (v Value) Int64() (int64, error) {
	switch v.Type {
	case TypeInt64:
		i64, ok := ReadInt64(v.Data)
		if !ok {
			return 0, NewErrTooSmall()
		}
		return i64, nil
	case TypeInt32:
		i32, ok := ReadInt32(v.Data)
		if !ok {
			return 0, NewErrTooSmall()
		}
		return int64(i32), nil
	default:
		return 0, ElementTypeError{Method: "bson.Value.Int64", Type: v.Type}
	}
}

// StringValue returns the value as a string, without the trailing null the
// wire encoding carries.
func (v Value) StringValue() (string, error) {
	if v.Type != TypeString {
		return "", ElementTypeError{Method: "bson.Value.StringValue", Type: v.Type}
	}
	s, ok := readstring(v.Data)
	if !ok {
		return "", NewErrTooSmall()
	}
	return s, nil
}

// StringValueNUL returns the string's bytes including the trailing null,
// as a view into the parent buffer.
func (v Value) StringValueNUL() ([]byte, error) {
	if v.Type != TypeString {
		return nil, ElementTypeError{Method: "bson.Value.StringValueNUL", Type: v.Type}
	}
	l, ok := readLength(v.Data)
	if !ok || l < 1 || len(v.Data[4:]) < int(l) {
		return nil, NewErrTooSmall()
	}
	return v.Data[4 : 4+l], nil
}

// Boolean returns the value as a bool. A byte other than 0x00 or 0x01 is a
// format violation.
func (v Value) Boolean() (bool, error) {
	if v.Type != TypeBoolean {
		return false, ElementTypeError{Method: "bson.Value.Boolean", Type: v.Type}
	}
	return ReadBoolean(v.Data)
}

// DateTime returns the value as milliseconds since the Unix epoch.
func (v Value) DateTime() (DateTime, error) {
	if v.Type != TypeDateTime {
		return 0, ElementTypeError{Method: "bson.Value.DateTime", Type: v.Type}
	}
	dt, ok := ReadDateTime(v.Data)
	if !ok {
		return 0, NewErrTooSmall()
	}
	return DateTime(dt), nil
}

// Time returns the value as a time.Time in UTC.
func (v Value) Time() (time.Time, error) {
	dt, err := v.DateTime()
	if err != nil {
		return time.Time{}, err
	}
	return dt.Time(), nil
}

// Timestamp returns the value as a Timestamp.
func (v Value) Timestamp() (Timestamp, error) {
	if v.Type != TypeTimestamp {
		return Timestamp{}, ElementTypeError{Method: "bson.Value.Timestamp", Type: v.Type}
	}
	t, i, ok := ReadTimestamp(v.Data)
	if !ok {
		return Timestamp{}, NewErrTooSmall()
	}
	return Timestamp{T: t, I: i}, nil
}

// TimestampUint64 returns the timestamp as its packed uint64 wire value.
func (v Value) TimestampUint64() (uint64, error) {
	ts, err := v.Timestamp()
	if err != nil {
		return 0, err
	}
	return ts.Uint64(), nil
}

// Binary returns the value as a Binary. The payload is copied, so the
// result outlives the parent buffer. The deprecated subtype 0x02 inner
// length field is stripped.
func (v Value) Binary() (Binary, error) {
	if v.Type != TypeBinary {
		return Binary{}, ElementTypeError{Method: "bson.Value.Binary", Type: v.Type}
	}
	subtype, data, ok := ReadBinary(v.Data)
	if !ok {
		return Binary{}, NewErrTooSmall()
	}
	owned := make([]byte, len(data))
	copy(owned, data)
	return Binary{Subtype: subtype, Data: owned}, nil
}

// ObjectID returns the value as an objectid.ObjectID.
func (v Value) ObjectID() (objectid.ObjectID, error) {
	if v.Type != TypeObjectID {
		return objectid.NilObjectID, ElementTypeError{Method: "bson.Value.ObjectID", Type: v.Type}
	}
	oid, ok := ReadObjectID(v.Data)
	if !ok {
		return objectid.NilObjectID, NewErrTooSmall()
	}
	return oid, nil
}

// Regex returns the value as a Regex. The options are returned as stored
// on the wire; use NormalizeRegexOptions to sort and validate them.
func (v Value) Regex() (Regex, error) {
	if v.Type != TypeRegex {
		return Regex{}, ElementTypeError{Method: "bson.Value.Regex", Type: v.Type}
	}
	pattern, options, ok := ReadRegex(v.Data)
	if !ok {
		return Regex{}, NewErrTooSmall()
	}
	return Regex{Pattern: pattern, Options: options}, nil
}

// Decimal128 returns the value as a decimal.Decimal128.
func (v Value) Decimal128() (decimal.Decimal128, error) {
	if v.Type != TypeDecimal128 {
		return decimal.Decimal128{}, ElementTypeError{Method: "bson.Value.Decimal128", Type: v.Type}
	}
	d128, ok := ReadDecimal128(v.Data)
	if !ok {
		return decimal.Decimal128{}, NewErrTooSmall()
	}
	return d128, nil
}

// Document returns the value as a *Document. The bytes are copied, so the
// result owns its buffer.
func (v Value) Document() (*Document, error) {
	if v.Type != TypeEmbeddedDocument {
		return nil, ElementTypeError{Method: "bson.Value.Document", Type: v.Type}
	}
	return NewDocumentFromBytes(v.Data)
}

// Array returns a cursor over the value's array items. The cursor fails
// with ErrUnexpectedArrayItemName if the item keys are not "0", "1", … in
// order.
func (v Value) Array() (*ArrayIterator, error) {
	if v.Type != TypeArray {
		return nil, ElementTypeError{Method: "bson.Value.Array", Type: v.Type}
	}
	if _, ok := readLengthBytes(v.Data); !ok {
		return nil, ErrIncompleteDocument
	}
	return newArrayIterator(v.Data), nil
}

// Equal compares v to v2 and returns true if they are equal.
func (v Value) Equal(v2 Value) bool {
	if v.Type != v2.Type {
		return false
	}
	size, err := valueSize(v.Type, v.Data)
	if err != nil {
		return false
	}
	size2, err := valueSize(v2.Type, v2.Data)
	if err != nil {
		return false
	}
	if int(size) > len(v.Data) || int(size2) > len(v2.Data) {
		return false
	}
	return bytes.Equal(v.Data[:size], v2.Data[:size2])
}

// String implements the fmt.Stringer interface.
func (v Value) String() string {
	switch v.Type {
	case TypeDouble:
		f, _ := v.Double()
		return formatDouble(f)
	case TypeString:
		s, _ := v.StringValue()
		return s
	case TypeEmbeddedDocument, TypeArray:
		if doc, err := NewDocumentFromBytes(v.Data); err == nil {
			return doc.String()
		}
		return hex.EncodeToString(v.Data)
	case TypeBinary:
		subtype, data, ok := ReadBinary(v.Data)
		if !ok {
			return hex.EncodeToString(v.Data)
		}
		return fmt.Sprintf(`{"$binary":{"base64":"%s","subType":"%02x"}}`,
			base64.StdEncoding.EncodeToString(data), subtype)
	case TypeObjectID:
		oid, _ := v.ObjectID()
		return fmt.Sprintf(`{"$oid":"%s"}`, oid.Hex())
	case TypeBoolean:
		b, err := v.Boolean()
		if err != nil {
			return "invalid boolean"
		}
		return fmt.Sprintf("%v", b)
	case TypeDateTime:
		dt, _ := v.DateTime()
		return fmt.Sprintf(`{"$date":{"$numberLong":"%d"}}`, int64(dt))
	case TypeNull:
		return "null"
	case TypeRegex:
		r, _ := v.Regex()
		return fmt.Sprintf(`{"$regularExpression":%s}`, r)
	case TypeInt32:
		i32, _ := v.Int32()
		return fmt.Sprintf("%d", i32)
	case TypeTimestamp:
		ts, _ := v.Timestamp()
		return fmt.Sprintf(`{"$timestamp":{"t":%d,"i":%d}}`, ts.T, ts.I)
	case TypeInt64:
		i64, _ := v.Int64()
		return fmt.Sprintf("%d", i64)
	case TypeDecimal128:
		d128, _ := v.Decimal128()
		return fmt.Sprintf(`{"$numberDecimal":"%s"}`, d128)
	case TypeMinKey:
		return `{"$minKey":1}`
	case TypeMaxKey:
		return `{"$maxKey":1}`
	default:
		return hex.EncodeToString(v.Data)
	}
}
