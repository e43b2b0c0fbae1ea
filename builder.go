// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strconv"
	"strings"

	"github.com/ikmak/bson/decimal"
	"github.com/ikmak/bson/objectid"
)

// DocumentBuilder builds a BSON document left to right over a growable
// buffer. Embedded documents and arrays are opened with StartDocument and
// StartArray and closed with Finish; each open frame reserves its four
// length bytes up front and back-patches them on Finish, so the encoding is
// single pass.
//
// Inside an array frame the key argument of every append method is ignored
// and the element is keyed by its decimal index instead.
//
// The methods return the builder for chaining. The first error sticks: once
// set, further appends are no-ops and Build returns it.
type DocumentBuilder struct {
	bson   []byte
	frames []builderFrame
	err    error
}

type builderFrame struct {
	start int32 // offset of the reserved length bytes
	array bool
	index int
}

// NewDocumentBuilder creates a new DocumentBuilder with the root document
// frame open.
func NewDocumentBuilder() *DocumentBuilder {
	b := &DocumentBuilder{}
	b.bson, _ = ReserveLength(nil)
	b.frames = append(b.frames, builderFrame{start: 0})
	return b
}

// header appends the type tag and key for the next element, substituting
// the frame's decimal index for the key inside an array.
func (db *DocumentBuilder) header(t Type, key string) bool {
	if db.err != nil {
		return false
	}
	frame := &db.frames[len(db.frames)-1]
	if frame.array {
		key = strconv.Itoa(frame.index)
		frame.index++
	} else if strings.IndexByte(key, 0x00) >= 0 {
		db.err = ErrInvalidKey
		return false
	}
	db.bson = AppendHeader(db.bson, t, key)
	return true
}

// AppendDouble will append a double element using key and f to the builder.
func (db *DocumentBuilder) AppendDouble(key string, f float64) *DocumentBuilder {
	if db.header(TypeDouble, key) {
		db.bson = AppendDouble(db.bson, f)
	}
	return db
}

// AppendString will append a string element using key and val to the
// builder.
func (db *DocumentBuilder) AppendString(key, val string) *DocumentBuilder {
	if db.header(TypeString, key) {
		db.bson = AppendString(db.bson, val)
	}
	return db
}

// AppendDocument will append a pre-encoded embedded document element using
// key and doc to the builder.
func (db *DocumentBuilder) AppendDocument(key string, doc *Document) *DocumentBuilder {
	if db.err != nil {
		return db
	}
	if doc == nil {
		db.err = ErrNilDocument
		return db
	}
	if db.header(TypeEmbeddedDocument, key) {
		db.bson = append(db.bson, doc.Bytes()...)
	}
	return db
}

// AppendBinary will append a binary element using key, subtype, and data to
// the builder.
func (db *DocumentBuilder) AppendBinary(key string, subtype byte, data []byte) *DocumentBuilder {
	if db.header(TypeBinary, key) {
		db.bson = AppendBinary(db.bson, subtype, data)
	}
	return db
}

// AppendUUID will append id as a subtype 0x04 binary element using key to
// the builder.
func (db *DocumentBuilder) AppendUUID(key string, id UUID) *DocumentBuilder {
	if db.header(TypeBinary, key) {
		db.bson = AppendBinary(db.bson, SubtypeUUID, id[:])
	}
	return db
}

// AppendObjectID will append an ObjectID element using key and oid to the
// builder.
func (db *DocumentBuilder) AppendObjectID(key string, oid objectid.ObjectID) *DocumentBuilder {
	if db.header(TypeObjectID, key) {
		db.bson = AppendObjectID(db.bson, oid)
	}
	return db
}

// AppendObjectIDHex will append an ObjectID element from its 24 character
// hex form. A malformed hex string sets objectid.ErrInvalidHex.
func (db *DocumentBuilder) AppendObjectIDHex(key, hex string) *DocumentBuilder {
	if db.err != nil {
		return db
	}
	oid, err := objectid.FromHex(hex)
	if err != nil {
		db.err = err
		return db
	}
	return db.AppendObjectID(key, oid)
}

// AppendBoolean will append a boolean element using key and b to the
// builder.
func (db *DocumentBuilder) AppendBoolean(key string, b bool) *DocumentBuilder {
	if db.header(TypeBoolean, key) {
		db.bson = AppendBoolean(db.bson, b)
	}
	return db
}

// AppendDateTime will append a datetime element using key and dt
// (milliseconds since the Unix epoch) to the builder.
func (db *DocumentBuilder) AppendDateTime(key string, dt int64) *DocumentBuilder {
	if db.header(TypeDateTime, key) {
		db.bson = AppendDateTime(db.bson, dt)
	}
	return db
}

// AppendNull will append a null element using key to the builder.
func (db *DocumentBuilder) AppendNull(key string) *DocumentBuilder {
	db.header(TypeNull, key)
	return db
}

// AppendRegex will append a regex element using key, pattern, and options to
// the builder. The options are validated against the set "imsux" and sorted
// ascending; the pattern may not contain an interior null byte.
func (db *DocumentBuilder) AppendRegex(key, pattern, options string) *DocumentBuilder {
	if db.err != nil {
		return db
	}
	pattern, err := validateRegexPattern(pattern)
	if err != nil {
		db.err = err
		return db
	}
	options, err = NormalizeRegexOptions(options)
	if err != nil {
		db.err = err
		return db
	}
	if db.header(TypeRegex, key) {
		db.bson = AppendRegex(db.bson, pattern, options)
	}
	return db
}

// AppendInt32 will append an int32 element using key and i32 to the
// builder.
func (db *DocumentBuilder) AppendInt32(key string, i32 int32) *DocumentBuilder {
	if db.header(TypeInt32, key) {
		db.bson = AppendInt32(db.bson, i32)
	}
	return db
}

// AppendTimestamp will append a timestamp element using key, t, and i to the
// builder.
func (db *DocumentBuilder) AppendTimestamp(key string, t, i uint32) *DocumentBuilder {
	if db.header(TypeTimestamp, key) {
		db.bson = AppendTimestamp(db.bson, t, i)
	}
	return db
}

// AppendInt64 will append an int64 element using key and i64 to the
// builder.
func (db *DocumentBuilder) AppendInt64(key string, i64 int64) *DocumentBuilder {
	if db.header(TypeInt64, key) {
		db.bson = AppendInt64(db.bson, i64)
	}
	return db
}

// AppendDecimal128 will append a decimal128 element using key and d128 to
// the builder.
func (db *DocumentBuilder) AppendDecimal128(key string, d128 decimal.Decimal128) *DocumentBuilder {
	if db.header(TypeDecimal128, key) {
		db.bson = AppendDecimal128(db.bson, d128)
	}
	return db
}

// AppendMinKey will append a min key element using key to the builder.
func (db *DocumentBuilder) AppendMinKey(key string) *DocumentBuilder {
	db.header(TypeMinKey, key)
	return db
}

// AppendMaxKey will append a max key element using key to the builder.
func (db *DocumentBuilder) AppendMaxKey(key string) *DocumentBuilder {
	db.header(TypeMaxKey, key)
	return db
}

// StartDocument opens an embedded document element using key. Subsequent
// appends land inside it until the matching Finish.
func (db *DocumentBuilder) StartDocument(key string) *DocumentBuilder {
	if db.header(TypeEmbeddedDocument, key) {
		var start int32
		db.bson, start = ReserveLength(db.bson)
		db.frames = append(db.frames, builderFrame{start: start})
	}
	return db
}

// StartArray opens an array element using key. Subsequent appends land
// inside it, keyed by decimal index, until the matching Finish.
func (db *DocumentBuilder) StartArray(key string) *DocumentBuilder {
	if db.header(TypeArray, key) {
		var start int32
		db.bson, start = ReserveLength(db.bson)
		db.frames = append(db.frames, builderFrame{start: start, array: true})
	}
	return db
}

// Finish closes the innermost open document or array frame, writing its
// terminator and back-patching its length. Closing the root frame is an
// ErrOutOfBounds error; the root is closed by Build.
func (db *DocumentBuilder) Finish() *DocumentBuilder {
	if db.err != nil {
		return db
	}
	if len(db.frames) < 2 {
		db.err = ErrOutOfBounds
		return db
	}
	frame := db.frames[len(db.frames)-1]
	db.frames = db.frames[:len(db.frames)-1]
	db.bson = append(db.bson, 0x00)
	db.bson = UpdateLength(db.bson, frame.start)
	return db
}

// Err returns the first error recorded by the builder, if any.
func (db *DocumentBuilder) Err() error {
	return db.err
}

// Build closes the root frame and returns the finished Document. It fails
// if an embedded frame is still open or any append recorded an error. The
// builder can keep appending afterwards; Build does not consume it.
func (db *DocumentBuilder) Build() (*Document, error) {
	data, err := db.Bytes()
	if err != nil {
		return nil, err
	}
	return &Document{data: data}, nil
}

// Bytes is Build without the Document wrapper.
func (db *DocumentBuilder) Bytes() ([]byte, error) {
	if db.err != nil {
		return nil, db.err
	}
	if len(db.frames) != 1 {
		return nil, ErrIncompleteDocument
	}
	data := make([]byte, len(db.bson), len(db.bson)+1)
	copy(data, db.bson)
	data = append(data, 0x00)
	data = UpdateLength(data, 0)
	return data, nil
}
