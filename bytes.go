// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"math"

	"github.com/ikmak/bson/decimal"
	"github.com/ikmak/bson/objectid"
)

// This file contains the low level encode and decode primitives for BSON
// elements and values. The Append* functions append the wire encoding of a
// value to dst and return the extended buffer; the Append*Element variants
// additionally write the type tag and the key first. The Read* functions
// return the decoded value and a boolean indicating whether enough bytes
// were available; no other validation is performed here.

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t Type) []byte { return append(dst, byte(t)) }

// AppendKey will append key and its null terminator to dst and return the
// extended buffer.
func AppendKey(dst []byte, key string) []byte { return append(append(dst, key...), 0x00) }

// AppendHeader will append Type t and key to dst and return the extended
// buffer.
func AppendHeader(dst []byte, t Type, key string) []byte {
	return AppendKey(AppendType(dst, t), key)
}

// ReadHeader will return the type tag and the key in src. If both of these
// values cannot be read, false is returned.
func ReadHeader(src []byte) (t Type, key string, ok bool) {
	if len(src) < 1 {
		return 0, "", false
	}
	key, ok = readcstring(src[1:])
	if !ok {
		return 0, "", false
	}
	return Type(src[0]), key, true
}

// ReserveLength reserves the four bytes of a document, array, or string
// length field and returns the extended buffer and the offset of the
// reserved bytes.
func ReserveLength(dst []byte) ([]byte, int32) {
	at := int32(len(dst))
	return append(dst, 0x00, 0x00, 0x00, 0x00), at
}

// UpdateLength overwrites the four bytes at offset at with the distance
// from at to the end of dst. This is the back-patch that completes a
// document or array frame.
func UpdateLength(dst []byte, at int32) []byte {
	l := int32(len(dst)) - at
	dst[at+0] = byte(l)
	dst[at+1] = byte(l >> 8)
	dst[at+2] = byte(l >> 16)
	dst[at+3] = byte(l >> 24)
	return dst
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte {
	return appendu64(dst, math.Float64bits(f))
}

// AppendDoubleElement will append a BSON double element using key and f to
// dst and return the extended buffer.
func AppendDoubleElement(dst []byte, key string, f float64) []byte {
	return AppendDouble(AppendHeader(dst, TypeDouble, key), f)
}

// ReadDouble will read a float64 from src. If there are not enough bytes it
// will return false.
func ReadDouble(src []byte) (float64, bool) {
	bits, ok := readu64(src)
	if !ok {
		return 0, false
	}
	return math.Float64frombits(bits), true
}

// AppendString will append s to dst and return the extended buffer. The
// length prefix counts the mandatory trailing null.
func AppendString(dst []byte, s string) []byte { return appendstring(dst, s) }

// AppendStringElement will append a BSON string element using key and val to
// dst and return the extended buffer.
func AppendStringElement(dst []byte, key, val string) []byte {
	return AppendString(AppendHeader(dst, TypeString, key), val)
}

// ReadString will read a string from src. If there are not enough bytes it
// will return false.
func ReadString(src []byte) (string, bool) { return readstring(src) }

// AppendDocumentElement will append a BSON embedded document element using
// key and the encoded document doc to dst and return the extended buffer.
func AppendDocumentElement(dst []byte, key string, doc []byte) []byte {
	return append(AppendHeader(dst, TypeEmbeddedDocument, key), doc...)
}

// ReadDocumentBytes will read a length-prefixed document from src. If there
// are not enough bytes it will return false.
func ReadDocumentBytes(src []byte) ([]byte, bool) { return readLengthBytes(src) }

// AppendArrayElement will append a BSON array element using key and the
// encoded array arr to dst and return the extended buffer.
func AppendArrayElement(dst []byte, key string, arr []byte) []byte {
	return append(AppendHeader(dst, TypeArray, key), arr...)
}

// AppendBinary will append subtype and b to dst and return the extended
// buffer. The deprecated subtype 0x02 nests a second length field inside
// the payload, so its outer length is len(b)+4.
func AppendBinary(dst []byte, subtype byte, b []byte) []byte {
	if subtype == SubtypeBinaryOld {
		return appendBinarySubtype2(dst, subtype, b)
	}
	dst = append(appendLength(dst, int32(len(b))), subtype)
	return append(dst, b...)
}

// AppendBinaryElement will append a BSON binary element using key, subtype,
// and b to dst and return the extended buffer.
func AppendBinaryElement(dst []byte, key string, subtype byte, b []byte) []byte {
	return AppendBinary(AppendHeader(dst, TypeBinary, key), subtype, b)
}

// ReadBinary will read a subtype and payload from src. For subtype 0x02 the
// redundant inner length field is stripped from the returned payload. If
// there are not enough bytes it will return false.
func ReadBinary(src []byte) (subtype byte, bin []byte, ok bool) {
	length, ok := readLength(src)
	if !ok || length < 0 {
		return 0x00, nil, false
	}
	if len(src) < 5 {
		return 0x00, nil, false
	}
	subtype = src[4]

	if subtype == SubtypeBinaryOld {
		length, ok = readLength(src[5:])
		if !ok || length < 0 || len(src[9:]) < int(length) {
			return 0x00, nil, false
		}
		return subtype, src[9 : length+9], true
	}

	if len(src[5:]) < int(length) {
		return 0x00, nil, false
	}

	return subtype, src[5 : length+5], true
}

// AppendObjectID will append oid to dst and return the extended buffer.
func AppendObjectID(dst []byte, oid objectid.ObjectID) []byte { return append(dst, oid[:]...) }

// AppendObjectIDElement will append a BSON ObjectID element using key and
// oid to dst and return the extended buffer.
func AppendObjectIDElement(dst []byte, key string, oid objectid.ObjectID) []byte {
	return AppendObjectID(AppendHeader(dst, TypeObjectID, key), oid)
}

// ReadObjectID will read an ObjectID from src. If there are not enough
// bytes it will return false.
func ReadObjectID(src []byte) (objectid.ObjectID, bool) {
	if len(src) < 12 {
		return objectid.ObjectID{}, false
	}
	var oid objectid.ObjectID
	copy(oid[:], src[0:12])
	return oid, true
}

// AppendBoolean will append b to dst and return the extended buffer.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendBooleanElement will append a BSON boolean element using key and b to
// dst and return the extended buffer.
func AppendBooleanElement(dst []byte, key string, b bool) []byte {
	return AppendBoolean(AppendHeader(dst, TypeBoolean, key), b)
}

// ReadBoolean will read a bool from src. A byte other than 0x00 or 0x01 is
// a format violation and returns ErrInvalidBooleanType.
func ReadBoolean(src []byte) (bool, error) {
	if len(src) < 1 {
		return false, NewErrTooSmall()
	}
	switch src[0] {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, ErrInvalidBooleanType
	}
}

// AppendDateTime will append dt (milliseconds since the Unix epoch) to dst
// and return the extended buffer.
func AppendDateTime(dst []byte, dt int64) []byte { return appendi64(dst, dt) }

// AppendDateTimeElement will append a BSON datetime element using key and dt
// to dst and return the extended buffer.
func AppendDateTimeElement(dst []byte, key string, dt int64) []byte {
	return AppendDateTime(AppendHeader(dst, TypeDateTime, key), dt)
}

// ReadDateTime will read an int64 datetime from src. If there are not
// enough bytes it will return false.
func ReadDateTime(src []byte) (int64, bool) { return readi64(src) }

// AppendNullElement will append a BSON null element using key to dst and
// return the extended buffer.
func AppendNullElement(dst []byte, key string) []byte { return AppendHeader(dst, TypeNull, key) }

// AppendRegex will append pattern and options to dst and return the
// extended buffer. Both are written as null-terminated cstrings.
func AppendRegex(dst []byte, pattern, options string) []byte {
	dst = append(dst, pattern...)
	dst = append(dst, 0x00)
	dst = append(dst, options...)
	return append(dst, 0x00)
}

// AppendRegexElement will append a BSON regex element using key, pattern,
// and options to dst and return the extended buffer.
func AppendRegexElement(dst []byte, key, pattern, options string) []byte {
	return AppendRegex(AppendHeader(dst, TypeRegex, key), pattern, options)
}

// ReadRegex will read a pattern and options from src. If there are not
// enough bytes it will return false.
func ReadRegex(src []byte) (pattern, options string, ok bool) {
	pattern, ok = readcstring(src)
	if !ok {
		return "", "", false
	}
	options, ok = readcstring(src[len(pattern)+1:])
	if !ok {
		return "", "", false
	}
	return pattern, options, true
}

// AppendInt32 will append i32 to dst and return the extended buffer.
func AppendInt32(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// AppendInt32Element will append a BSON int32 element using key and i32 to
// dst and return the extended buffer.
func AppendInt32Element(dst []byte, key string, i32 int32) []byte {
	return AppendInt32(AppendHeader(dst, TypeInt32, key), i32)
}

// ReadInt32 will read an int32 from src. If there are not enough bytes it
// will return false.
func ReadInt32(src []byte) (int32, bool) { return readi32(src) }

// AppendTimestamp will append t and i to dst and return the extended
// buffer. i occupies the lower four bytes, t the higher four.
func AppendTimestamp(dst []byte, t, i uint32) []byte {
	return appendu32(appendu32(dst, i), t)
}

// AppendTimestampElement will append a BSON timestamp element using key, t,
// and i to dst and return the extended buffer.
func AppendTimestampElement(dst []byte, key string, t, i uint32) []byte {
	return AppendTimestamp(AppendHeader(dst, TypeTimestamp, key), t, i)
}

// ReadTimestamp will read t and i from src. If there are not enough bytes
// it will return false.
func ReadTimestamp(src []byte) (t, i uint32, ok bool) {
	i, ok = readu32(src)
	if !ok {
		return 0, 0, false
	}
	t, ok = readu32(src[4:])
	if !ok {
		return 0, 0, false
	}
	return t, i, true
}

// AppendInt64 will append i64 to dst and return the extended buffer.
func AppendInt64(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// AppendInt64Element will append a BSON int64 element using key and i64 to
// dst and return the extended buffer.
func AppendInt64Element(dst []byte, key string, i64 int64) []byte {
	return AppendInt64(AppendHeader(dst, TypeInt64, key), i64)
}

// ReadInt64 will read an int64 from src. If there are not enough bytes it
// will return false.
func ReadInt64(src []byte) (int64, bool) { return readi64(src) }

// AppendDecimal128 will append d128 to dst and return the extended buffer.
func AppendDecimal128(dst []byte, d128 decimal.Decimal128) []byte {
	high, low := d128.GetBytes()
	return appendu64(appendu64(dst, low), high)
}

// AppendDecimal128Element will append a BSON decimal128 element using key
// and d128 to dst and return the extended buffer.
func AppendDecimal128Element(dst []byte, key string, d128 decimal.Decimal128) []byte {
	return AppendDecimal128(AppendHeader(dst, TypeDecimal128, key), d128)
}

// ReadDecimal128 will read a decimal.Decimal128 from src. If there are not
// enough bytes it will return false.
func ReadDecimal128(src []byte) (decimal.Decimal128, bool) {
	l, ok := readu64(src)
	if !ok {
		return decimal.Decimal128{}, false
	}

	h, ok := readu64(src[8:])
	if !ok {
		return decimal.Decimal128{}, false
	}

	return decimal.NewDecimal128(h, l), true
}

// AppendMaxKeyElement will append a BSON max key element using key to dst
// and return the extended buffer.
func AppendMaxKeyElement(dst []byte, key string) []byte { return AppendHeader(dst, TypeMaxKey, key) }

// AppendMinKeyElement will append a BSON min key element using key to dst
// and return the extended buffer.
func AppendMinKeyElement(dst []byte, key string) []byte { return AppendHeader(dst, TypeMinKey, key) }

func appendLength(dst []byte, l int32) []byte { return appendi32(dst, l) }

func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

func readLength(src []byte) (int32, bool) { return readi32(src) }

func readi32(src []byte) (int32, bool) {
	if len(src) < 4 {
		return 0, false
	}

	return int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24, true
}

func appendi64(dst []byte, i64 int64) []byte {
	return append(dst,
		byte(i64), byte(i64>>8), byte(i64>>16), byte(i64>>24),
		byte(i64>>32), byte(i64>>40), byte(i64>>48), byte(i64>>56),
	)
}

func readi64(src []byte) (int64, bool) {
	if len(src) < 8 {
		return 0, false
	}
	i64 := int64(src[0]) | int64(src[1])<<8 | int64(src[2])<<16 | int64(src[3])<<24 |
		int64(src[4])<<32 | int64(src[5])<<40 | int64(src[6])<<48 | int64(src[7])<<56
	return i64, true
}

func appendu32(dst []byte, u32 uint32) []byte {
	return append(dst, byte(u32), byte(u32>>8), byte(u32>>16), byte(u32>>24))
}

func readu32(src []byte) (uint32, bool) {
	if len(src) < 4 {
		return 0, false
	}

	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24, true
}

func appendu64(dst []byte, u64 uint64) []byte {
	return append(dst,
		byte(u64), byte(u64>>8), byte(u64>>16), byte(u64>>24),
		byte(u64>>32), byte(u64>>40), byte(u64>>48), byte(u64>>56),
	)
}

func readu64(src []byte) (uint64, bool) {
	if len(src) < 8 {
		return 0, false
	}
	u64 := uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56
	return u64, true
}

func readcstring(src []byte) (string, bool) {
	b, ok := readcstringBytes(src)
	if !ok {
		return "", false
	}
	return string(b), true
}

func readcstringBytes(src []byte) ([]byte, bool) {
	idx := bytes.IndexByte(src, 0x00)
	if idx < 0 {
		return nil, false
	}
	return src[:idx], true
}

func appendstring(dst []byte, s string) []byte {
	l := int32(len(s) + 1)
	dst = appendLength(dst, l)
	dst = append(dst, s...)
	return append(dst, 0x00)
}

func readstring(src []byte) (string, bool) {
	l, ok := readLength(src)
	if !ok || l < 1 {
		return "", false
	}
	if len(src[4:]) < int(l) {
		return "", false
	}

	return string(src[4 : l+4-1]), true
}

// readLengthBytes attempts to read a length and that number of bytes. The
// length includes the four bytes for itself.
func readLengthBytes(src []byte) ([]byte, bool) {
	l, ok := readLength(src)
	if !ok || l < 4 {
		return nil, false
	}
	if len(src) < int(l) {
		return nil, false
	}
	return src[:l], true
}

func appendBinarySubtype2(dst []byte, subtype byte, b []byte) []byte {
	dst = appendLength(dst, int32(len(b)+4)) // the outer length covers the inner length bytes
	dst = append(dst, subtype)
	dst = appendLength(dst, int32(len(b)))
	return append(dst, b...)
}
