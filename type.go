// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// Type represents a BSON type.
type Type byte

// BSON element types as described in https://bsonspec.org/spec.html.
const (
	TypeDouble           Type = 0x01
	TypeString           Type = 0x02
	TypeEmbeddedDocument Type = 0x03
	TypeArray            Type = 0x04
	TypeBinary           Type = 0x05
	TypeUndefined        Type = 0x06
	TypeObjectID         Type = 0x07
	TypeBoolean          Type = 0x08
	TypeDateTime         Type = 0x09
	TypeNull             Type = 0x0A
	TypeRegex            Type = 0x0B
	TypeDBPointer        Type = 0x0C
	TypeJavaScript       Type = 0x0D
	TypeSymbol           Type = 0x0E
	TypeCodeWithScope    Type = 0x0F
	TypeInt32            Type = 0x10
	TypeTimestamp        Type = 0x11
	TypeInt64            Type = 0x12
	TypeDecimal128       Type = 0x13
	TypeMaxKey           Type = 0x7F
	TypeMinKey           Type = 0xFF
)

// BSON binary element subtypes as described in https://bsonspec.org/spec.html.
const (
	SubtypeGeneric     byte = 0x00
	SubtypeFunction    byte = 0x01
	SubtypeBinaryOld   byte = 0x02
	SubtypeUUIDOld     byte = 0x03
	SubtypeUUID        byte = 0x04
	SubtypeMD5         byte = 0x05
	SubtypeUserDefined byte = 0x80
)

// String returns the string representation of the BSON type's name.
func (t Type) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeEmbeddedDocument:
		return "embedded document"
	case TypeArray:
		return "array"
	case TypeBinary:
		return "binary"
	case TypeUndefined:
		return "undefined"
	case TypeObjectID:
		return "objectID"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "UTC datetime"
	case TypeNull:
		return "null"
	case TypeRegex:
		return "regex"
	case TypeDBPointer:
		return "dbPointer"
	case TypeJavaScript:
		return "javascript"
	case TypeSymbol:
		return "symbol"
	case TypeCodeWithScope:
		return "code with scope"
	case TypeInt32:
		return "32-bit integer"
	case TypeTimestamp:
		return "timestamp"
	case TypeInt64:
		return "64-bit integer"
	case TypeDecimal128:
		return "decimal128"
	case TypeMinKey:
		return "min key"
	case TypeMaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// IsValid will return true if the Type is one the codec can read and write.
// The deprecated types (undefined, dbPointer, the JavaScript and symbol
// family) are recognized by String but are not valid.
func (t Type) IsValid() bool {
	switch t {
	case TypeDouble, TypeString, TypeEmbeddedDocument, TypeArray, TypeBinary,
		TypeObjectID, TypeBoolean, TypeDateTime, TypeNull, TypeRegex,
		TypeInt32, TypeTimestamp, TypeInt64, TypeDecimal128, TypeMinKey, TypeMaxKey:
		return true
	default:
		return false
	}
}

// valueSize returns the number of bytes the value of an element with type t
// occupies in src. src must begin at the first byte of the value. The
// returned size is the skip distance to the next element: for documents and
// arrays the embedded length already includes its own four bytes, for
// strings it does not, and binary additionally carries a subtype byte
// between the length and the payload.
func valueSize(t Type, src []byte) (int32, error) {
	switch t {
	case TypeEmbeddedDocument, TypeArray:
		l, ok := readLength(src)
		if !ok {
			return 0, NewErrTooSmall()
		}
		if l < 5 {
			return 0, ErrInvalidLength
		}
		return l, nil
	case TypeString:
		l, ok := readLength(src)
		if !ok {
			return 0, NewErrTooSmall()
		}
		if l < 1 {
			return 0, ErrInvalidLength
		}
		return 4 + l, nil
	case TypeBinary:
		l, ok := readLength(src)
		if !ok {
			return 0, NewErrTooSmall()
		}
		if l < 0 {
			return 0, ErrInvalidLength
		}
		return 4 + 1 + l, nil
	case TypeObjectID:
		return 12, nil
	case TypeBoolean:
		return 1, nil
	case TypeInt32:
		return 4, nil
	case TypeDouble, TypeDateTime, TypeTimestamp, TypeInt64:
		return 8, nil
	case TypeDecimal128:
		return 16, nil
	case TypeNull, TypeMinKey, TypeMaxKey:
		return 0, nil
	case TypeRegex:
		pattern, ok := readcstringBytes(src)
		if !ok {
			return 0, NewErrTooSmall()
		}
		options, ok := readcstringBytes(src[len(pattern)+1:])
		if !ok {
			return 0, NewErrTooSmall()
		}
		return int32(len(pattern) + 1 + len(options) + 1), nil
	default:
		return 0, ErrInvalidElementType
	}
}
