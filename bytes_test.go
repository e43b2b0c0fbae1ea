// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/bson/objectid"
)

func TestAppendHeader(t *testing.T) {
	got := AppendHeader(nil, TypeString, "hello")
	want := []byte{0x02, 'h', 'e', 'l', 'l', 'o', 0x00}
	require.Equal(t, want, got)

	typ, key, ok := ReadHeader(got)
	require.True(t, ok)
	require.Equal(t, TypeString, typ)
	require.Equal(t, "hello", key)
}

func TestHelloWorldDocumentBytes(t *testing.T) {
	var dst []byte
	dst, start := ReserveLength(dst)
	dst = AppendStringElement(dst, "hello", "world")
	dst = append(dst, 0x00)
	dst = UpdateLength(dst, start)

	want := []byte{
		0x16, 0x00, 0x00, 0x00,
		0x02, 'h', 'e', 'l', 'l', 'o', 0x00,
		0x06, 0x00, 0x00, 0x00, 'w', 'o', 'r', 'l', 'd', 0x00,
		0x00,
	}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("encoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestReserveAndUpdateLength(t *testing.T) {
	dst := []byte{0xAA, 0xBB}
	dst, at := ReserveLength(dst)
	require.Equal(t, int32(2), at)
	dst = append(dst, 0x01, 0x02, 0x03)
	dst = UpdateLength(dst, at)
	// 4 length bytes + 3 payload bytes
	require.Equal(t, []byte{0xAA, 0xBB, 0x07, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03}, dst)
}

func TestRoundTripPrimitives(t *testing.T) {
	t.Run("double", func(t *testing.T) {
		b := AppendDouble(nil, 3.14159)
		require.Len(t, b, 8)
		f, ok := ReadDouble(b)
		require.True(t, ok)
		require.Equal(t, 3.14159, f)

		_, ok = ReadDouble(b[:7])
		require.False(t, ok)
	})
	t.Run("string", func(t *testing.T) {
		b := AppendString(nil, "foo")
		require.Equal(t, []byte{0x04, 0x00, 0x00, 0x00, 'f', 'o', 'o', 0x00}, b)
		s, ok := ReadString(b)
		require.True(t, ok)
		require.Equal(t, "foo", s)
	})
	t.Run("objectID", func(t *testing.T) {
		oid, err := objectid.FromHex("5a934e000102030405000000")
		require.NoError(t, err)
		b := AppendObjectID(nil, oid)
		require.Len(t, b, 12)
		got, ok := ReadObjectID(b)
		require.True(t, ok)
		require.Equal(t, oid, got)
	})
	t.Run("int32", func(t *testing.T) {
		b := AppendInt32(nil, math.MinInt32)
		i, ok := ReadInt32(b)
		require.True(t, ok)
		require.Equal(t, int32(math.MinInt32), i)
	})
	t.Run("int64", func(t *testing.T) {
		b := AppendInt64(nil, math.MaxInt64)
		i, ok := ReadInt64(b)
		require.True(t, ok)
		require.Equal(t, int64(math.MaxInt64), i)
	})
	t.Run("timestamp", func(t *testing.T) {
		b := AppendTimestamp(nil, 42, 1)
		// i occupies the low four bytes, t the high four
		require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0x2A, 0x00, 0x00, 0x00}, b)
		ts, i, ok := ReadTimestamp(b)
		require.True(t, ok)
		require.Equal(t, uint32(42), ts)
		require.Equal(t, uint32(1), i)
	})
	t.Run("regex", func(t *testing.T) {
		b := AppendRegex(nil, "^abc", "im")
		require.Equal(t, []byte{'^', 'a', 'b', 'c', 0x00, 'i', 'm', 0x00}, b)
		pattern, options, ok := ReadRegex(b)
		require.True(t, ok)
		require.Equal(t, "^abc", pattern)
		require.Equal(t, "im", options)
	})
}

func TestReadBoolean(t *testing.T) {
	testCases := []struct {
		name string
		src  []byte
		want bool
		err  error
	}{
		{"false", []byte{0x00}, false, nil},
		{"true", []byte{0x01}, true, nil},
		{"invalid byte", []byte{0x03}, false, ErrInvalidBooleanType},
		{"empty", []byte{}, false, NewErrTooSmall()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadBoolean(tc.src)
			if tc.err != nil {
				requireErrEqual(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestBinary(t *testing.T) {
	t.Run("generic", func(t *testing.T) {
		b := AppendBinary(nil, SubtypeGeneric, []byte{0xDE, 0xAD})
		require.Equal(t, []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0xDE, 0xAD}, b)
		subtype, data, ok := ReadBinary(b)
		require.True(t, ok)
		require.Equal(t, SubtypeGeneric, subtype)
		require.Equal(t, []byte{0xDE, 0xAD}, data)
	})
	t.Run("subtype 2 carries inner length", func(t *testing.T) {
		b := AppendBinary(nil, SubtypeBinaryOld, []byte{0xDE, 0xAD})
		require.Equal(t, []byte{
			0x06, 0x00, 0x00, 0x00, // outer length includes the inner length bytes
			0x02,
			0x02, 0x00, 0x00, 0x00,
			0xDE, 0xAD,
		}, b)
		subtype, data, ok := ReadBinary(b)
		require.True(t, ok)
		require.Equal(t, SubtypeBinaryOld, subtype)
		require.Equal(t, []byte{0xDE, 0xAD}, data)
	})
}

func TestValueSize(t *testing.T) {
	testCases := []struct {
		name string
		t    Type
		src  []byte
		size int32
		err  error
	}{
		{"string", TypeString, []byte{0x04, 0x00, 0x00, 0x00, 'f', 'o', 'o', 0x00}, 8, nil},
		{"document", TypeEmbeddedDocument, []byte{0x05, 0x00, 0x00, 0x00, 0x00}, 5, nil},
		{"document too short declared", TypeEmbeddedDocument, []byte{0x04, 0x00, 0x00, 0x00}, 0, ErrInvalidLength},
		{"binary", TypeBinary, []byte{0x02, 0x00, 0x00, 0x00, 0x00, 0xDE, 0xAD}, 7, nil},
		{"objectID", TypeObjectID, nil, 12, nil},
		{"boolean", TypeBoolean, nil, 1, nil},
		{"double", TypeDouble, nil, 8, nil},
		{"decimal128", TypeDecimal128, nil, 16, nil},
		{"null", TypeNull, nil, 0, nil},
		{"regex", TypeRegex, []byte{'a', 0x00, 'i', 0x00}, 4, nil},
		{"deprecated symbol", TypeSymbol, []byte{0x04, 0x00, 0x00, 0x00}, 0, ErrInvalidElementType},
		{"unknown tag", Type(0x42), nil, 0, ErrInvalidElementType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			size, err := valueSize(tc.t, tc.src)
			if tc.err != nil {
				requireErrEqual(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.size, size)
		})
	}
}

// requireErrEqual compares errors, treating any two ErrTooSmall values as
// equal regardless of their stacks.
func requireErrEqual(t *testing.T, want, got error) {
	t.Helper()
	if e, ok := want.(ErrTooSmall); ok {
		require.Error(t, got)
		require.True(t, e.Equals(got), "expected ErrTooSmall, got %v", got)
		return
	}
	require.Equal(t, want, got)
}
