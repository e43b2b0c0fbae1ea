// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeRegexOptions(t *testing.T) {
	testCases := []struct {
		name    string
		options string
		want    string
		err     error
	}{
		{"empty", "", "", nil},
		{"already sorted", "im", "im", nil},
		{"out of order", "mi", "im", nil},
		{"full set reversed", "xusmi", "imsux", nil},
		{"duplicate characters survive", "iim", "iim", nil},
		{"unknown character", "iq", "", ErrInvalidRegexOptions},
		{"uppercase is unknown", "I", "", ErrInvalidRegexOptions},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeRegexOptions(tc.options)
			require.Equal(t, tc.err, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDateTime(t *testing.T) {
	now := time.Date(2021, 3, 5, 12, 30, 45, 123e6, time.UTC)
	dt := NewDateTimeFromTime(now)
	require.Equal(t, DateTime(1614947445123), dt)
	require.True(t, now.Equal(dt.Time()))
	require.Equal(t, time.UTC, dt.Time().Location())
}

func TestTimestampOrdering(t *testing.T) {
	a := Timestamp{T: 1, I: 5}
	b := Timestamp{T: 1, I: 6}
	c := Timestamp{T: 2, I: 0}

	require.True(t, a.Before(b))
	require.True(t, b.Before(c))
	require.True(t, c.After(a))
	require.False(t, a.After(a))
	require.False(t, a.Before(a))
	require.True(t, a.Equal(Timestamp{T: 1, I: 5}))

	packed := c.Uint64()
	require.Equal(t, uint64(2)<<32, packed)
	require.Equal(t, c, NewTimestampFromUint64(packed))
}

func TestBinaryEqual(t *testing.T) {
	a := Binary{Subtype: 0x00, Data: []byte{1, 2, 3}}
	require.True(t, a.Equal(Binary{Subtype: 0x00, Data: []byte{1, 2, 3}}))
	require.False(t, a.Equal(Binary{Subtype: 0x04, Data: []byte{1, 2, 3}}))
	require.False(t, a.Equal(Binary{Subtype: 0x00, Data: []byte{1, 2}}))
}

func TestUUIDBridge(t *testing.T) {
	t.Run("parse and format", func(t *testing.T) {
		id, err := ParseUUID("c8edabc3-f738-4cde-9d06-341cf203d594")
		require.NoError(t, err)
		require.Equal(t, "c8edabc3-f738-4cde-9d06-341cf203d594", id.String())
		require.False(t, id.IsZero())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseUUID("not a uuid")
		require.Error(t, err)
	})

	t.Run("binary round trip", func(t *testing.T) {
		id := NewUUID()
		bin := id.Binary()
		require.Equal(t, SubtypeUUID, bin.Subtype)
		require.Len(t, bin.Data, 16)

		got, err := bin.UUID()
		require.NoError(t, err)
		require.Equal(t, id, got)
	})

	t.Run("wrong subtype", func(t *testing.T) {
		bin := Binary{Subtype: SubtypeGeneric, Data: make([]byte, 16)}
		_, err := bin.UUID()
		require.Equal(t, ElementTypeError{Method: "Binary.UUID", Type: TypeBinary}, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		bin := Binary{Subtype: SubtypeUUID, Data: make([]byte, 12)}
		_, err := bin.UUID()
		require.Error(t, err)
	})
}
