// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package objectid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromHex(t *testing.T) {
	testCases := []struct {
		name string
		hex  string
		err  error
	}{
		{"valid", "5a934e000102030405000000", nil},
		{"uppercase is valid", "5A934E000102030405000000", nil},
		{"too short", "5a934e", ErrInvalidHex},
		{"too long", "5a934e0001020304050000000102", ErrInvalidHex},
		{"non-hex characters", "5a934e00010203040500000z", ErrInvalidHex},
		{"empty", "", ErrInvalidHex},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oid, err := FromHex(tc.hex)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				require.True(t, oid.IsZero())
				return
			}
			require.NoError(t, err)
			require.False(t, oid.IsZero())
		})
	}

	t.Run("round trip", func(t *testing.T) {
		oid, err := FromHex("5a934e000102030405000000")
		require.NoError(t, err)
		require.Equal(t, "5a934e000102030405000000", oid.Hex())
		require.Equal(t, `ObjectID("5a934e000102030405000000")`, oid.String())
	})
}

func TestNew(t *testing.T) {
	t.Run("unique", func(t *testing.T) {
		seen := make(map[ObjectID]bool)
		for i := 0; i < 1000; i++ {
			oid := New()
			require.False(t, seen[oid], "duplicate ObjectID %s", oid)
			seen[oid] = true
		}
	})

	t.Run("timestamp part", func(t *testing.T) {
		before := time.Now().Truncate(time.Second)
		oid := New()
		after := time.Now()
		ts := oid.Timestamp()
		require.False(t, ts.Before(before))
		require.False(t, ts.After(after))
	})

	t.Run("counter increments", func(t *testing.T) {
		g := NewGenerator()
		now := time.Now()
		a := g.NewFromTimestamp(now)
		b := g.NewFromTimestamp(now)
		require.Equal(t, (a.Counter()+1)&0xFFFFFF, b.Counter())
		// the timestamp and process-unique parts are shared
		require.Equal(t, a[:9], b[:9])
	})

	t.Run("generators differ in process-unique bytes", func(t *testing.T) {
		now := time.Unix(1565546054, 0)
		a := NewGenerator().NewFromTimestamp(now)
		b := NewGenerator().NewFromTimestamp(now)
		require.Equal(t, a[0:4], b[0:4])
		require.NotEqual(t, a[4:9], b[4:9])
	})
}

func TestNewFromTimestamp(t *testing.T) {
	ts := time.Unix(0x5a934e00, 0)
	oid := NewFromTimestamp(ts)
	require.Equal(t, []byte{0x5a, 0x93, 0x4e, 0x00}, oid[0:4])
	require.True(t, ts.UTC().Equal(oid.Timestamp()))
}
