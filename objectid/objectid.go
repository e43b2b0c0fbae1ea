// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0
//
// Based on gopkg.in/mgo.v2/bson by Gustavo Niemeyer
// See THIRD-PARTY-NOTICES for original license terms.

// Package objectid implements the BSON ObjectID type: a 12-byte identifier
// built from a big-endian Unix timestamp, five process-unique random bytes,
// and a monotonically increasing 3-byte counter.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// ErrInvalidHex indicates that a hex string cannot be converted to an
// ObjectID. Valid input is exactly 24 hexadecimal characters.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ObjectID is the BSON ObjectID type.
type ObjectID [12]byte

// NilObjectID is the zero value for ObjectID.
var NilObjectID ObjectID

// Generator produces unique ObjectIDs. The counter increment is atomic, so
// a single Generator may be shared between goroutines.
type Generator struct {
	counter       uint32
	processUnique [5]byte
}

// NewGenerator constructs a Generator with a random starting counter and
// random process-unique bytes.
func NewGenerator() *Generator {
	g := &Generator{counter: readRandomUint32()}
	if _, err := io.ReadFull(rand.Reader, g.processUnique[:]); err != nil {
		panic(fmt.Errorf("cannot initialize ObjectID generator with crypto/rand.Reader: %v", err))
	}
	return g
}

// New generates a new ObjectID using the current time.
func (g *Generator) New() ObjectID {
	return g.NewFromTimestamp(time.Now())
}

// NewFromTimestamp generates a new ObjectID based on the given time. The
// counter wraps at 2^24.
func (g *Generator) NewFromTimestamp(timestamp time.Time) ObjectID {
	var b [12]byte

	binary.BigEndian.PutUint32(b[0:4], uint32(timestamp.Unix()))
	copy(b[4:9], g.processUnique[:])
	putUint24(b[9:12], atomic.AddUint32(&g.counter, 1))

	return b
}

// defaultGenerator backs the package-level New. It is initialized once per
// process.
var defaultGenerator = NewGenerator()

// New generates a new ObjectID from the process-wide generator.
func New() ObjectID {
	return defaultGenerator.New()
}

// NewFromTimestamp generates a new ObjectID from the process-wide generator
// based on the given time.
func NewFromTimestamp(timestamp time.Time) ObjectID {
	return defaultGenerator.NewFromTimestamp(timestamp)
}

// Timestamp extracts the time part of the ObjectID.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Counter extracts the 3-byte counter part of the ObjectID.
func (id ObjectID) Counter() uint32 {
	return uint32(id[9])<<16 | uint32(id[10])<<8 | uint32(id[11])
}

// Hex returns the hex encoding of the ObjectID as a string.
func (id ObjectID) Hex() string {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return string(buf[:])
}

func (id ObjectID) String() string {
	return `ObjectID("` + id.Hex() + `")`
}

// IsZero returns true if id is the empty ObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// FromHex creates a new ObjectID from a hex string. It returns
// ErrInvalidHex if the string is not exactly 24 hexadecimal characters.
func FromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, ErrInvalidHex
	}

	var oid [12]byte
	_, err := hex.Decode(oid[:], []byte(s))
	if err != nil {
		return NilObjectID, ErrInvalidHex
	}

	return oid, nil
}

func readRandomUint32() uint32 {
	var b [4]byte
	_, err := io.ReadFull(rand.Reader, b[:])
	if err != nil {
		panic(fmt.Errorf("cannot initialize ObjectID generator with crypto/rand.Reader: %v", err))
	}

	return uint32(b[0])<<0 | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
