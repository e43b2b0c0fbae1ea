// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"sort"
	"strings"
	"time"
)

// Binary represents a BSON binary value.
type Binary struct {
	Subtype byte
	Data    []byte
}

// Equal compares bp to bp2 and returns true if they are equal.
func (bp Binary) Equal(bp2 Binary) bool {
	if bp.Subtype != bp2.Subtype {
		return false
	}
	if len(bp.Data) != len(bp2.Data) {
		return false
	}
	for i := range bp.Data {
		if bp.Data[i] != bp2.Data[i] {
			return false
		}
	}
	return true
}

// DateTime represents a BSON datetime value: milliseconds since the Unix
// epoch, UTC.
type DateTime int64

// maxDateTimeMillis is the first millisecond of year 10000. Values at or
// beyond it have no four-digit calendar rendering.
const maxDateTimeMillis = 253402300800000

// NewDateTimeFromTime creates a new DateTime from a time.Time.
func NewDateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1000 + int64(t.Nanosecond())/1e6)
}

// Time returns the date as a time.Time in UTC.
func (d DateTime) Time() time.Time {
	return time.Unix(int64(d)/1000, int64(d)%1000*1e6).UTC()
}

// Timestamp represents a BSON timestamp value: a Unix second count in T and
// an ordinal increment in I, packed on the wire as one uint64 with T in the
// high 32 bits.
type Timestamp struct {
	T uint32
	I uint32
}

// NewTimestampFromUint64 unpacks ts into a Timestamp.
func NewTimestampFromUint64(ts uint64) Timestamp {
	return Timestamp{T: uint32(ts >> 32), I: uint32(ts)}
}

// Uint64 packs the timestamp into a single uint64.
func (tp Timestamp) Uint64() uint64 {
	return uint64(tp.T)<<32 | uint64(tp.I)
}

// Equal compares tp to tp2 and returns true if they are equal.
func (tp Timestamp) Equal(tp2 Timestamp) bool {
	return tp.T == tp2.T && tp.I == tp2.I
}

// After reports whether the time instant tp is after tp2.
func (tp Timestamp) After(tp2 Timestamp) bool {
	return tp.T > tp2.T || (tp.T == tp2.T && tp.I > tp2.I)
}

// Before reports whether the time instant tp is before tp2.
func (tp Timestamp) Before(tp2 Timestamp) bool {
	return tp.T < tp2.T || (tp.T == tp2.T && tp.I < tp2.I)
}

// Regex represents a BSON regex value.
type Regex struct {
	Pattern string
	Options string
}

func (rp Regex) String() string {
	return `{"pattern": "` + rp.Pattern + `", "options": "` + rp.Options + `"}`
}

// Equal compares rp to rp2 and returns true if they are equal.
func (rp Regex) Equal(rp2 Regex) bool {
	return rp.Pattern == rp2.Pattern && rp.Options == rp2.Options
}

// validRegexOptions is the set of option characters BSON permits, in sorted
// order.
const validRegexOptions = "imsux"

// NormalizeRegexOptions validates options against the set "imsux" and
// returns them sorted ascending. Characters outside the set produce
// ErrInvalidRegexOptions; out-of-order input is merely sorted.
func NormalizeRegexOptions(options string) (string, error) {
	for _, r := range options {
		if !strings.ContainsRune(validRegexOptions, r) {
			return "", ErrInvalidRegexOptions
		}
	}
	return sortStringAlphebeticAscending(options), nil
}

// validateRegexPattern rejects patterns with an interior null byte. A
// single trailing null is tolerated and stripped, since the wire encoding
// terminates the pattern with one anyway.
func validateRegexPattern(pattern string) (string, error) {
	if idx := strings.IndexByte(pattern, 0x00); idx >= 0 && idx != len(pattern)-1 {
		return "", ErrInvalidRegexPattern
	}
	return strings.TrimSuffix(pattern, "\x00"), nil
}

type sortableString []rune

func (ss sortableString) Len() int {
	return len(ss)
}

func (ss sortableString) Less(i, j int) bool {
	return ss[i] < ss[j]
}

func (ss sortableString) Swap(i, j int) {
	ss[i], ss[j] = ss[j], ss[i]
}

func sortStringAlphebeticAscending(s string) string {
	ss := sortableString([]rune(s))
	sort.Sort(ss)
	return string([]rune(ss))
}

// MinKeyValue represents the BSON minkey value.
type MinKeyValue struct{}

// MaxKeyValue represents the BSON maxkey value.
type MaxKeyValue struct{}
