// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/ikmak/bson/decimal"
	"github.com/ikmak/bson/objectid"
)

// UnmarshalExtJSON parses a single extended JSON document from b. Both the
// canonical and the relaxed dialect are accepted, in any mixture.
func UnmarshalExtJSON(b []byte) (*Document, error) {
	return ParseExtJSON(bytes.NewReader(b))
}

// ParseExtJSON parses a single extended JSON document from r. The top
// level value must be an object; trailing non-whitespace input is an
// error.
func ParseExtJSON(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, ErrNilReader
	}
	p := &extJSONParser{js: &jsonScanner{r: r}}

	tok, err := p.js.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.t != beginObjectTokenType {
		return nil, fmt.Errorf("invalid JSON input: expected '{' at position %d", tok.p)
	}

	data, err := p.parseDocument(nil)
	if err != nil {
		return nil, err
	}

	tok, err = p.js.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.t != eofTokenType {
		return nil, fmt.Errorf("invalid JSON input: unexpected trailing input at position %d", tok.p)
	}

	return &Document{data: data}, nil
}

type extJSONParser struct {
	js *jsonScanner
}

// parseDocument parses the body of an object whose '{' has already been
// consumed and appends its BSON encoding, length prefix and terminator
// included, to dst.
func (p *extJSONParser) parseDocument(dst []byte) ([]byte, error) {
	dst, start := ReserveLength(dst)

	first := true
	for {
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.t == endObjectTokenType {
			break
		}
		if !first {
			if tok.t != commaTokenType {
				return nil, fmt.Errorf("invalid JSON input: expected ',' or '}' at position %d", tok.p)
			}
			tok, err = p.js.nextToken()
			if err != nil {
				return nil, err
			}
		}
		first = false

		key, ok := tok.v.(string)
		if tok.t != stringTokenType || !ok {
			return nil, fmt.Errorf("invalid JSON input: expected object key at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		dst, err = p.parseElement(dst, key)
		if err != nil {
			return nil, err
		}
	}

	dst = append(dst, 0x00)
	return UpdateLength(dst, start), nil
}

// parseArray parses the body of an array whose '[' has already been
// consumed. On the wire it is a document keyed by decimal index.
func (p *extJSONParser) parseArray(dst []byte) ([]byte, error) {
	dst, start := ReserveLength(dst)

	index := 0
	for {
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.t == endArrayTokenType {
			break
		}
		if index > 0 {
			if tok.t != commaTokenType {
				return nil, fmt.Errorf("invalid JSON input: expected ',' or ']' at position %d", tok.p)
			}
			tok, err = p.js.nextToken()
			if err != nil {
				return nil, err
			}
		}

		dst, err = p.parseValueToken(dst, strconv.Itoa(index), tok)
		if err != nil {
			return nil, err
		}
		index++
	}

	dst = append(dst, 0x00)
	return UpdateLength(dst, start), nil
}

func (p *extJSONParser) parseElement(dst []byte, key string) ([]byte, error) {
	tok, err := p.js.nextToken()
	if err != nil {
		return nil, err
	}
	return p.parseValueToken(dst, key, tok)
}

// parseValueToken appends one element, keyed by key, whose leading token is
// tok.
func (p *extJSONParser) parseValueToken(dst []byte, key string, tok *jsonToken) ([]byte, error) {
	switch tok.t {
	case stringTokenType:
		return AppendStringElement(dst, key, tok.v.(string)), nil
	case int32TokenType:
		return AppendInt32Element(dst, key, tok.v.(int32)), nil
	case int64TokenType:
		return AppendInt64Element(dst, key, tok.v.(int64)), nil
	case doubleTokenType:
		return AppendDoubleElement(dst, key, tok.v.(float64)), nil
	case boolTokenType:
		return AppendBooleanElement(dst, key, tok.v.(bool)), nil
	case nullTokenType:
		return AppendNullElement(dst, key), nil
	case beginArrayTokenType:
		return p.parseArray(AppendHeader(dst, TypeArray, key))
	case beginObjectTokenType:
		return p.parseObject(dst, key)
	default:
		return nil, fmt.Errorf("invalid JSON input: unexpected token at position %d", tok.p)
	}
}

// parseObject handles a JSON object in value position. Whether it is a
// plain embedded document or a type wrapper is unknown until its first key
// has been read, so the element is written as an embedded document first:
// typePos records where its type tag went and mark where its value bytes
// begin. When the first key turns out to be a wrapper key, everything from
// mark on is discarded, the wrapped value's encoding is appended in its
// place, and the tag at typePos is patched to the real type.
func (p *extJSONParser) parseObject(dst []byte, key string) ([]byte, error) {
	typePos := len(dst)
	dst = AppendHeader(dst, TypeEmbeddedDocument, key)
	mark := len(dst)

	tok, err := p.js.nextToken()
	if err != nil {
		return nil, err
	}
	if tok.t == endObjectTokenType {
		// empty document
		dst, start := ReserveLength(dst)
		dst = append(dst, 0x00)
		return UpdateLength(dst, start), nil
	}

	firstKey, ok := tok.v.(string)
	if tok.t != stringTokenType || !ok {
		return nil, fmt.Errorf("invalid JSON input: expected object key at position %d", tok.p)
	}

	if t, wrapper := wrapperKeyType(firstKey); wrapper {
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		dst = dst[:mark]
		dst, err = p.parseWrappedValue(dst, firstKey)
		if err != nil {
			return nil, err
		}
		if err = p.expectEndObject(); err != nil {
			return nil, err
		}
		dst[typePos] = byte(t)
		return dst, nil
	}

	// plain embedded document; firstKey is an ordinary field
	dst, start := ReserveLength(dst)
	if err = p.expectColon(); err != nil {
		return nil, err
	}
	dst, err = p.parseElement(dst, firstKey)
	if err != nil {
		return nil, err
	}

	for {
		tok, err = p.js.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.t == endObjectTokenType {
			break
		}
		if tok.t != commaTokenType {
			return nil, fmt.Errorf("invalid JSON input: expected ',' or '}' at position %d", tok.p)
		}
		tok, err = p.js.nextToken()
		if err != nil {
			return nil, err
		}
		k, ok := tok.v.(string)
		if tok.t != stringTokenType || !ok {
			return nil, fmt.Errorf("invalid JSON input: expected object key at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		dst, err = p.parseElement(dst, k)
		if err != nil {
			return nil, err
		}
	}

	dst = append(dst, 0x00)
	return UpdateLength(dst, start), nil
}

// wrapperKeyType maps an extended JSON wrapper key to the BSON type it
// encodes. Keys that merely start with '$' are not wrappers and parse as
// ordinary fields.
func wrapperKeyType(key string) (Type, bool) {
	switch key {
	case "$numberInt":
		return TypeInt32, true
	case "$numberLong":
		return TypeInt64, true
	case "$numberDouble":
		return TypeDouble, true
	case "$numberDecimal":
		return TypeDecimal128, true
	case "$oid":
		return TypeObjectID, true
	case "$date":
		return TypeDateTime, true
	case "$timestamp":
		return TypeTimestamp, true
	case "$regularExpression":
		return TypeRegex, true
	case "$binary":
		return TypeBinary, true
	case "$minKey":
		return TypeMinKey, true
	case "$maxKey":
		return TypeMaxKey, true
	}
	return 0, false
}

// parseWrappedValue appends the value bytes (no header) for the wrapper
// named by key. The colon after the key has been consumed; the closing '}'
// has not.
func (p *extJSONParser) parseWrappedValue(dst []byte, key string) ([]byte, error) {
	switch key {
	case "$numberInt":
		s, err := p.readStringValue(key)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid $numberInt value %q", s)
		}
		return AppendInt32(dst, int32(i)), nil
	case "$numberLong":
		s, err := p.readStringValue(key)
		if err != nil {
			return nil, err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid $numberLong value %q", s)
		}
		return AppendInt64(dst, i), nil
	case "$numberDouble":
		s, err := p.readStringValue(key)
		if err != nil {
			return nil, err
		}
		f, err := parseDoubleString(s)
		if err != nil {
			return nil, err
		}
		return AppendDouble(dst, f), nil
	case "$numberDecimal":
		s, err := p.readStringValue(key)
		if err != nil {
			return nil, err
		}
		d128, err := decimal.ParseDecimal128(s)
		if err != nil {
			return nil, fmt.Errorf("invalid $numberDecimal value %q", s)
		}
		return AppendDecimal128(dst, d128), nil
	case "$oid":
		s, err := p.readStringValue(key)
		if err != nil {
			return nil, err
		}
		oid, err := objectid.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid $oid value %q", s)
		}
		return AppendObjectID(dst, oid), nil
	case "$date":
		return p.parseDateValue(dst)
	case "$timestamp":
		return p.parseTimestampValue(dst)
	case "$regularExpression":
		return p.parseRegexValue(dst)
	case "$binary":
		return p.parseBinaryValue(dst)
	case "$minKey", "$maxKey":
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		if i, ok := tok.v.(int32); tok.t != int32TokenType || !ok || i != 1 {
			return nil, fmt.Errorf("invalid %s value at position %d: must be 1", key, tok.p)
		}
		return dst, nil
	}
	return nil, fmt.Errorf("unsupported wrapper key %q", key)
}

// parseDoubleString converts the string payload of a $numberDouble, which
// may name the non-finite values.
func parseDoubleString(s string) (float64, error) {
	switch s {
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	case "-NaN":
		return math.Copysign(math.NaN(), -1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid $numberDouble value %q", s)
	}
	return f, nil
}

// parseDateValue handles both $date forms: an ISO-8601 string (relaxed)
// and a nested {"$numberLong": "ms"} wrapper (canonical).
func (p *extJSONParser) parseDateValue(dst []byte) ([]byte, error) {
	tok, err := p.js.nextToken()
	if err != nil {
		return nil, err
	}
	switch tok.t {
	case stringTokenType:
		t, err := time.Parse(time.RFC3339Nano, tok.v.(string))
		if err != nil {
			return nil, fmt.Errorf("invalid $date value %q", tok.v.(string))
		}
		return AppendDateTime(dst, t.Unix()*1000+int64(t.Nanosecond())/1e6), nil
	case beginObjectTokenType:
		tok, err = p.js.nextToken()
		if err != nil {
			return nil, err
		}
		if k, ok := tok.v.(string); tok.t != stringTokenType || !ok || k != "$numberLong" {
			return nil, fmt.Errorf("invalid $date value at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		s, err := p.readString()
		if err != nil {
			return nil, err
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid $date value %q", s)
		}
		if err = p.expectEndObject(); err != nil {
			return nil, err
		}
		return AppendDateTime(dst, ms), nil
	default:
		return nil, fmt.Errorf("invalid $date value at position %d", tok.p)
	}
}

// parseTimestampValue handles {"t": seconds, "i": increment}, fields in
// either order.
func (p *extJSONParser) parseTimestampValue(dst []byte) ([]byte, error) {
	if err := p.expectBeginObject("$timestamp"); err != nil {
		return nil, err
	}

	var t, i uint32
	var sawT, sawI bool
	for n := 0; n < 2; n++ {
		if n > 0 {
			if err := p.expectComma("$timestamp"); err != nil {
				return nil, err
			}
		}
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		k, ok := tok.v.(string)
		if tok.t != stringTokenType || !ok || (k != "t" && k != "i") {
			return nil, fmt.Errorf("invalid $timestamp field at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		u, err := p.readUint32(k)
		if err != nil {
			return nil, err
		}
		switch k {
		case "t":
			t, sawT = u, true
		case "i":
			i, sawI = u, true
		}
	}
	if !sawT || !sawI {
		return nil, fmt.Errorf("invalid $timestamp value: both t and i are required")
	}
	if err := p.expectEndObject(); err != nil {
		return nil, err
	}
	return AppendTimestamp(dst, t, i), nil
}

// parseRegexValue handles {"pattern": p, "options": o}, fields in either
// order. The options are validated and sorted; the pattern may not contain
// an interior null.
func (p *extJSONParser) parseRegexValue(dst []byte) ([]byte, error) {
	if err := p.expectBeginObject("$regularExpression"); err != nil {
		return nil, err
	}

	var pattern, options string
	var sawPattern, sawOptions bool
	for n := 0; n < 2; n++ {
		if n > 0 {
			if err := p.expectComma("$regularExpression"); err != nil {
				return nil, err
			}
		}
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		k, ok := tok.v.(string)
		if tok.t != stringTokenType || !ok || (k != "pattern" && k != "options") {
			return nil, fmt.Errorf("invalid $regularExpression field at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		s, err := p.readString()
		if err != nil {
			return nil, err
		}
		switch k {
		case "pattern":
			pattern, sawPattern = s, true
		case "options":
			options, sawOptions = s, true
		}
	}
	if !sawPattern || !sawOptions {
		return nil, fmt.Errorf("invalid $regularExpression value: both pattern and options are required")
	}
	if err := p.expectEndObject(); err != nil {
		return nil, err
	}

	pattern, err := validateRegexPattern(pattern)
	if err != nil {
		return nil, err
	}
	options, err = NormalizeRegexOptions(options)
	if err != nil {
		return nil, err
	}
	return AppendRegex(dst, pattern, options), nil
}

// parseBinaryValue handles {"base64": data, "subType": hex}, fields in
// either order.
func (p *extJSONParser) parseBinaryValue(dst []byte) ([]byte, error) {
	if err := p.expectBeginObject("$binary"); err != nil {
		return nil, err
	}

	var data []byte
	var subtype byte
	var sawData, sawSubtype bool
	for n := 0; n < 2; n++ {
		if n > 0 {
			if err := p.expectComma("$binary"); err != nil {
				return nil, err
			}
		}
		tok, err := p.js.nextToken()
		if err != nil {
			return nil, err
		}
		k, ok := tok.v.(string)
		if tok.t != stringTokenType || !ok || (k != "base64" && k != "subType") {
			return nil, fmt.Errorf("invalid $binary field at position %d", tok.p)
		}
		if err = p.expectColon(); err != nil {
			return nil, err
		}
		s, err := p.readString()
		if err != nil {
			return nil, err
		}
		switch k {
		case "base64":
			data, err = base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, fmt.Errorf("invalid $binary base64 value %q", s)
			}
			sawData = true
		case "subType":
			u, err := strconv.ParseUint(s, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid $binary subType value %q", s)
			}
			subtype, sawSubtype = byte(u), true
		}
	}
	if !sawData || !sawSubtype {
		return nil, fmt.Errorf("invalid $binary value: both base64 and subType are required")
	}
	if err := p.expectEndObject(); err != nil {
		return nil, err
	}
	return AppendBinary(dst, subtype, data), nil
}

func (p *extJSONParser) expectColon() error {
	tok, err := p.js.nextToken()
	if err != nil {
		return err
	}
	if tok.t != colonTokenType {
		return fmt.Errorf("invalid JSON input: expected ':' at position %d", tok.p)
	}
	return nil
}

func (p *extJSONParser) expectEndObject() error {
	tok, err := p.js.nextToken()
	if err != nil {
		return err
	}
	if tok.t != endObjectTokenType {
		return fmt.Errorf("invalid JSON input: expected '}' at position %d", tok.p)
	}
	return nil
}

func (p *extJSONParser) expectBeginObject(wrapper string) error {
	tok, err := p.js.nextToken()
	if err != nil {
		return err
	}
	if tok.t != beginObjectTokenType {
		return fmt.Errorf("invalid %s value: expected '{' at position %d", wrapper, tok.p)
	}
	return nil
}

func (p *extJSONParser) expectComma(wrapper string) error {
	tok, err := p.js.nextToken()
	if err != nil {
		return err
	}
	if tok.t != commaTokenType {
		return fmt.Errorf("invalid %s value: expected ',' at position %d", wrapper, tok.p)
	}
	return nil
}

func (p *extJSONParser) readString() (string, error) {
	tok, err := p.js.nextToken()
	if err != nil {
		return "", err
	}
	s, ok := tok.v.(string)
	if tok.t != stringTokenType || !ok {
		return "", fmt.Errorf("invalid JSON input: expected string at position %d", tok.p)
	}
	return s, nil
}

func (p *extJSONParser) readStringValue(wrapper string) (string, error) {
	s, err := p.readString()
	if err != nil {
		return "", fmt.Errorf("invalid %s value: %s", wrapper, err)
	}
	return s, nil
}

func (p *extJSONParser) readUint32(field string) (uint32, error) {
	tok, err := p.js.nextToken()
	if err != nil {
		return 0, err
	}
	var i64 int64
	switch tok.t {
	case int32TokenType:
		i64 = int64(tok.v.(int32))
	case int64TokenType:
		i64 = tok.v.(int64)
	default:
		return 0, fmt.Errorf("invalid %s value at position %d: expected integer", field, tok.p)
	}
	if i64 < 0 || i64 > math.MaxUint32 {
		return 0, fmt.Errorf("invalid %s value %d: out of range", field, i64)
	}
	return uint32(i64), nil
}
