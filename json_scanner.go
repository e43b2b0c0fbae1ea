// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode"
	"unicode/utf16"
)

type jsonTokenType byte

const (
	beginObjectTokenType = jsonTokenType(iota)
	endObjectTokenType
	beginArrayTokenType
	endArrayTokenType
	colonTokenType
	commaTokenType
	int32TokenType
	int64TokenType
	doubleTokenType
	stringTokenType
	boolTokenType
	nullTokenType
	eofTokenType
)

// jsonToken is one lexical token of the input. v holds the decoded value
// for number, string, and bool tokens; p is the byte offset the token
// started at, for error reporting.
type jsonToken struct {
	t jsonTokenType
	v interface{}
	p int
}

// jsonScanner tokenizes JSON from an io.Reader. Numbers are pre-classified:
// an integer literal that fits in 32 bits is an int32 token, a wider one is
// an int64 token, and anything with a fraction, an exponent, or more than
// 64 bits of magnitude is a double token.
type jsonScanner struct {
	r    io.Reader
	buf  []byte
	pos  int
	read int // bytes consumed from previous buffer fills
}

// nextToken returns the next JSON token if one exists. A token is a
// character of the JSON grammar, a number, a string, or a literal.
func (js *jsonScanner) nextToken() (*jsonToken, error) {
	c, err := js.readNextByte()

	// skip whitespace
	for ; isWhiteSpace(c) && err == nil; c, err = js.readNextByte() {
	}

	if err == io.EOF {
		return &jsonToken{t: eofTokenType, p: js.offset()}, nil
	} else if err != nil {
		return nil, err
	}

	switch c {
	case '{':
		return &jsonToken{t: beginObjectTokenType, p: js.offset() - 1}, nil
	case '}':
		return &jsonToken{t: endObjectTokenType, p: js.offset() - 1}, nil
	case '[':
		return &jsonToken{t: beginArrayTokenType, p: js.offset() - 1}, nil
	case ']':
		return &jsonToken{t: endArrayTokenType, p: js.offset() - 1}, nil
	case ':':
		return &jsonToken{t: colonTokenType, p: js.offset() - 1}, nil
	case ',':
		return &jsonToken{t: commaTokenType, p: js.offset() - 1}, nil
	case '"': // RFC 8259 only allows double quotes
		return js.scanString()
	default:
		if c == '-' || isDigit(c) {
			return js.scanNumber(c)
		} else if c == 't' || c == 'f' || c == 'n' {
			return js.scanLiteral(c)
		}
		return nil, fmt.Errorf("invalid JSON input at position %d: %c", js.offset()-1, c)
	}
}

// offset is the absolute byte position of the next unread byte.
func (js *jsonScanner) offset() int {
	return js.read + js.pos
}

// readNextByte attempts to read the next byte from the buffer. If the
// buffer has been exhausted it is refilled from the reader first.
func (js *jsonScanner) readNextByte() (byte, error) {
	if js.pos >= len(js.buf) {
		if err := js.readIntoBuf(); err != nil {
			return 0, err
		}
	}

	b := js.buf[js.pos]
	js.pos++

	return b, nil
}

// unreadByte steps the scanner back over the last byte read. Used when a
// value terminator has been consumed while scanning a number or literal.
func (js *jsonScanner) unreadByte() {
	if js.pos > 0 {
		js.pos--
	}
}

// readIntoBuf reads up to 512 bytes from the reader into the buffer and
// resets the read position.
func (js *jsonScanner) readIntoBuf() error {
	if cap(js.buf) == 0 {
		js.buf = make([]byte, 0, 512)
	}

	js.read += len(js.buf)
	n, err := js.r.Read(js.buf[:cap(js.buf)])
	js.buf = js.buf[:n]
	js.pos = 0
	if n > 0 {
		return nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return err
}

func isWhiteSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool {
	return unicode.IsDigit(rune(c))
}

func isValueTerminator(c byte) bool {
	return c == ',' || c == '}' || c == ']' || isWhiteSpace(c)
}

// scanString reads from an opening '"' to a closing '"', reassembling
// escaped characters. \u escapes decode to the named code point, with
// UTF-16 surrogate pairs combined, not to raw bytes.
func (js *jsonScanner) scanString() (*jsonToken, error) {
	var b bytes.Buffer

	p := js.offset() - 1

	for {
		c, err := js.readNextByte()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("end of input in JSON string")
			}
			return nil, err
		}

		switch c {
		case '\\':
			c, err = js.readNextByte()
			if err != nil {
				return nil, err
			}
			switch c {
			case '"', '\\', '/':
				b.WriteByte(c)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				r, err := js.scanEscapedRune()
				if err != nil {
					return nil, err
				}
				if utf16.IsSurrogate(r) {
					r, err = js.scanLowSurrogate(r)
					if err != nil {
						return nil, err
					}
				}
				b.WriteRune(r)
			default:
				return nil, fmt.Errorf("invalid escape sequence in JSON string '\\%c'", c)
			}
		case '"':
			return &jsonToken{t: stringTokenType, v: b.String(), p: p}, nil
		default:
			b.WriteByte(c)
		}
	}
}

// scanEscapedRune reads the four hex digits following a \u and returns the
// code point they name.
func (js *jsonScanner) scanEscapedRune() (rune, error) {
	var hexDigits [4]byte
	for i := range hexDigits {
		c, err := js.readNextByte()
		if err != nil {
			return 0, err
		}
		hexDigits[i] = c
	}
	code, err := strconv.ParseUint(string(hexDigits[:]), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid \\u escape sequence in JSON string: %q", hexDigits)
	}
	return rune(code), nil
}

// scanLowSurrogate completes a surrogate pair whose high half is r. A
// missing or invalid low half decodes to the replacement character, the
// same behavior encoding/json has.
func (js *jsonScanner) scanLowSurrogate(r rune) (rune, error) {
	c1, err := js.readNextByte()
	if err != nil {
		if err == io.EOF {
			return unicode.ReplacementChar, nil
		}
		return 0, err
	}
	if c1 != '\\' {
		js.unreadByte()
		return unicode.ReplacementChar, nil
	}
	c2, err := js.readNextByte()
	if err != nil {
		return 0, err
	}
	if c2 != 'u' {
		return 0, fmt.Errorf("invalid escape sequence in JSON string '\\%c'", c2)
	}
	r2, err := js.scanEscapedRune()
	if err != nil {
		return 0, err
	}
	combined := utf16.DecodeRune(r, r2)
	return combined, nil
}

// scanLiteral reads an unquoted sequence of characters and returns the
// matching true, false, or null token, or an error for anything else.
func (js *jsonScanner) scanLiteral(first byte) (*jsonToken, error) {
	p := js.offset() - 1

	lit := make([]byte, 0, 5)
	lit = append(lit, first)

	for len(lit) < 5 {
		c, err := js.readNextByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isValueTerminator(c) {
			js.unreadByte()
			break
		}
		lit = append(lit, c)
	}

	switch string(lit) {
	case "true":
		return &jsonToken{t: boolTokenType, v: true, p: p}, nil
	case "false":
		// the loop stops at five bytes without having seen a terminator,
		// so the next byte must end the literal
		c, err := js.readNextByte()
		if err == nil {
			if !isValueTerminator(c) {
				return nil, fmt.Errorf("invalid JSON literal at position %d", p)
			}
			js.unreadByte()
		} else if err != io.EOF {
			return nil, err
		}
		return &jsonToken{t: boolTokenType, v: false, p: p}, nil
	case "null":
		return &jsonToken{t: nullTokenType, v: nil, p: p}, nil
	}

	return nil, fmt.Errorf("invalid JSON literal at position %d", p)
}

type numberScanState byte

const (
	sawLeadingMinus = iota
	sawLeadingZero
	sawIntegerDigits
	sawDecimalPoint
	sawFractionDigits
	sawExponentLetter
	sawExponentSign
	sawExponentDigits
	doneNumberState
	invalidNumberState
)

// scanNumber reads a JSON number (per RFC 8259).
func (js *jsonScanner) scanNumber(first byte) (*jsonToken, error) {
	var b bytes.Buffer
	var s numberScanState
	var c byte
	var err error

	t := int64TokenType // assume integral until proven otherwise
	start := js.offset() - 1

	b.WriteByte(first)

	switch first {
	case '-':
		s = sawLeadingMinus
	case '0':
		s = sawLeadingZero
	default:
		s = sawIntegerDigits
	}

	for {
		c, err = js.readNextByte()

		if err != nil && err != io.EOF {
			return nil, err
		}

		switch s {
		case sawLeadingMinus:
			switch c {
			case '0':
				s = sawLeadingZero
				b.WriteByte(c)
			default:
				if isDigit(c) {
					s = sawIntegerDigits
					b.WriteByte(c)
				} else {
					s = invalidNumberState
				}
			}
		case sawLeadingZero:
			switch c {
			case '.':
				s = sawDecimalPoint
				b.WriteByte(c)
			case 'e', 'E':
				s = sawExponentLetter
				b.WriteByte(c)
			default:
				if isValueTerminator(c) || err == io.EOF {
					s = doneNumberState
				} else {
					s = invalidNumberState
				}
			}
		case sawIntegerDigits:
			switch c {
			case '.':
				s = sawDecimalPoint
				b.WriteByte(c)
			case 'e', 'E':
				s = sawExponentLetter
				b.WriteByte(c)
			default:
				if isValueTerminator(c) || err == io.EOF {
					s = doneNumberState
				} else if isDigit(c) {
					b.WriteByte(c)
				} else {
					s = invalidNumberState
				}
			}
		case sawDecimalPoint:
			t = doubleTokenType
			if isDigit(c) {
				s = sawFractionDigits
				b.WriteByte(c)
			} else {
				s = invalidNumberState
			}
		case sawFractionDigits:
			switch c {
			case 'e', 'E':
				s = sawExponentLetter
				b.WriteByte(c)
			default:
				if isValueTerminator(c) || err == io.EOF {
					s = doneNumberState
				} else if isDigit(c) {
					b.WriteByte(c)
				} else {
					s = invalidNumberState
				}
			}
		case sawExponentLetter:
			t = doubleTokenType
			switch c {
			case '+', '-':
				s = sawExponentSign
				b.WriteByte(c)
			default:
				if isDigit(c) {
					s = sawExponentDigits
					b.WriteByte(c)
				} else {
					s = invalidNumberState
				}
			}
		case sawExponentSign:
			if isDigit(c) {
				s = sawExponentDigits
				b.WriteByte(c)
			} else {
				s = invalidNumberState
			}
		case sawExponentDigits:
			if isValueTerminator(c) || err == io.EOF {
				s = doneNumberState
			} else if isDigit(c) {
				b.WriteByte(c)
			} else {
				s = invalidNumberState
			}
		}

		switch s {
		case invalidNumberState:
			return nil, fmt.Errorf("invalid JSON number at position %d", start)
		case doneNumberState:
			if err != io.EOF {
				js.unreadByte()
			}
			if t == doubleTokenType {
				v, err := strconv.ParseFloat(b.String(), 64)
				if err != nil {
					return nil, err
				}
				return &jsonToken{t: t, v: v, p: start}, nil
			}

			v, err := strconv.ParseInt(b.String(), 10, 64)
			if err != nil {
				// wider than 64 bits; best effort as a double
				f, ferr := strconv.ParseFloat(b.String(), 64)
				if ferr != nil {
					return nil, err
				}
				return &jsonToken{t: doubleTokenType, v: f, p: start}, nil
			}

			if v < math.MinInt32 || v > math.MaxInt32 {
				return &jsonToken{t: t, v: v, p: start}, nil
			}

			return &jsonToken{t: int32TokenType, v: int32(v), p: start}, nil
		}
	}
}
