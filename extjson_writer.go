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
	"math"
	"strconv"
	"strings"
	"time"
)

// rfc3339Milli is the datetime layout of the relaxed dialect: RFC 3339 with
// millisecond precision, trailing zeros dropped.
const rfc3339Milli = "2006-01-02T15:04:05.999Z07:00"

// MarshalExtJSON renders the document as MongoDB Extended JSON. With
// canonical set, every type is wrapped so the exact BSON type survives a
// round trip; relaxed favors plain JSON renderings for numbers and
// in-range datetimes.
//
// Binary values have no relaxed rendering, so marshaling a document that
// contains one with canonical unset fails with ErrBinaryRequiresCanonical.
func (d *Document) MarshalExtJSON(canonical bool) ([]byte, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	ejw := &extJSONWriter{buf: new(bytes.Buffer), canonical: canonical}
	if err := ejw.writeDocument(d.data); err != nil {
		return nil, err
	}
	return ejw.buf.Bytes(), nil
}

type extJSONWriter struct {
	buf       *bytes.Buffer
	canonical bool
}

func (ejw *extJSONWriter) writeDocument(data []byte) error {
	ejw.buf.WriteByte('{')
	itr := newIterator(data)
	first := true
	for itr.Next() {
		if !first {
			ejw.buf.WriteByte(',')
		}
		first = false
		elem := itr.Element()
		ejw.writeString(elem.Key())
		ejw.buf.WriteByte(':')
		if err := ejw.writeValue(elem.Value()); err != nil {
			return err
		}
	}
	if err := itr.Err(); err != nil {
		return err
	}
	ejw.buf.WriteByte('}')
	return nil
}

func (ejw *extJSONWriter) writeArray(data []byte) error {
	ejw.buf.WriteByte('[')
	itr := newArrayIterator(data)
	first := true
	for itr.Next() {
		if !first {
			ejw.buf.WriteByte(',')
		}
		first = false
		if err := ejw.writeValue(itr.Value()); err != nil {
			return err
		}
	}
	if err := itr.Err(); err != nil {
		return err
	}
	ejw.buf.WriteByte(']')
	return nil
}

func (ejw *extJSONWriter) writeValue(v Value) error {
	switch v.Type {
	case TypeDouble:
		f, err := v.Double()
		if err != nil {
			return err
		}
		s := formatDouble(f)
		if ejw.canonical {
			ejw.buf.WriteString(`{"$numberDouble":"` + s + `"}`)
		} else if math.IsInf(f, 0) || math.IsNaN(f) {
			ejw.buf.WriteString(`{"$numberDouble":"` + s + `"}`)
		} else {
			ejw.buf.WriteString(s)
		}
	case TypeString:
		s, err := v.StringValue()
		if err != nil {
			return err
		}
		ejw.writeString(s)
	case TypeEmbeddedDocument:
		return ejw.writeDocument(v.Data)
	case TypeArray:
		return ejw.writeArray(v.Data)
	case TypeBinary:
		if !ejw.canonical {
			return ErrBinaryRequiresCanonical
		}
		subtype, data, ok := ReadBinary(v.Data)
		if !ok {
			return NewErrTooSmall()
		}
		ejw.buf.WriteString(`{"$binary":{"base64":"`)
		ejw.buf.WriteString(base64.StdEncoding.EncodeToString(data))
		ejw.buf.WriteString(`","subType":"`)
		ejw.buf.WriteString(fmt.Sprintf("%02x", subtype))
		ejw.buf.WriteString(`"}}`)
	case TypeObjectID:
		oid, err := v.ObjectID()
		if err != nil {
			return err
		}
		ejw.buf.WriteString(`{"$oid":"` + oid.Hex() + `"}`)
	case TypeBoolean:
		b, err := v.Boolean()
		if err != nil {
			return err
		}
		ejw.buf.WriteString(strconv.FormatBool(b))
	case TypeDateTime:
		dt, err := v.DateTime()
		if err != nil {
			return err
		}
		if !ejw.canonical && dt >= 0 && int64(dt) < maxDateTimeMillis {
			ejw.buf.WriteString(`{"$date":"`)
			ejw.buf.WriteString(time.Unix(int64(dt)/1000, int64(dt)%1000*1e6).UTC().Format(rfc3339Milli))
			ejw.buf.WriteString(`"}`)
		} else {
			ejw.buf.WriteString(`{"$date":{"$numberLong":"` + strconv.FormatInt(int64(dt), 10) + `"}}`)
		}
	case TypeNull:
		ejw.buf.WriteString("null")
	case TypeRegex:
		r, err := v.Regex()
		if err != nil {
			return err
		}
		options, err := NormalizeRegexOptions(r.Options)
		if err != nil {
			return err
		}
		ejw.buf.WriteString(`{"$regularExpression":{"pattern":`)
		ejw.writeString(r.Pattern)
		ejw.buf.WriteString(`,"options":`)
		ejw.writeString(options)
		ejw.buf.WriteString(`}}`)
	case TypeInt32:
		i32, err := v.Int32()
		if err != nil {
			return err
		}
		if ejw.canonical {
			ejw.buf.WriteString(`{"$numberInt":"` + strconv.FormatInt(int64(i32), 10) + `"}`)
		} else {
			ejw.buf.WriteString(strconv.FormatInt(int64(i32), 10))
		}
	case TypeTimestamp:
		ts, err := v.Timestamp()
		if err != nil {
			return err
		}
		ejw.buf.WriteString(`{"$timestamp":{"t":` + strconv.FormatUint(uint64(ts.T), 10) +
			`,"i":` + strconv.FormatUint(uint64(ts.I), 10) + `}}`)
	case TypeInt64:
		i64, err := v.Int64()
		if err != nil {
			return err
		}
		if ejw.canonical {
			ejw.buf.WriteString(`{"$numberLong":"` + strconv.FormatInt(i64, 10) + `"}`)
		} else {
			ejw.buf.WriteString(strconv.FormatInt(i64, 10))
		}
	case TypeDecimal128:
		d128, err := v.Decimal128()
		if err != nil {
			return err
		}
		ejw.buf.WriteString(`{"$numberDecimal":"` + d128.String() + `"}`)
	case TypeMinKey:
		ejw.buf.WriteString(`{"$minKey":1}`)
	case TypeMaxKey:
		ejw.buf.WriteString(`{"$maxKey":1}`)
	default:
		return ErrInvalidElementType
	}
	return nil
}

// writeString writes s as a quoted JSON string. Only the characters JSON
// requires escaped are escaped; multi-byte UTF-8 passes through untouched.
func (ejw *extJSONWriter) writeString(s string) {
	ejw.buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			ejw.buf.WriteString(`\"`)
		case c == '\\':
			ejw.buf.WriteString(`\\`)
		case c == '\n':
			ejw.buf.WriteString(`\n`)
		case c == '\r':
			ejw.buf.WriteString(`\r`)
		case c == '\t':
			ejw.buf.WriteString(`\t`)
		case c == '\b':
			ejw.buf.WriteString(`\b`)
		case c == '\f':
			ejw.buf.WriteString(`\f`)
		case c < 0x20:
			ejw.buf.WriteString(fmt.Sprintf(`\u%04x`, c))
		default:
			ejw.buf.WriteByte(c)
		}
	}
	ejw.buf.WriteByte('"')
}

// formatDouble renders f the way extended JSON expects: shortest 'G' form
// with an explicit fractional part, so integral values carry a ".0" and
// exponent forms get one inserted into the mantissa. The non-finite values
// render as Infinity, -Infinity, and NaN.
func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		if math.Signbit(f) {
			return "-NaN"
		}
		return "NaN"
	}

	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsRune(s, '.') {
		if e := strings.IndexByte(s, 'E'); e >= 0 {
			s = s[:e] + ".0" + s[e:]
		} else {
			s += ".0"
		}
	}
	return s
}
