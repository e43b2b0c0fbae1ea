// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentFromBytes(t *testing.T) {
	valid := []byte{0x05, 0x00, 0x00, 0x00, 0x00}

	testCases := []struct {
		name string
		b    []byte
		err  error
	}{
		{"empty document", valid, nil},
		{"too short", []byte{0x05, 0x00, 0x00}, NewErrTooSmall()},
		{"invalid length", []byte{0x04, 0x00, 0x00, 0x00, 0x00}, ErrInvalidLength},
		{"length past end", []byte{0x06, 0x00, 0x00, 0x00, 0x00}, ErrIncompleteDocument},
		{"missing terminator", []byte{0x05, 0x00, 0x00, 0x00, 0x01}, ErrMissingNull},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := NewDocumentFromBytes(tc.b)
			if tc.err != nil {
				requireErrEqual(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.b, doc.Bytes())
		})
	}

	t.Run("bytes are copied", func(t *testing.T) {
		src := append([]byte{}, valid...)
		doc, err := NewDocumentFromBytes(src)
		require.NoError(t, err)
		src[4] = 0xFF
		require.Equal(t, valid, doc.Bytes())
	})
}

func TestReadDocument(t *testing.T) {
	doc, err := NewDocumentBuilder().
		AppendString("hello", "world").
		AppendInt32("n", 42).
		Build()
	require.NoError(t, err)

	t.Run("reads one document", func(t *testing.T) {
		got, err := ReadDocument(bytes.NewReader(doc.Bytes()))
		require.NoError(t, err)
		require.True(t, doc.Equal(got))
	})

	t.Run("leaves trailing bytes", func(t *testing.T) {
		r := bytes.NewReader(append(append([]byte{}, doc.Bytes()...), 0xAA, 0xBB))
		got, err := ReadDocument(r)
		require.NoError(t, err)
		require.True(t, doc.Equal(got))
		rest, err := io.ReadAll(r)
		require.NoError(t, err)
		require.Equal(t, []byte{0xAA, 0xBB}, rest)
	})

	t.Run("short stream", func(t *testing.T) {
		_, err := ReadDocument(bytes.NewReader(doc.Bytes()[:doc.Len()-3]))
		require.Error(t, err)
		require.Equal(t, io.ErrUnexpectedEOF, errors.Cause(err))
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := ReadDocument(bytes.NewReader(nil))
		require.Error(t, err)
		require.Equal(t, io.EOF, errors.Cause(err))
	})

	t.Run("nil reader", func(t *testing.T) {
		_, err := ReadDocument(nil)
		require.Equal(t, ErrNilReader, err)
	})

	t.Run("one byte at a time", func(t *testing.T) {
		got, err := ReadDocument(iotest(doc.Bytes()))
		require.NoError(t, err)
		require.True(t, doc.Equal(got))
	})
}

// iotest wraps b in a reader that yields a single byte per Read call.
func iotest(b []byte) io.Reader {
	return &oneByteReader{b: b}
}

type oneByteReader struct {
	b []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.b[0]
	r.b = r.b[1:]
	return 1, nil
}

func TestDocumentLookup(t *testing.T) {
	doc, err := NewDocumentBuilder().
		AppendInt32("a", 1).
		StartDocument("sub").
		AppendInt32("b", 2).
		Finish().
		AppendString("c", "three").
		Build()
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		elem, err := doc.Lookup("c")
		require.NoError(t, err)
		require.Equal(t, "c", elem.Key())
		s, err := elem.Value().StringValue()
		require.NoError(t, err)
		require.Equal(t, "three", s)
	})

	t.Run("does not descend", func(t *testing.T) {
		_, err := doc.Lookup("b")
		require.Equal(t, ErrElementNotFound, err)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := doc.Lookup("")
		require.Equal(t, ErrEmptyKey, err)
	})

	t.Run("nil document", func(t *testing.T) {
		var d *Document
		_, err := d.Lookup("a")
		require.Equal(t, ErrNilDocument, err)
	})
}

func TestDocumentElementAtAndKeys(t *testing.T) {
	doc, err := NewDocumentBuilder().
		AppendInt32("first", 1).
		AppendInt32("second", 2).
		AppendInt32("third", 3).
		Build()
	require.NoError(t, err)

	elem, err := doc.ElementAt(1)
	require.NoError(t, err)
	require.Equal(t, "second", elem.Key())

	_, err = doc.ElementAt(3)
	require.Equal(t, ErrOutOfBounds, err)

	keys, err := doc.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, keys)
}

func TestIterator(t *testing.T) {
	t.Run("yields elements in order", func(t *testing.T) {
		doc, err := NewDocumentBuilder().
			AppendDouble("pi", 3.14159).
			AppendBoolean("ok", true).
			AppendNull("nothing").
			Build()
		require.NoError(t, err)

		var keys []string
		var types []Type
		itr := doc.Iterator()
		for itr.Next() {
			keys = append(keys, itr.Element().Key())
			types = append(types, itr.Element().Type())
		}
		require.NoError(t, itr.Err())
		require.Equal(t, []string{"pi", "ok", "nothing"}, keys)
		require.Equal(t, []Type{TypeDouble, TypeBoolean, TypeNull}, types)
	})

	t.Run("unknown type tag", func(t *testing.T) {
		// {<0x42> "a": ...}
		data := []byte{0x08, 0x00, 0x00, 0x00, 0x42, 'a', 0x00, 0x00}
		itr := newIterator(data)
		require.False(t, itr.Next())
		require.Equal(t, ErrInvalidElementType, itr.Err())
	})

	t.Run("value runs past document end", func(t *testing.T) {
		// declared int32 but only two value bytes before the terminator
		data := []byte{0x0A, 0x00, 0x00, 0x00, 0x10, 'a', 0x00, 0x01, 0x00, 0x00}
		itr := newIterator(data)
		require.False(t, itr.Next())
		require.Equal(t, ErrIncompleteDocument, itr.Err())
	})

	t.Run("key missing terminator", func(t *testing.T) {
		data := []byte{0x08, 0x00, 0x00, 0x00, 0x10, 'a', 'b', 0x00}
		itr := newIterator(data)
		require.False(t, itr.Next())
		require.Equal(t, ErrInvalidKey, itr.Err())
	})
}

func TestArrayIterator(t *testing.T) {
	t.Run("indexes must match", func(t *testing.T) {
		// array document {"0": 1, "2": 2}
		var dst []byte
		dst, start := ReserveLength(dst)
		dst = AppendInt32Element(dst, "0", 1)
		dst = AppendInt32Element(dst, "2", 2)
		dst = append(dst, 0x00)
		dst = UpdateLength(dst, start)

		itr := newArrayIterator(dst)
		require.True(t, itr.Next())
		require.Equal(t, 0, itr.Index())
		require.False(t, itr.Next())
		require.Equal(t, ErrUnexpectedArrayItemName, itr.Err())
	})

	t.Run("empty array", func(t *testing.T) {
		itr := newArrayIterator([]byte{0x05, 0x00, 0x00, 0x00, 0x00})
		require.False(t, itr.Next())
		require.NoError(t, itr.Err())
	})
}

func TestDocumentValidate(t *testing.T) {
	t.Run("valid nested", func(t *testing.T) {
		doc, err := NewDocumentBuilder().
			StartDocument("d").
			StartArray("a").
			AppendInt32("", 1).
			Finish().
			Finish().
			Build()
		require.NoError(t, err)
		require.NoError(t, doc.Validate())
	})

	t.Run("bad boolean byte inside embedded document", func(t *testing.T) {
		var inner []byte
		inner, s := ReserveLength(inner)
		inner = append(AppendHeader(inner, TypeBoolean, "b"), 0x03)
		inner = append(inner, 0x00)
		inner = UpdateLength(inner, s)

		var outer []byte
		outer, s = ReserveLength(outer)
		outer = AppendDocumentElement(outer, "d", inner)
		outer = append(outer, 0x00)
		outer = UpdateLength(outer, s)

		doc, err := NewDocumentFromBytes(outer)
		require.NoError(t, err)
		require.Equal(t, ErrInvalidBooleanType, doc.Validate())
	})

	t.Run("misnamed array item", func(t *testing.T) {
		var arr []byte
		arr, s := ReserveLength(arr)
		arr = AppendInt32Element(arr, "1", 1)
		arr = append(arr, 0x00)
		arr = UpdateLength(arr, s)

		var outer []byte
		outer, s = ReserveLength(outer)
		outer = AppendArrayElement(outer, "a", arr)
		outer = append(outer, 0x00)
		outer = UpdateLength(outer, s)

		doc, err := NewDocumentFromBytes(outer)
		require.NoError(t, err)
		require.Equal(t, ErrUnexpectedArrayItemName, doc.Validate())
	})
}

func TestDocumentEqual(t *testing.T) {
	d1, err := NewDocumentBuilder().AppendInt32("a", 1).Build()
	require.NoError(t, err)
	d2, err := NewDocumentBuilder().AppendInt32("a", 1).Build()
	require.NoError(t, err)
	d3, err := NewDocumentBuilder().AppendInt64("a", 1).Build()
	require.NoError(t, err)

	require.True(t, d1.Equal(d2))
	require.False(t, d1.Equal(d3))
	require.False(t, d1.Equal(nil))

	var nilDoc *Document
	require.True(t, nilDoc.Equal(nil))
}
