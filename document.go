// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Document owns a raw BSON buffer. The first four bytes are the
// little-endian total length of the buffer and the last byte is 0x00; the
// buffer is self-describing and is never mutated after construction.
//
// Elements are read lazily: Iterator and Lookup yield Element views into
// the buffer without copying value payloads, so all lookups run in O(n)
// time with no index maintained.
type Document struct {
	data []byte
}

// NewDocumentFromBytes constructs a Document from the given byte slice. The
// bytes are copied, so the caller keeps ownership of b.
func NewDocumentFromBytes(b []byte) (*Document, error) {
	if len(b) < 5 {
		return nil, NewErrTooSmall()
	}
	length, _ := readLength(b)
	if length < 5 {
		return nil, ErrInvalidLength
	}
	if len(b) < int(length) {
		return nil, ErrIncompleteDocument
	}
	if b[length-1] != 0x00 {
		return nil, ErrMissingNull
	}

	data := make([]byte, length)
	copy(data, b)
	return &Document{data: data}, nil
}

// ReadDocument reads a length-prefixed document from the given io.Reader.
// Partial reads are retried until the declared length is satisfied; a
// stream that ends early fails with an unexpected EOF error.
func ReadDocument(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, ErrNilReader
	}

	var lengthBytes [4]byte

	_, err := io.ReadFull(r, lengthBytes[:])
	if err != nil {
		return nil, errors.Wrap(err, "unable to read document length")
	}

	length, _ := readLength(lengthBytes[:])
	if length < 5 {
		return nil, ErrInvalidLength
	}

	data := make([]byte, length)
	copy(data, lengthBytes[:])

	_, err = io.ReadFull(r, data[4:])
	if err != nil {
		return nil, errors.Wrap(err, "unable to read full document")
	}

	if data[length-1] != 0x00 {
		return nil, ErrMissingNull
	}

	return &Document{data: data}, nil
}

// Bytes returns the raw buffer. The caller must not mutate it.
func (d *Document) Bytes() []byte {
	if d == nil {
		return nil
	}
	return d.data
}

// Len returns the total length of the document in bytes.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.data)
}

// Iterator returns an Iterator over the elements of this document.
func (d *Document) Iterator() *Iterator {
	return newIterator(d.data)
}

// Lookup searches the top level of the document for the given key with a
// single linear scan. It never descends into embedded documents or arrays.
// ErrElementNotFound is returned when no element matches; an unrecognized
// type tag anywhere in the scan fails with ErrInvalidElementType, since
// the skip distance of the remaining elements cannot be known.
func (d *Document) Lookup(key string) (Element, error) {
	if d == nil {
		return Element{}, ErrNilDocument
	}
	if key == "" {
		return Element{}, ErrEmptyKey
	}

	itr := d.Iterator()
	for itr.Next() {
		if string(itr.Element().key) == key {
			return itr.Element(), nil
		}
	}
	if err := itr.Err(); err != nil {
		return Element{}, err
	}
	return Element{}, ErrElementNotFound
}

// ElementAt retrieves the element at the given index. All elements up to
// and including that index are validated in the process.
func (d *Document) ElementAt(index uint) (Element, error) {
	if d == nil {
		return Element{}, ErrNilDocument
	}

	var current uint
	itr := d.Iterator()
	for itr.Next() {
		if current == index {
			return itr.Element(), nil
		}
		current++
	}
	if err := itr.Err(); err != nil {
		return Element{}, err
	}
	return Element{}, ErrOutOfBounds
}

// Keys returns the top-level keys of the document in order.
func (d *Document) Keys() ([]string, error) {
	if d == nil {
		return nil, ErrNilDocument
	}

	keys := make([]string, 0)
	itr := d.Iterator()
	for itr.Next() {
		keys = append(keys, itr.Element().Key())
	}
	if err := itr.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Validate walks the document, recursing into embedded documents and
// arrays, and returns the first format violation found.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	return validateRaw(d.data)
}

func validateRaw(data []byte) error {
	itr := newIterator(data)
	for itr.Next() {
		elem := itr.Element()
		switch elem.Type() {
		case TypeEmbeddedDocument:
			if err := validateRaw(elem.v.Data); err != nil {
				return err
			}
		case TypeArray:
			arr := newArrayIterator(elem.v.Data)
			for arr.Next() {
			}
			if err := arr.Err(); err != nil {
				return err
			}
		case TypeBoolean:
			if _, err := elem.v.Boolean(); err != nil {
				return err
			}
		}
	}
	return itr.Err()
}

// Equal compares this document to another, returning true if they are
// byte-for-byte equal.
func (d *Document) Equal(d2 *Document) bool {
	if d == nil || d2 == nil {
		return d == d2
	}
	return bytes.Equal(d.data, d2.data)
}

// String implements the fmt.Stringer interface, rendering the document as
// relaxed extended JSON. Documents that cannot be rendered relaxed (binary
// elements) fall back to the canonical dialect.
func (d *Document) String() string {
	out, err := d.MarshalExtJSON(false)
	if err != nil {
		out, err = d.MarshalExtJSON(true)
		if err != nil {
			return ""
		}
	}
	return string(out)
}
