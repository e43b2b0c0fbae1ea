// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "bytes"

// Iterator facilitates iterating over the elements of a raw BSON document.
// Elements are decoded one at a time, so a malformed element is only
// reported once iteration reaches it. The yielded Elements are views into
// the iterated buffer.
type Iterator struct {
	data []byte
	pos  int
	end  int
	elem Element
	err  error
}

func newIterator(data []byte) *Iterator {
	itr := &Iterator{data: data}
	length, ok := readLength(data)
	if !ok || length < 5 {
		itr.err = ErrInvalidLength
		return itr
	}
	if len(data) < int(length) {
		itr.err = ErrIncompleteDocument
		return itr
	}
	if data[length-1] != 0x00 {
		itr.err = ErrMissingNull
		return itr
	}
	itr.pos = 4
	itr.end = int(length) - 1
	return itr
}

// Next fetches the next element of the document, returning whether or not
// it was successful. When it returns false, either the iterator is
// exhausted or an error occurred; use Err to tell the two apart.
func (itr *Iterator) Next() bool {
	if itr.err != nil || itr.pos >= itr.end {
		return false
	}

	t := Type(itr.data[itr.pos])
	if !t.IsValid() {
		itr.err = ErrInvalidElementType
		return false
	}

	keyStart := itr.pos + 1
	null := bytes.IndexByte(itr.data[keyStart:itr.end], 0x00)
	if null < 0 {
		itr.err = ErrInvalidKey
		return false
	}
	key := itr.data[keyStart : keyStart+null]

	valueStart := keyStart + null + 1
	size, err := valueSize(t, itr.data[valueStart:itr.end])
	if err != nil {
		itr.err = err
		return false
	}
	if valueStart+int(size) > itr.end {
		itr.err = ErrIncompleteDocument
		return false
	}

	itr.elem = Element{
		key: key,
		v:   Value{Type: t, Data: itr.data[valueStart : valueStart+int(size)]},
	}
	itr.pos = valueStart + int(size)
	return true
}

// Element returns the current element of the Iterator. The Element is valid
// until the next call to Next.
func (itr *Iterator) Element() Element {
	return itr.elem
}

// Err returns the error that occurred while iterating, if any.
func (itr *Iterator) Err() error {
	return itr.err
}
