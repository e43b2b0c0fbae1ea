// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "strconv"

// ArrayIterator facilitates iterating over a BSON array. On the wire an
// array is a document whose keys are the decimal indexes "0", "1", and so
// on; the iterator yields the values and checks that every key matches its
// position.
type ArrayIterator struct {
	itr   *Iterator
	index int
	val   Value
	err   error
}

func newArrayIterator(data []byte) *ArrayIterator {
	return &ArrayIterator{itr: newIterator(data)}
}

// Next fetches the next value in the array, returning whether or not it was
// successful. An element whose key is not the expected index fails with
// ErrUnexpectedArrayItemName.
func (ai *ArrayIterator) Next() bool {
	if ai.err != nil {
		return false
	}
	if !ai.itr.Next() {
		ai.err = ai.itr.Err()
		return false
	}

	elem := ai.itr.Element()
	if string(elem.key) != strconv.Itoa(ai.index) {
		ai.err = ErrUnexpectedArrayItemName
		return false
	}

	ai.val = elem.Value()
	ai.index++
	return true
}

// Value returns the current value of the ArrayIterator. The value is valid
// until the next call to Next.
func (ai *ArrayIterator) Value() Value {
	return ai.val
}

// Index returns the index of the current value.
func (ai *ArrayIterator) Index() int {
	return ai.index - 1
}

// Err returns the error that occurred while iterating, if any.
func (ai *ArrayIterator) Err() error {
	return ai.err
}
