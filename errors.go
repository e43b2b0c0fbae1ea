// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-stack/stack"
)

// ErrTooSmall indicates that a slice provided to read from or write into is
// not large enough to fit the data.
type ErrTooSmall struct {
	Stack stack.CallStack
}

// NewErrTooSmall creates a new ErrTooSmall with the current stack.
func NewErrTooSmall() ErrTooSmall {
	return ErrTooSmall{Stack: stack.Trace().TrimRuntime()}
}

// Error implements the error interface.
func (e ErrTooSmall) Error() string {
	return "too small"
}

// ErrorStack returns a string representing the stack at the point where the
// error occurred.
func (e ErrTooSmall) ErrorStack() string {
	s := bytes.NewBufferString("too small: [")

	for i, call := range e.Stack {
		if i != 0 {
			s.WriteString(", ")
		}

		// go vet doesn't like %k even though it's part of stack's API, so we
		// move the format string so it doesn't complain.
		callFormat := "%k.%n %v"

		s.WriteString(fmt.Sprintf(callFormat, call, call, call))
	}

	s.WriteRune(']')

	return s.String()
}

// Equals checks that err2 also is an ErrTooSmall.
func (e ErrTooSmall) Equals(err2 error) bool {
	switch err2.(type) {
	case ErrTooSmall:
		return true
	default:
		return false
	}
}

// ErrInvalidElementType indicates that the type tag of an element is outside
// the set of types the codec supports.
var ErrInvalidElementType = errors.New("invalid BSON element type")

// ErrInvalidLength indicates that a length field inside a BSON buffer is
// negative or impossibly small.
var ErrInvalidLength = errors.New("document length is invalid")

// ErrIncompleteDocument indicates that a document's declared length runs
// past the available bytes.
var ErrIncompleteDocument = errors.New("incomplete BSON document")

// ErrMissingNull indicates that a document is not terminated by 0x00.
var ErrMissingNull = errors.New("document end is missing null byte")

// ErrInvalidKey indicates that an element key is missing its null terminator.
var ErrInvalidKey = errors.New("invalid document key")

// ErrEmptyKey indicates that no key was provided to a Lookup call.
var ErrEmptyKey = errors.New("empty key provided")

// ErrElementNotFound indicates that an Element matching a Lookup key could
// not be found.
var ErrElementNotFound = errors.New("element not found")

// ErrOutOfBounds indicates that the requested index is outside the document.
var ErrOutOfBounds = errors.New("out of bounds")

// ErrInvalidBooleanType indicates that a BSON boolean value had a byte other
// than 0x00 or 0x01.
var ErrInvalidBooleanType = errors.New("invalid value for BSON Boolean Type")

// ErrUnexpectedArrayItemName indicates that an array element's key is not
// the decimal string of its zero-based position.
var ErrUnexpectedArrayItemName = errors.New("array item name is not the item index")

// ErrInvalidRegexOptions indicates that a regular expression carries an
// option character outside the set "imsux".
var ErrInvalidRegexOptions = errors.New("invalid BSON regex options")

// ErrInvalidRegexPattern indicates that a regular expression pattern
// contains an interior null byte.
var ErrInvalidRegexPattern = errors.New("BSON regex pattern contains null byte")

// ErrBinaryRequiresCanonical indicates that a binary element was serialized
// in relaxed extended JSON mode, which cannot represent it.
var ErrBinaryRequiresCanonical = errors.New("binary values require canonical extended JSON")

// ErrNilReader indicates that an operation was attempted on a nil io.Reader.
var ErrNilReader = errors.New("nil reader")

// ErrNilDocument indicates that an operation was attempted on a nil
// *Document.
var ErrNilDocument = errors.New("document is nil")

// ElementTypeError specifies that a method to obtain a typed value was
// called on a Value holding an incompatible BSON type.
type ElementTypeError struct {
	Method string
	Type   Type
}

// Error implements the error interface.
func (ete ElementTypeError) Error() string {
	return "Call of " + ete.Method + " on " + ete.Type.String() + " type"
}
