// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"strconv"
)

// Element represents a BSON element: the key, type, and value byte range of
// one key-value pair inside a document. An Element is a view into the
// buffer it was produced from; it never owns those bytes, and it must not
// be used after the owning Document is gone.
type Element struct {
	key []byte // key bytes without the null terminator
	v   Value
}

// Key returns the key for this element.
func (e Element) Key() string {
	return string(e.key)
}

// Type returns the element's BSON type tag.
func (e Element) Type() Type {
	return e.v.Type
}

// Value returns the value associated with the BSON element.
func (e Element) Value() Value {
	return e.v
}

// Dupe returns an Element whose key no longer aliases the parent buffer.
// The value bytes are still borrowed, so the result remains bounded by the
// parent document's lifetime.
func (e Element) Dupe() Element {
	key := make([]byte, len(e.key))
	copy(key, e.key)
	return Element{key: key, v: e.v}
}

// String implements the fmt.Stringer interface.
func (e Element) String() string {
	val := e.v.String()
	if e.v.Type == TypeString {
		s, err := e.v.StringValue()
		if err == nil {
			val = strconv.Quote(s)
		}
	}
	return fmt.Sprintf(`bson.Element{[%s]"%s": %s}`, e.v.Type, e.Key(), val)
}
