// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a byte-level codec for the BSON wire format and its two
// extended JSON renderings.
//
// A Document owns a raw, self-describing BSON buffer. Elements are read
// lazily through an Iterator or a keyed Lookup; both yield Element views
// into the buffer without copying value payloads. Typed values are
// extracted through Value accessors which enforce BSON's numeric and
// temporal widening rules. Documents are produced with a DocumentBuilder,
// which writes length placeholders and back-patches them as documents and
// arrays are finished.
//
// MarshalExtJSON renders a Document as extended JSON in either the relaxed
// or the canonical dialect. UnmarshalExtJSON and ParseExtJSON perform the
// reverse translation, reconstructing the $-prefixed wrapper objects
// ($oid, $date, $numberInt, and the rest) into their wire types.
//
// The subpackages objectid and decimal hold the ObjectID and Decimal128
// value types.
package bson
