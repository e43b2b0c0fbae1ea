// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []*jsonToken {
	t.Helper()
	js := &jsonScanner{r: strings.NewReader(src)}
	var tokens []*jsonToken
	for {
		tok, err := js.nextToken()
		require.NoError(t, err)
		tokens = append(tokens, tok)
		if tok.t == eofTokenType {
			return tokens
		}
	}
}

func TestJSONScannerTokens(t *testing.T) {
	tokens := scanAll(t, `{"a": 1, "b": [-2.5, true, null]}`)

	types := make([]jsonTokenType, 0, len(tokens))
	for _, tok := range tokens {
		types = append(types, tok.t)
	}
	require.Equal(t, []jsonTokenType{
		beginObjectTokenType,
		stringTokenType, colonTokenType, int32TokenType, commaTokenType,
		stringTokenType, colonTokenType,
		beginArrayTokenType,
		doubleTokenType, commaTokenType,
		boolTokenType, commaTokenType,
		nullTokenType,
		endArrayTokenType,
		endObjectTokenType,
		eofTokenType,
	}, types)

	require.Equal(t, "a", tokens[1].v)
	require.Equal(t, int32(1), tokens[3].v)
	require.Equal(t, -2.5, tokens[8].v)
	require.Equal(t, true, tokens[10].v)
}

func TestJSONScannerNumberClassification(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		t    jsonTokenType
		v    interface{}
	}{
		{"zero", "0", int32TokenType, int32(0)},
		{"int32 max", "2147483647", int32TokenType, int32(2147483647)},
		{"int32 min", "-2147483648", int32TokenType, int32(-2147483648)},
		{"int64", "2147483648", int64TokenType, int64(2147483648)},
		{"int64 min", "-9223372036854775808", int64TokenType, int64(-9223372036854775808)},
		{"fraction", "1.5", doubleTokenType, 1.5},
		{"exponent", "2e3", doubleTokenType, 2000.0},
		{"signed exponent", "1E-2", doubleTokenType, 0.01},
		{"fraction and exponent", "1.5e2", doubleTokenType, 150.0},
		{"wider than int64", "18446744073709551616", doubleTokenType, 18446744073709551616.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			js := &jsonScanner{r: strings.NewReader(tc.src)}
			tok, err := js.nextToken()
			require.NoError(t, err)
			require.Equal(t, tc.t, tok.t)
			require.Equal(t, tc.v, tok.v)
		})
	}

	t.Run("invalid numbers", func(t *testing.T) {
		for _, src := range []string{"-", "01", "1.", "1e", "1e+", "1.2.3", "1x"} {
			js := &jsonScanner{r: strings.NewReader(src)}
			_, err := js.nextToken()
			require.Error(t, err, "input %q", src)
		}
	})

	t.Run("number followed by terminator keeps the terminator", func(t *testing.T) {
		js := &jsonScanner{r: strings.NewReader("42}")}
		tok, err := js.nextToken()
		require.NoError(t, err)
		require.Equal(t, int32TokenType, tok.t)

		tok, err = js.nextToken()
		require.NoError(t, err)
		require.Equal(t, endObjectTokenType, tok.t)
	})
}

func TestJSONScannerStrings(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"plain", `"abc"`, "abc"},
		{"empty", `""`, ""},
		{"simple escapes", `"a\"b\\c\/d\nd\te\rf\bg\fh"`, "a\"b\\c/d\nd\te\rf\bg\fh"},
		{"unicode escape", `"A\u00e9"`, "Aé"},
		{"surrogate pair", `"\ud83d\ude00"`, "\U0001F600"},
		{"lone high surrogate", `"\ud83d!"`, "�!"},
		{"multibyte passthrough", `"héllo"`, "héllo"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			js := &jsonScanner{r: strings.NewReader(tc.src)}
			tok, err := js.nextToken()
			require.NoError(t, err)
			require.Equal(t, stringTokenType, tok.t)
			require.Equal(t, tc.want, tok.v)
		})
	}

	t.Run("invalid escapes", func(t *testing.T) {
		for _, src := range []string{`"\x"`, `"\u12"`, `"\uzzzz"`, `"abc`} {
			js := &jsonScanner{r: strings.NewReader(src)}
			_, err := js.nextToken()
			require.Error(t, err, "input %q", src)
		}
	})
}

func TestJSONScannerLiterals(t *testing.T) {
	for _, tc := range []struct {
		src string
		v   interface{}
	}{
		{"true", true},
		{"false", false},
		{"null", nil},
	} {
		js := &jsonScanner{r: strings.NewReader(tc.src)}
		tok, err := js.nextToken()
		require.NoError(t, err)
		require.Equal(t, tc.v, tok.v)
	}

	for _, src := range []string{"truth", "nul", "fals", "falsey", "t"} {
		js := &jsonScanner{r: strings.NewReader(src)}
		_, err := js.nextToken()
		require.Error(t, err, "input %q", src)
	}
}

// The scanner refills its buffer in 512 byte chunks; a token spanning the
// boundary must reassemble cleanly.
func TestJSONScannerBufferBoundary(t *testing.T) {
	pad := strings.Repeat(" ", 508)
	js := &jsonScanner{r: strings.NewReader(pad + `"abcdefgh"`)}
	tok, err := js.nextToken()
	require.NoError(t, err)
	require.Equal(t, stringTokenType, tok.t)
	require.Equal(t, "abcdefgh", tok.v)
}
