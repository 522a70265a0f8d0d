// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit renders the normalized model into source code units and into
// the vector-table linker script. Every unit is a self-contained Item; the
// render package orders and concatenates them.
package emit

import (
	"strings"
	"unicode"
)

// Item is one generated source unit: a type with its method set, a constant
// block, an instance accessor. Items are immutable once produced and carry
// no target-specific content.
type Item struct {
	Name string // main declared identifier, for diagnostics
	Src  string
}

// Config is the emitter configuration selected by the target dispatcher.
type Config struct {
	PkgName    string // package clause of the generated stream
	ImportRoot string // optional canonical import path prefix
	// Next enables the newer generic register cells instead of one named
	// cell type per register. Generated semantics do not change.
	Next bool
}

// ident mangles an SVD name into a Go identifier.
func ident(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	id := sb.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "_" + id
	}
	return id
}
