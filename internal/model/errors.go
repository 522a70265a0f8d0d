// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import "fmt"

// ModelError reports the first structural violation found in the hardware
// description. The entity fields narrow the location: Periph is always set,
// Reg and Field only as applicable.
type ModelError struct {
	Periph string
	Reg    string
	Field  string
	Detail string
}

func (e *ModelError) Error() string {
	s := "peripheral " + e.Periph
	if e.Reg != "" {
		s += ": register " + e.Reg
	}
	if e.Field != "" {
		s += ": field " + e.Field
	}
	return s + ": " + e.Detail
}

// TableError reports an interrupt vector index collision.
type TableError struct {
	Index int
	Names []string // all interrupts declared at Index
}

func (e *TableError) Error() string {
	s := fmt.Sprintf("vector %d declared more than once:", e.Index)
	for _, name := range e.Names {
		s += " " + name
	}
	return s
}

// UnsupportedTargetError reports an unknown target architecture selector.
// It is raised before any model processing begins.
type UnsupportedTargetError struct {
	Name string
}

func (e *UnsupportedTargetError) Error() string {
	return "unknown target " + e.Name
}
