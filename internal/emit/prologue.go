// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embeddedgo/svdgen/internal/model"
)

// Prologue renders the head of the generated stream: the DO NOT EDIT
// marker, the package clause, the imports and, with cfg.Next, the generic
// register cells shared by all peripherals.
func Prologue(dev *model.Device, cfg *Config) Item {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by svdgen from the %s hardware description. DO NOT EDIT.\n\n", dev.Name)
	if dev.Descr != "" {
		fmt.Fprintf(&sb, "// Package %s provides access to the registers of the %s device: %s\n",
			cfg.PkgName, dev.Name, dev.Descr)
	} else {
		fmt.Fprintf(&sb, "// Package %s provides access to the registers of the %s device.\n",
			cfg.PkgName, dev.Name)
	}
	if cfg.ImportRoot != "" {
		fmt.Fprintln(&sb, "//")
		fmt.Fprintln(&sb, "// Import:")
		fmt.Fprintf(&sb, "//  %s/%s\n", cfg.ImportRoot, cfg.PkgName)
	}
	fmt.Fprintf(&sb, "package %s\n", cfg.PkgName)
	if len(dev.Periphs) == 0 {
		return Item{Name: cfg.PkgName, Src: sb.String()}
	}
	hasRegs := false
	for _, p := range dev.Periphs {
		p.Regs(func(*model.Block, *model.Reg) bool { hasRegs = true; return false })
	}
	fmt.Fprintln(&sb, "\nimport (")
	if hasRegs {
		fmt.Fprintln(&sb, "\t\"runtime/volatile\"")
	}
	fmt.Fprintln(&sb, "\t\"unsafe\"")
	fmt.Fprintln(&sb, ")")
	if cfg.Next {
		genericCells(&sb, dev)
	}
	return Item{Name: cfg.PkgName, Src: sb.String()}
}

// genericCells renders the R/RO/WO cells for every width and access mode
// the device actually uses.
func genericCells(sb *strings.Builder, dev *model.Device) {
	type cell struct {
		kind string
		bits uint
	}
	used := make(map[cell]bool)
	for _, p := range dev.Periphs {
		p.Regs(func(_ *model.Block, r *model.Reg) bool {
			kind := "R"
			switch r.Access {
			case model.ReadOnly:
				kind = "RO"
			case model.WriteOnly:
				kind = "WO"
			}
			used[cell{kind, r.Bits}] = true
			return true
		})
	}
	cells := make([]cell, 0, len(used))
	for c := range used {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, k int) bool {
		if cells[i].bits != cells[k].bits {
			return cells[i].bits < cells[k].bits
		}
		return cells[i].kind < cells[k].kind
	})
	for _, c := range cells {
		ut := fmt.Sprintf("uint%d", c.bits)
		name := fmt.Sprintf("%s%d", c.kind, c.bits)
		switch c.kind {
		case "R":
			fmt.Fprintf(sb, "\n// %s is a %d-bit read-write register cell.\n", name, c.bits)
		case "RO":
			fmt.Fprintf(sb, "\n// %s is a %d-bit read-only register cell.\n", name, c.bits)
		case "WO":
			fmt.Fprintf(sb, "\n// %s is a %d-bit write-only register cell.\n", name, c.bits)
		}
		fmt.Fprintf(sb, "type %s[T ~%s] struct{ r volatile.Register%d }\n", name, ut, c.bits)
		if c.kind != "WO" {
			fmt.Fprintf(sb, "\nfunc (r *%s[T]) Load() T { return T(r.r.Get()) }\n", name)
		}
		if c.kind != "RO" {
			fmt.Fprintf(sb, "\nfunc (r *%s[T]) Store(v T) { r.r.Set(%s(v)) }\n", name, ut)
		}
		if c.kind == "R" {
			fmt.Fprintln(sb, "\n// Modify is a read-modify-write sequence, not an atomic operation:")
			fmt.Fprintln(sb, "// the caller must ensure exclusion from concurrent contexts.")
			fmt.Fprintf(sb, "func (r *%s[T]) Modify(clear, set T) { r.Store(r.Load()&^clear | set) }\n", name)
		}
	}
}
