// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/embeddedgo/svdgen/internal/model"
)

// dedup folds instances with byte-for-byte identical resolved layouts into
// one shared peripheral type. This only shrinks the generated output; every
// instance keeps its own name and base address. Peripheral types appear in
// the order of their first instance.
func dedup(dev *model.Device, insts []*instance) {
	byLayout := make(map[string]*model.Periph)
	for _, in := range insts {
		sortLayout(in.blocks)
		sig := signature(in.blocks)
		p := byLayout[sig]
		if p == nil {
			p = &model.Periph{Blocks: in.blocks}
			byLayout[sig] = p
			dev.Periphs = append(dev.Periphs, p)
		}
		inst := &model.Inst{Name: in.sp.Name, Base: in.base}
		if in.sp.Description != nil {
			inst.Descr = fixSpaces(*in.sp.Description)
		}
		p.Insts = append(p.Insts, inst)
	}
	nameTypes(dev.Periphs)
}

// sortLayout orders blocks and registers by offset and fields by bit
// position, so that the emitted layout and the structural signature do not
// depend on declaration order.
func sortLayout(blocks []*model.Block) {
	sort.SliceStable(blocks, func(i, k int) bool {
		return blocks[i].Offset < blocks[k].Offset
	})
	for _, b := range blocks {
		sort.SliceStable(b.Regs, func(i, k int) bool {
			return b.Regs[i].Offset < b.Regs[k].Offset
		})
		for _, r := range b.Regs {
			sort.SliceStable(r.Fields, func(i, k int) bool {
				return r.Fields[i].LSB < r.Fields[k].LSB
			})
			for _, f := range r.Fields {
				sort.SliceStable(f.Values, func(i, k int) bool {
					if f.Values[i].Value != f.Values[k].Value {
						return f.Values[i].Value < f.Values[k].Value
					}
					return f.Values[i].Usage < f.Values[k].Usage
				})
			}
		}
	}
}

// signature dumps the layout into a canonical string. Two peripherals with
// equal signatures generate identical accessor types.
func signature(blocks []*model.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		fmt.Fprintf(&sb, "b %s %x %x\n", b.Name, b.Offset, b.Size)
		for _, r := range b.Regs {
			fmt.Fprintf(
				&sb, " r %s %x %d %d %x\n",
				r.Name, r.Offset, r.Bits, r.Access, r.Reset,
			)
			for _, f := range r.Fields {
				fmt.Fprintf(
					&sb, "  f %s %d %d %d\n",
					f.Name, f.LSB, f.Width, f.Access,
				)
				for _, v := range f.Values {
					fmt.Fprintf(&sb, "   v %s %x %d\n", v.Name, v.Value, v.Usage)
				}
			}
		}
	}
	return sb.String()
}

// nameTypes picks the generated type name of each peripheral: the name of
// the sole instance, or the common instance-name prefix stripped of a
// trailing index (GPIOA, GPIOB -> GPIO). Falls back to the first instance
// name whenever stripping leaves nothing or the result is taken.
func nameTypes(periphs []*model.Periph) {
	taken := make(map[string]bool)
	for _, p := range periphs {
		name := p.Insts[0].Name
		if len(p.Insts) > 1 {
			common := p.Insts[0].Name
			for _, in := range p.Insts[1:] {
				common = commonPrefix(common, in.Name)
			}
			common = strings.TrimRight(common, "0123456789")
			if len(common) > 1 {
				name = common
			}
		}
		if taken[name] {
			name = p.Insts[0].Name
		}
		taken[name] = true
		p.Name = name
	}
}

func commonPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// resolveAddrs computes the absolute address of every register as instance
// base + block offset + register offset. For a shared type the first
// instance anchors the documented addresses.
func resolveAddrs(dev *model.Device) {
	for _, p := range dev.Periphs {
		base := p.Insts[0].Base
		for _, b := range p.Blocks {
			for _, r := range b.Regs {
				r.Addr = base + b.Offset + r.Offset
			}
		}
	}
}
