// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package normalize

import (
	"fmt"

	"github.com/embeddedgo/svdgen/internal/model"
)

// validate checks every §3 invariant over the materialized instances. The
// first violation wins: instances are visited in declaration order, their
// registers and fields in declaration order too, so the reported error is
// stable across runs.
func validate(dev *model.Device, insts []*instance) error {
	for i, in := range insts {
		if err := checkSpace(dev, in); err != nil {
			return err
		}
		for k := 0; k < i; k++ {
			if err := checkOverlap(in, insts[k]); err != nil {
				return err
			}
		}
		for _, b := range in.blocks {
			for _, r := range b.Regs {
				if err := checkReg(in.sp.Name, b, r); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkSpace(dev *model.Device, in *instance) error {
	span := in.span()
	if dev.AddrBits >= 64 {
		if in.base > ^uint64(0)-span {
			return &model.ModelError{
				Periph: in.sp.Name,
				Detail: fmt.Sprintf("address range 0x%X+0x%X wraps the address space", in.base, span),
			}
		}
		return nil
	}
	limit := uint64(1) << dev.AddrBits
	if in.base >= limit || span > limit-in.base {
		return &model.ModelError{
			Periph: in.sp.Name,
			Detail: fmt.Sprintf(
				"address range 0x%X+0x%X exceeds the %d-bit address space",
				in.base, span, dev.AddrBits,
			),
		}
	}
	return nil
}

// checkOverlap rejects two peripherals occupying intersecting address
// ranges unless one of them derives from the other (an explicit alias).
func checkOverlap(a, b *instance) error {
	aspan, bspan := a.span(), b.span()
	if aspan == 0 || bspan == 0 {
		return nil
	}
	if a.base+aspan <= b.base || b.base+bspan <= a.base {
		return nil
	}
	if derivRelated(a, b) {
		return nil
	}
	return &model.ModelError{
		Periph: a.sp.Name,
		Detail: fmt.Sprintf(
			"address range 0x%X-0x%X overlaps peripheral %s (0x%X-0x%X)",
			a.base, a.base+aspan-1, b.sp.Name, b.base, b.base+bspan-1,
		),
	}
}

// derivRelated reports whether one of the two peripherals is a declared
// alias of the other.
func derivRelated(a, b *instance) bool {
	return a.deriv == b.sp.Name || b.deriv == a.sp.Name
}

func checkReg(pname string, b *model.Block, r *model.Reg) error {
	switch r.Bits {
	case 8, 16, 32, 64:
	default:
		return &model.ModelError{
			Periph: pname, Reg: regName(b, r),
			Detail: fmt.Sprintf("unsupported register width %d", r.Bits),
		}
	}
	if r.Offset&uint64(r.Bits/8-1) != 0 {
		return &model.ModelError{
			Periph: pname, Reg: regName(b, r),
			Detail: fmt.Sprintf(
				"offset 0x%X misaligned for a %d-bit register", r.Offset, r.Bits,
			),
		}
	}
	if r.Offset+uint64(r.Bits/8) > b.Size {
		return &model.ModelError{
			Periph: pname, Reg: regName(b, r),
			Detail: fmt.Sprintf(
				"offset 0x%X + %d bits extends past the %d-byte block",
				r.Offset, r.Bits, b.Size,
			),
		}
	}
	for i, f := range r.Fields {
		if err := checkField(pname, b, r, r.Fields[:i], f); err != nil {
			return err
		}
	}
	return nil
}

func checkField(pname string, b *model.Block, r *model.Reg, prev []*model.Field, f *model.Field) error {
	if f.Width == 0 || f.LSB+f.Width > r.Bits {
		return &model.ModelError{
			Periph: pname, Reg: regName(b, r), Field: f.Name,
			Detail: fmt.Sprintf(
				"bits %d+%d do not fit the %d-bit register",
				f.LSB, f.Width, r.Bits,
			),
		}
	}
	for _, pf := range prev {
		if pf.Mask()&f.Mask() != 0 {
			return &model.ModelError{
				Periph: pname, Reg: regName(b, r), Field: f.Name,
				Detail: fmt.Sprintf(
					"bits [%d:%d] overlap field %s [%d:%d]",
					f.LSB+f.Width-1, f.LSB, pf.Name, pf.LSB+pf.Width-1, pf.LSB,
				),
			}
		}
	}
	// A field must not be more permissive than its register.
	switch r.Access {
	case model.ReadOnly:
		if f.Access.CanWrite() {
			return &model.ModelError{
				Periph: pname, Reg: regName(b, r), Field: f.Name,
				Detail: f.Access.String() + " field in a read-only register",
			}
		}
	case model.WriteOnly:
		if f.Access.CanRead() {
			return &model.ModelError{
				Periph: pname, Reg: regName(b, r), Field: f.Name,
				Detail: f.Access.String() + " field in a write-only register",
			}
		}
	}
	return checkEnums(pname, b, r, f)
}

// checkEnums rejects two enumerated values sharing a numeric value within
// the same direction scope. A read-write entry collides with both
// directions.
func checkEnums(pname string, b *model.Block, r *model.Reg, f *model.Field) error {
	for i, v := range f.Values {
		for _, pv := range f.Values[:i] {
			if pv.Value != v.Value {
				continue
			}
			if pv.Usage != v.Usage &&
				pv.Usage != model.ForReadWrite && v.Usage != model.ForReadWrite {
				continue
			}
			return &model.ModelError{
				Periph: pname, Reg: regName(b, r), Field: f.Name,
				Detail: fmt.Sprintf(
					"enumerated values %s and %s share value %d (%s scope)",
					pv.Name, v.Name, v.Value, v.Usage,
				),
			}
		}
	}
	return nil
}

func regName(b *model.Block, r *model.Reg) string {
	if b.Name == "" {
		return r.Name
	}
	return b.Name + "_" + r.Name
}
