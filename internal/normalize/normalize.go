// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package normalize turns the raw svd model into the validated model the
// emitters work on: derivation links are materialized, structurally
// identical peripherals are folded into shared types, absolute addresses
// are computed and every invariant is checked. The emitters never see an
// unvalidated device.
package normalize

import (
	"github.com/embeddedgo/svdgen/internal/diag"
	"github.com/embeddedgo/svdgen/internal/model"
	"github.com/embeddedgo/svdgen/svd"
)

// Device normalizes sd. It returns a *model.ModelError describing the first
// invariant violation, found in peripheral declaration order, then register
// order, then field order.
func Device(sd *svd.Device, sink diag.Sink) (*model.Device, error) {
	if sink == nil {
		sink = diag.Discard()
	}
	rv := &resolver{
		sink:  sink,
		spmap: make(map[string]*svd.Peripheral, len(sd.Peripherals)),
		memo:  make(map[string][]*model.Block),
		busy:  make(map[string]bool),
	}
	for _, sp := range sd.Peripherals {
		rv.spmap[sp.Name] = sp
	}
	rv.defs = props{bits: uint(sd.Width), access: model.ReadWrite}
	if rv.defs.bits == 0 {
		rv.defs.bits = 32
	}
	rv.defs = rv.defs.apply(sd.RegisterPropertiesGroup, sd.Name, sink)

	dev := &model.Device{
		Name:     sd.Name,
		Descr:    fixSpaces(sd.Description),
		Width:    rv.defs.bits,
		AddrBits: uint(sd.Width),
	}
	if dev.AddrBits == 0 {
		dev.AddrBits = 32
	}

	// Materialize every peripheral in declaration order.
	insts := make([]*instance, 0, len(sd.Peripherals))
	for _, sp := range sd.Peripherals {
		blocks, err := rv.resolve(sp)
		if err != nil {
			return nil, err
		}
		in := &instance{
			sp:     sp,
			base:   uint64(sp.BaseAddress),
			blocks: blocks,
		}
		if sp.DerivedFrom != nil {
			in.deriv = *sp.DerivedFrom
		}
		insts = append(insts, in)
	}

	if err := validate(dev, insts); err != nil {
		return nil, err
	}

	dedup(dev, insts)
	resolveAddrs(dev)

	irqs, err := collectIRQs(sd)
	if err != nil {
		return nil, err
	}
	dev.IRQs = irqs
	return dev, nil
}

// instance is one svd peripheral with its register layout materialized but
// not yet folded into a shared type.
type instance struct {
	sp     *svd.Peripheral
	base   uint64
	deriv  string // derived-from name, empty if none
	blocks []*model.Block
}

func (in *instance) span() uint64 {
	var span uint64
	for _, b := range in.blocks {
		if end := b.Offset + b.Size; end > span {
			span = end
		}
	}
	return span
}

// props is the register-properties cascade: device -> peripheral ->
// cluster -> register.
type props struct {
	bits   uint
	access model.Access
	reset  uint64
}

func (p props) apply(g *svd.RegisterPropertiesGroup, entity string, sink diag.Sink) props {
	if g == nil {
		return p
	}
	if g.Size != nil {
		p.bits = uint(*g.Size)
	}
	if g.Access != nil {
		p.access = parseAccess(*g.Access, entity, sink)
	}
	if g.ResetValue != nil {
		p.reset = uint64(*g.ResetValue)
	}
	return p
}

func parseAccess(s, entity string, sink diag.Sink) model.Access {
	switch s {
	case "read-only":
		return model.ReadOnly
	case "write-only", "writeOnce":
		return model.WriteOnly
	case "read-write", "read-writeOnce":
		return model.ReadWrite
	}
	diag.Warnf(sink, entity, "unknown access mode %q, assuming read-write", s)
	return model.ReadWrite
}

func parseUsage(s string) model.Usage {
	switch s {
	case "read":
		return model.ForRead
	case "write":
		return model.ForWrite
	}
	return model.ForReadWrite
}

type resolver struct {
	sink  diag.Sink
	spmap map[string]*svd.Peripheral
	memo  map[string][]*model.Block
	busy  map[string]bool
	defs  props
}

// resolve returns the fully materialized register layout of sp. A derived
// peripheral inherits every block of its source unless it redefines a block
// of the same name, in which case the redefinition wins entirely.
func (rv *resolver) resolve(sp *svd.Peripheral) ([]*model.Block, error) {
	if blocks, ok := rv.memo[sp.Name]; ok {
		return cloneBlocks(blocks), nil
	}
	if rv.busy[sp.Name] {
		return nil, &model.ModelError{
			Periph: sp.Name,
			Detail: "derivation cycle through " + sp.Name,
		}
	}
	rv.busy[sp.Name] = true
	defer delete(rv.busy, sp.Name)

	own, err := rv.ownBlocks(sp)
	if err != nil {
		return nil, err
	}
	blocks := own
	if sp.DerivedFrom != nil {
		src := rv.spmap[*sp.DerivedFrom]
		if src == nil {
			return nil, &model.ModelError{
				Periph: sp.Name,
				Detail: "derived from undefined peripheral " + *sp.DerivedFrom,
			}
		}
		inherited, err := rv.resolve(src)
		if err != nil {
			return nil, err
		}
		blocks = merge(inherited, own)
	}
	rv.memo[sp.Name] = blocks
	return cloneBlocks(blocks), nil
}

// merge overlays the redefined blocks onto the inherited layout. Inherited
// blocks keep their position; blocks new to the derived peripheral are
// appended in declaration order.
func merge(inherited, own []*model.Block) []*model.Block {
	out := make([]*model.Block, len(inherited), len(inherited)+len(own))
	copy(out, inherited)
	for _, ob := range own {
		replaced := false
		for i, ib := range out {
			if ib.Name == ob.Name {
				out[i] = ob
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, ob)
		}
	}
	return out
}

// ownBlocks builds the blocks sp declares itself: one anonymous block for
// plain registers plus one block per cluster.
func (rv *resolver) ownBlocks(sp *svd.Peripheral) ([]*model.Block, error) {
	pp := rv.defs.apply(sp.RegisterPropertiesGroup, sp.Name, rv.sink)
	var blocks []*model.Block
	if len(sp.Registers) > 0 {
		b := &model.Block{}
		regs, err := rv.regs(sp.Name, sp.Registers, pp)
		if err != nil {
			return nil, err
		}
		b.Regs = regs
		b.Size = regsExtent(regs)
		for _, ab := range sp.AddressBlock {
			if ab.Usage == "registers" {
				b.Size = uint64(ab.Offset) + uint64(ab.Size)
				break
			}
		}
		blocks = append(blocks, b)
	}
	for _, sc := range sp.Clusters {
		if sc.DerivedFrom != nil {
			diag.Warnf(rv.sink, sp.Name, "derived cluster %s not supported", sc.Name)
			continue
		}
		if len(sc.Clusters) > 0 {
			diag.Warnf(rv.sink, sp.Name, "cluster in cluster not supported: %s", sc.Name)
		}
		cp := pp.apply(sc.RegisterPropertiesGroup, sp.Name+"."+sc.Name, rv.sink)
		regs, err := rv.regs(sp.Name, sc.Registers, cp)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, &model.Block{
			Name:   sc.Name,
			Offset: uint64(sc.AddressOffset),
			Size:   regsExtent(regs),
			Regs:   regs,
		})
	}
	return blocks, nil
}

func regsExtent(regs []*model.Reg) uint64 {
	var ext uint64
	for _, r := range regs {
		if end := r.Offset + uint64(r.Bits/8); end > ext {
			ext = end
		}
	}
	return ext
}

func (rv *resolver) regs(pname string, srs []*svd.Register, pp props) ([]*model.Reg, error) {
	regs := make([]*model.Reg, 0, len(srs))
	for _, sr := range srs {
		if sr.DerivedFrom != nil {
			diag.Warnf(rv.sink, pname, "derived register %s not supported", sr.Name)
			continue
		}
		entity := pname + "." + sr.Name
		rp := pp.apply(sr.RegisterPropertiesGroup, entity, rv.sink)
		r := &model.Reg{
			Name:   sr.Name,
			Offset: uint64(sr.AddressOffset),
			Bits:   rp.bits,
			Access: rp.access,
			Reset:  rp.reset,
		}
		if sr.Description != nil {
			r.Descr = fixSpaces(*sr.Description)
		}
		fields, err := rv.fields(pname, r, sr.Fields)
		if err != nil {
			return nil, err
		}
		r.Fields = fields
		regs = append(regs, r)
	}
	return regs, nil
}

func (rv *resolver) fields(pname string, r *model.Reg, sfs []*svd.Field) ([]*model.Field, error) {
	fields := make([]*model.Field, 0, len(sfs))
	for _, sf := range sfs {
		entity := pname + "." + r.Name + "." + sf.Name
		if sf.DerivedFrom != nil {
			diag.Warnf(rv.sink, entity, "derived field not supported")
			continue
		}
		lsb, width, ok := sf.Bits()
		if !ok {
			diag.Warnf(rv.sink, entity, "bit range not specified")
			continue
		}
		f := &model.Field{
			Name:   sf.Name,
			LSB:    lsb,
			Width:  width,
			Access: r.Access,
		}
		if sf.Access != nil {
			f.Access = parseAccess(*sf.Access, entity, rv.sink)
		}
		if sf.Description != nil {
			f.Descr = fixSpaces(*sf.Description)
		}
		for _, sevs := range sf.EnumeratedValues {
			usage := model.ForReadWrite
			if sevs.Usage != nil {
				usage = parseUsage(*sevs.Usage)
			}
			for _, sev := range sevs.EnumeratedValue {
				if sev.Name == nil || sev.Value == nil {
					continue
				}
				v, err := sev.Val()
				if err != nil {
					diag.Warnf(rv.sink, entity, "bad enumerated value %s: %v", *sev.Name, err)
					continue
				}
				ev := &model.EnumValue{Name: *sev.Name, Value: v, Usage: usage}
				if sev.Description != nil {
					ev.Descr = fixSpaces(*sev.Description)
				}
				f.Values = append(f.Values, ev)
			}
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func cloneBlocks(blocks []*model.Block) []*model.Block {
	out := make([]*model.Block, len(blocks))
	for i, b := range blocks {
		nb := *b
		nb.Regs = make([]*model.Reg, len(b.Regs))
		for k, r := range b.Regs {
			nr := *r
			nr.Fields = make([]*model.Field, len(r.Fields))
			for n, f := range r.Fields {
				nf := *f
				nf.Values = make([]*model.EnumValue, len(f.Values))
				for m, v := range f.Values {
					nv := *v
					nf.Values[m] = &nv
				}
				nr.Fields[n] = &nf
			}
			nb.Regs[k] = &nr
		}
		out[i] = &nb
	}
	return out
}

// collectIRQs gathers the interrupts of all peripherals in declaration
// order and rejects duplicate vector indices. Interrupts are not inherited
// over derive-from: an alias peripheral raises no interrupts of its own
// unless it declares them.
func collectIRQs(sd *svd.Device) ([]*model.IRQ, error) {
	var irqs []*model.IRQ
	seen := make(map[int]*model.IRQ)
	for _, sp := range sd.Peripherals {
		for _, si := range sp.Interrupts {
			irq := &model.IRQ{Name: si.Name, Value: int(si.Value)}
			if si.Description != nil {
				irq.Descr = fixSpaces(*si.Description)
			}
			if prev := seen[irq.Value]; prev != nil {
				return nil, &model.ModelError{
					Periph: sp.Name,
					Detail: "interrupt " + irq.Name + " reuses vector " +
						itoa(irq.Value) + " of " + prev.Name,
				}
			}
			seen[irq.Value] = irq
			irqs = append(irqs, irq)
		}
	}
	return irqs, nil
}
