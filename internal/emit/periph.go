// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/embeddedgo/svdgen/internal/diag"
	"github.com/embeddedgo/svdgen/internal/model"
)

// Periph renders one normalized peripheral into an ordered sequence of
// items: the peripheral struct with one accessor function per instance,
// then one item per register with its value type, register cell, reset and
// bit constants and field methods.
//
// The model is already validated, so any error returned here is an internal
// consistency failure and aborts the whole render.
func Periph(p *model.Periph, cfg *Config, sink diag.Sink) ([]Item, error) {
	if sink == nil {
		sink = diag.Discard()
	}
	e := &periphEmitter{p: p, cfg: cfg, sink: sink, pid: ident(p.Name)}
	if err := e.layout(); err != nil {
		return nil, err
	}
	items := make([]Item, 0, 1+len(e.regs))
	items = append(items, e.structItem())
	for _, er := range e.regs {
		it, err := e.regItem(er)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

type periphEmitter struct {
	p    *model.Periph
	cfg  *Config
	sink diag.Sink
	pid  string
	regs []*emitReg
}

// emitReg is one register placed in the peripheral struct.
type emitReg struct {
	reg    *model.Reg
	id     string // struct field and name component, block prefix included
	offset uint64 // from peripheral base
}

func (e *periphEmitter) fail(format string, args ...any) error {
	return fmt.Errorf(
		"internal: peripheral %s: %s", e.p.Name, fmt.Sprintf(format, args...),
	)
}

// layout flattens the blocks into a single offset-ordered register list and
// re-checks what the generated struct cannot express: duplicate
// identifiers and overlapping cells.
func (e *periphEmitter) layout() error {
	ids := make(map[string]string)
	for _, b := range e.p.Blocks {
		for _, r := range b.Regs {
			id := ident(r.Name)
			if b.Name != "" {
				id = ident(b.Name) + "_" + id
			}
			if prev, ok := ids[id]; ok {
				return e.fail("registers %s and %s map to one identifier %s", prev, r.Name, id)
			}
			ids[id] = r.Name
			e.regs = append(e.regs, &emitReg{reg: r, id: id, offset: b.Offset + r.Offset})
		}
	}
	for i := 1; i < len(e.regs); i++ {
		a, b := e.regs[i-1], e.regs[i]
		if a.offset > b.offset {
			return e.fail("register %s placed before %s", b.id, a.id)
		}
		if a.offset+uint64(a.reg.Bits/8) > b.offset {
			return e.fail(
				"register %s at 0x%X overlaps %s", b.id, b.offset, a.id,
			)
		}
	}
	return nil
}

func (e *periphEmitter) structName() string { return e.pid + "_Periph" }

func (e *periphEmitter) valueType(er *emitReg) string { return e.pid + "_" + er.id }

func (e *periphEmitter) cellType(er *emitReg) string {
	if e.cfg.Next {
		var kind string
		switch {
		case er.reg.Access == model.ReadOnly:
			kind = "RO"
		case er.reg.Access == model.WriteOnly:
			kind = "WO"
		default:
			kind = "R"
		}
		return fmt.Sprintf("%s%d[%s]", kind, er.reg.Bits, e.valueType(er))
	}
	return e.pid + "_R" + er.id
}

// structItem renders the peripheral struct, its doc comment listing the
// instances and the register map, and one accessor function per instance.
func (e *periphEmitter) structItem() Item {
	var sb strings.Builder
	descr := e.p.Insts[0].Descr
	if descr != "" {
		fmt.Fprintf(&sb, "// Peripheral %s: %s\n", e.p.Name, descr)
	} else {
		fmt.Fprintf(&sb, "// Peripheral %s.\n", e.p.Name)
	}
	fmt.Fprintln(&sb, "//")
	fmt.Fprintln(&sb, "// Instances:")
	tw := new(tabwriter.Writer)
	tw.Init(&sb, 0, 0, 1, ' ', 0)
	for _, in := range e.p.Insts {
		fmt.Fprintf(tw, "//  %s\t 0x%08X\t", in.Name, in.Base)
		if in.Descr != "" {
			fmt.Fprintf(tw, " %s\n", in.Descr)
		} else {
			fmt.Fprintln(tw)
		}
	}
	tw.Flush()
	fmt.Fprintln(&sb, "// Registers:")
	for _, er := range e.regs {
		fmt.Fprintf(tw, "//  0x%03X\t%2d\t %s\t", er.offset, er.reg.Bits, er.id)
		if er.reg.Descr != "" {
			fmt.Fprintf(tw, " %s\n", er.reg.Descr)
		} else {
			fmt.Fprintln(tw)
		}
	}
	tw.Flush()

	fmt.Fprintf(&sb, "type %s struct {\n", e.structName())
	var off uint64
	for _, er := range e.regs {
		if er.offset > off {
			fmt.Fprintf(&sb, "\t_ [%d]byte\n", er.offset-off)
		}
		fmt.Fprintf(&sb, "\t%s %s\n", er.id, e.cellType(er))
		off = er.offset + uint64(er.reg.Bits/8)
	}
	fmt.Fprintln(&sb, "}")
	for _, in := range e.p.Insts {
		fmt.Fprintf(
			&sb, "\nfunc %s() *%s { return (*%s)(unsafe.Pointer(uintptr(0x%08X))) }\n",
			ident(in.Name), e.structName(), e.structName(), in.Base,
		)
	}
	return Item{Name: e.structName(), Src: sb.String()}
}

// regItem renders everything belonging to one register: the value type,
// the access-gated cell, the reset constant, the bit constants and the
// field getters/setters.
func (e *periphEmitter) regItem(er *emitReg) (Item, error) {
	r := er.reg
	vt := e.valueType(er)
	ut := fmt.Sprintf("uint%d", r.Bits)
	var sb strings.Builder

	if r.Descr != "" {
		fmt.Fprintf(&sb, "// %s: %s (%s, offset 0x%X, reset 0x%X).\n",
			er.id, r.Descr, r.Access, er.offset, r.Reset)
	} else {
		fmt.Fprintf(&sb, "// %s (%s, offset 0x%X, reset 0x%X).\n",
			er.id, r.Access, er.offset, r.Reset)
	}
	fmt.Fprintf(&sb, "type %s %s\n", vt, ut)
	fmt.Fprintf(&sb, "\nconst %s_RESET %s = 0x%X // reset value\n", vt, vt, r.Reset)

	if !e.cfg.Next {
		ct := e.cellType(er)
		fmt.Fprintf(&sb, "\ntype %s struct{ r volatile.Register%d }\n", ct, r.Bits)
		if r.Access.CanRead() {
			fmt.Fprintf(
				&sb, "\nfunc (r *%s) Load() %s { return %s(r.r.Get()) }\n",
				ct, vt, vt,
			)
		}
		if r.Access.CanWrite() {
			fmt.Fprintf(
				&sb, "\nfunc (r *%s) Store(v %s) { r.r.Set(%s(v)) }\n",
				ct, vt, ut,
			)
		}
		if r.Access == model.ReadWrite {
			fmt.Fprintln(&sb, "\n// Modify is a read-modify-write sequence, not an atomic operation:")
			fmt.Fprintln(&sb, "// the caller must ensure exclusion from concurrent contexts.")
			fmt.Fprintf(
				&sb, "func (r *%s) Modify(clear, set %s) { r.Store(r.Load()&^clear | set) }\n",
				ct, vt,
			)
		}
	}

	if len(r.Fields) > 0 {
		if err := e.fieldConsts(&sb, er); err != nil {
			return Item{}, err
		}
		if err := e.fieldMethods(&sb, er); err != nil {
			return Item{}, err
		}
	}
	return Item{Name: vt, Src: sb.String()}, nil
}

// fieldConsts renders one block with the shifted field masks and enumerated
// values and a second block with the field bit positions.
func (e *periphEmitter) fieldConsts(sb *strings.Builder, er *emitReg) error {
	r := er.reg
	vt := e.valueType(er)
	seen := make(map[string]string)
	fmt.Fprintln(sb, "\nconst (")
	for _, f := range r.Fields {
		fid := vt + "_" + ident(f.Name)
		if prev, ok := seen[fid]; ok {
			return e.fail("fields %s and %s map to one identifier %s", prev, f.Name, fid)
		}
		seen[fid] = f.Name
		fmt.Fprintf(
			sb, "\t%s %s = 0x%02X << %d //+ %s\n",
			fid, vt, uint64(1)<<f.Width-1, f.LSB, f.Descr,
		)
		for _, v := range f.Values {
			fmt.Fprintf(
				sb, "\t%s_%s %s = 0x%02X << %d", fid, ident(v.Name), vt, v.Value, f.LSB,
			)
			if v.Descr != "" {
				fmt.Fprintf(sb, " //  %s\n", v.Descr)
			} else {
				fmt.Fprintln(sb)
			}
			if v.Value>>f.Width != 0 {
				diag.Warnf(
					e.sink, e.p.Name+"."+er.id+"."+f.Name,
					"enumerated value %s does not fit in %d bits", v.Name, f.Width,
				)
			}
		}
	}
	fmt.Fprintln(sb, ")")
	fmt.Fprintln(sb, "\nconst (")
	for _, f := range r.Fields {
		fmt.Fprintf(sb, "\t%s_%sn = %d\n", vt, ident(f.Name), f.LSB)
	}
	fmt.Fprintln(sb, ")")
	return nil
}

// fieldMethods renders the typed per-field accessors as pure operations on
// the register value type. Read-only fields get no setter, write-only
// fields no getter; register-level access is enforced by the cell.
func (e *periphEmitter) fieldMethods(sb *strings.Builder, er *emitReg) error {
	r := er.reg
	vt := e.valueType(er)
	ut := fmt.Sprintf("uint%d", r.Bits)
	seen := make(map[string]string)
	for _, f := range r.Fields {
		fn := ident(f.Name)
		fid := vt + "_" + fn
		if prev, ok := seen[fn]; ok {
			return e.fail("fields %s and %s map to one method name %s", prev, f.Name, fn)
		}
		seen[fn] = f.Name
		if f.Access.CanRead() {
			fmt.Fprintf(
				sb, "\nfunc (v %s) %s() %s { return %s(v) >> %d & 0x%X }\n",
				vt, fn, ut, ut, f.LSB, uint64(1)<<f.Width-1,
			)
		}
		if f.Access.CanWrite() {
			fmt.Fprintf(
				sb, "\nfunc (v %s) Set%s(x %s) %s { return v&^%s | %s(x)<<%s_%sn&%s }\n",
				vt, fn, ut, vt, fid, vt, vt, fn, fid,
			)
		}
	}
	return nil
}
