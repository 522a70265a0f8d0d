// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the normalized device model produced by the
// normalizer and consumed by the emitters. Unlike the svd package it has no
// optional elements, no derivation links and no relative-only addresses:
// everything is resolved, validated and ready to render.
package model

// Access is the register/field access mode.
type Access uint8

const (
	ReadWrite Access = iota
	ReadOnly
	WriteOnly
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	}
	return "read-write"
}

// CanRead reports whether a load operation may be generated.
func (a Access) CanRead() bool { return a != WriteOnly }

// CanWrite reports whether a store operation may be generated.
func (a Access) CanWrite() bool { return a != ReadOnly }

// Usage scopes an enumerated value set to a transfer direction.
type Usage uint8

const (
	ForReadWrite Usage = iota
	ForRead
	ForWrite
)

func (u Usage) String() string {
	switch u {
	case ForRead:
		return "read"
	case ForWrite:
		return "write"
	}
	return "read-write"
}

// Device is a fully normalized hardware description.
type Device struct {
	Name     string
	Descr    string
	Width    uint // default register width in bits
	AddrBits uint // width of the addressable space
	Periphs  []*Periph
	IRQs     []*IRQ
}

// Periph is one generated peripheral type. Instances that resolved to a
// byte-for-byte identical register layout share a single Periph and differ
// only in name and base address.
type Periph struct {
	Name   string // type name, derived from the instance names
	Insts  []*Inst
	Blocks []*Block
}

// Regs ranges over all registers of all blocks in layout order.
func (p *Periph) Regs(f func(b *Block, r *Reg) bool) {
	for _, b := range p.Blocks {
		for _, r := range b.Regs {
			if !f(b, r) {
				return
			}
		}
	}
}

// Span returns the address extent of the peripheral layout relative to the
// instance base: the past-the-end offset of its last block.
func (p *Periph) Span() uint64 {
	var span uint64
	for _, b := range p.Blocks {
		if end := b.Offset + b.Size; end > span {
			span = end
		}
	}
	return span
}

// Inst is a concrete peripheral instance anchored at a base address.
type Inst struct {
	Name  string
	Base  uint64
	Descr string
}

// Block is a contiguous group of registers at a common offset from the
// peripheral base. Registers declared outside any cluster form a single
// anonymous block at offset 0.
type Block struct {
	Name   string // empty for the anonymous block
	Offset uint64
	Size   uint64 // bytes
	Regs   []*Reg // sorted by offset
}

type Reg struct {
	Name   string
	Offset uint64 // from block start
	Addr   uint64 // absolute, for the first instance; informational
	Bits   uint
	Access Access
	Reset  uint64
	Descr  string
	Fields []*Field // sorted by LSB
}

type Field struct {
	Name   string
	LSB    uint
	Width  uint
	Access Access
	Descr  string
	Values []*EnumValue
}

// Mask returns the field mask shifted into register position.
func (f *Field) Mask() uint64 { return (1<<f.Width - 1) << f.LSB }

type EnumValue struct {
	Name  string
	Value uint64
	Usage Usage
	Descr string
}

type IRQ struct {
	Name  string
	Value int
	Descr string
}
