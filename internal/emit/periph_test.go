// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedgo/svdgen/internal/model"
)

// gpioa is the reference scenario: one peripheral GPIOA at 0x4000_0000 with
// the read-write ODR register at 0x0C holding the single-bit PIN0 field.
func gpioa() *model.Periph {
	return &model.Periph{
		Name:  "GPIOA",
		Insts: []*model.Inst{{Name: "GPIOA", Base: 0x4000_0000}},
		Blocks: []*model.Block{{
			Offset: 0, Size: 0x10,
			Regs: []*model.Reg{{
				Name: "ODR", Offset: 0x0C, Bits: 32,
				Access: model.ReadWrite, Reset: 0,
				Fields: []*model.Field{{
					Name: "PIN0", LSB: 0, Width: 1, Access: model.ReadWrite,
				}},
			}},
		}},
	}
}

func src(t *testing.T, items []Item) string {
	t.Helper()
	var sb strings.Builder
	for _, it := range items {
		sb.WriteString(it.Src)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestGPIOAScenario(t *testing.T) {
	items, err := Periph(gpioa(), &Config{PkgName: "test"}, nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	code := src(t, items)

	// Handle type anchored at the base address.
	assert.Contains(t, code, "type GPIOA_Periph struct {")
	assert.Contains(t, code, "_ [12]byte") // padding up to 0x0C
	assert.Contains(t, code, "func GPIOA() *GPIOA_Periph { return (*GPIOA_Periph)(unsafe.Pointer(uintptr(0x40000000))) }")

	// Read-write register: load, store and modify all present.
	assert.Contains(t, code, "type GPIOA_ODR uint32")
	assert.Contains(t, code, "func (r *GPIOA_RODR) Load() GPIOA_ODR")
	assert.Contains(t, code, "func (r *GPIOA_RODR) Store(v GPIOA_ODR)")
	assert.Contains(t, code, "func (r *GPIOA_RODR) Modify(clear, set GPIOA_ODR)")
	assert.Contains(t, code, "not an atomic operation")

	// Boolean-like field accessors at bit 0.
	assert.Contains(t, code, "GPIOA_ODR_PIN0 GPIOA_ODR = 0x01 << 0")
	assert.Contains(t, code, "GPIOA_ODR_PIN0n = 0")
	assert.Contains(t, code, "func (v GPIOA_ODR) PIN0() uint32 { return uint32(v) >> 0 & 0x1 }")
	assert.Contains(t, code, "func (v GPIOA_ODR) SetPIN0(x uint32) GPIOA_ODR")
}

func TestAccessGating(t *testing.T) {
	p := gpioa()
	r := p.Blocks[0].Regs[0]

	r.Access = model.ReadOnly
	r.Fields[0].Access = model.ReadOnly
	code := src(t, mustEmit(t, p, &Config{}))
	assert.Contains(t, code, ") Load()")
	assert.NotContains(t, code, ") Store(")
	assert.NotContains(t, code, ") Modify(")
	assert.NotContains(t, code, "SetPIN0")
	assert.Contains(t, code, "func (v GPIOA_ODR) PIN0()")

	r.Access = model.WriteOnly
	r.Fields[0].Access = model.WriteOnly
	code = src(t, mustEmit(t, p, &Config{}))
	assert.NotContains(t, code, ") Load()")
	assert.Contains(t, code, ") Store(")
	assert.NotContains(t, code, ") Modify(")
	assert.NotContains(t, code, "func (v GPIOA_ODR) PIN0()")
	assert.Contains(t, code, "SetPIN0")
}

func TestFieldGatingInsideReadWriteRegister(t *testing.T) {
	p := gpioa()
	r := p.Blocks[0].Regs[0]
	r.Fields = []*model.Field{
		{Name: "STATE", LSB: 0, Width: 2, Access: model.ReadOnly},
		{Name: "CMD", LSB: 2, Width: 2, Access: model.WriteOnly},
	}
	code := src(t, mustEmit(t, p, &Config{}))
	assert.Contains(t, code, "func (v GPIOA_ODR) STATE()")
	assert.NotContains(t, code, "SetSTATE")
	assert.NotContains(t, code, "func (v GPIOA_ODR) CMD()")
	assert.Contains(t, code, "func (v GPIOA_ODR) SetCMD(")
}

func TestEnumConstants(t *testing.T) {
	p := gpioa()
	f := p.Blocks[0].Regs[0].Fields[0]
	f.Width = 2
	f.Values = []*model.EnumValue{
		{Name: "LOW", Value: 0, Usage: model.ForWrite, Descr: "drive low"},
		{Name: "HIGH", Value: 1, Usage: model.ForWrite},
	}
	code := src(t, mustEmit(t, p, &Config{}))
	assert.Contains(t, code, "GPIOA_ODR_PIN0_LOW GPIOA_ODR = 0x00 << 0")
	assert.Contains(t, code, "drive low")
	assert.Contains(t, code, "GPIOA_ODR_PIN0_HIGH GPIOA_ODR = 0x01 << 0")
}

func TestResetConstant(t *testing.T) {
	p := gpioa()
	p.Blocks[0].Regs[0].Reset = 0xA500
	code := src(t, mustEmit(t, p, &Config{}))
	assert.Contains(t, code, "GPIOA_ODR_RESET GPIOA_ODR = 0xA500")
}

func TestSharedTypeInstances(t *testing.T) {
	p := gpioa()
	p.Name = "GPIO"
	p.Insts = []*model.Inst{
		{Name: "GPIOA", Base: 0x4000_0000},
		{Name: "GPIOB", Base: 0x4000_0400},
	}
	code := src(t, mustEmit(t, p, &Config{}))
	// One underlying type, two anchored instances.
	assert.Equal(t, 1, strings.Count(code, "type GPIO_Periph struct"))
	assert.Contains(t, code, "func GPIOA() *GPIO_Periph { return (*GPIO_Periph)(unsafe.Pointer(uintptr(0x40000000))) }")
	assert.Contains(t, code, "func GPIOB() *GPIO_Periph { return (*GPIO_Periph)(unsafe.Pointer(uintptr(0x40000400))) }")
}

func TestNextModeUsesGenericCells(t *testing.T) {
	p := gpioa()
	code := src(t, mustEmit(t, p, &Config{Next: true}))
	assert.Contains(t, code, "ODR R32[GPIOA_ODR]")
	assert.NotContains(t, code, "type GPIOA_RODR")

	p.Blocks[0].Regs[0].Access = model.ReadOnly
	p.Blocks[0].Regs[0].Fields[0].Access = model.ReadOnly
	code = src(t, mustEmit(t, p, &Config{Next: true}))
	assert.Contains(t, code, "ODR RO32[GPIOA_ODR]")
}

func TestBlockPrefixedRegisters(t *testing.T) {
	p := &model.Periph{
		Name:  "DMA",
		Insts: []*model.Inst{{Name: "DMA1", Base: 0x4002_0000}},
		Blocks: []*model.Block{
			{Name: "", Offset: 0, Size: 4, Regs: []*model.Reg{
				{Name: "ISR", Offset: 0, Bits: 32, Access: model.ReadOnly},
			}},
			{Name: "CH1", Offset: 0x8, Size: 4, Regs: []*model.Reg{
				{Name: "CR", Offset: 0, Bits: 32, Access: model.ReadWrite},
			}},
		},
	}
	code := src(t, mustEmit(t, p, &Config{}))
	assert.Contains(t, code, "ISR DMA_RISR")
	assert.Contains(t, code, "CH1_CR DMA_RCH1_CR")
	assert.Contains(t, code, "type DMA_CH1_CR uint32")
}

func TestOverlappingRegistersAreInternalError(t *testing.T) {
	p := gpioa()
	p.Blocks[0].Regs = append(p.Blocks[0].Regs, &model.Reg{
		Name: "ALT", Offset: 0x0C, Bits: 32, Access: model.ReadWrite,
	})
	_, err := Periph(p, &Config{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal")
	assert.Contains(t, err.Error(), "GPIOA")
}

func mustEmit(t *testing.T, p *model.Periph, cfg *Config) []Item {
	t.Helper()
	items, err := Periph(p, cfg, nil)
	require.NoError(t, err)
	return items
}
