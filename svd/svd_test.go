// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svd_test

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedgo/svdgen/svd"
)

const doc = `<?xml version="1.0" encoding="utf-8"?>
<device>
  <name>TESTCHIP</name>
  <version>1.1</version>
  <description>Test device</description>
  <addressUnitBits>8</addressUnitBits>
  <width>32</width>
  <size>0x20</size>
  <resetValue>0x00000000</resetValue>
  <peripherals>
    <peripheral>
      <name>GPIOA</name>
      <description>General purpose I/O</description>
      <baseAddress>0x40000000</baseAddress>
      <addressBlock>
        <offset>0</offset>
        <size>0x400</size>
        <usage>registers</usage>
      </addressBlock>
      <interrupt>
        <name>GPIOA_IRQ</name>
        <value>7</value>
      </interrupt>
      <registers>
        <register>
          <name>ODR</name>
          <addressOffset>0x0C</addressOffset>
          <access>read-write</access>
          <resetValue>0x0000A500</resetValue>
          <fields>
            <field>
              <name>PIN0</name>
              <bitOffset>0</bitOffset>
              <bitWidth>1</bitWidth>
              <enumeratedValues>
                <usage>write</usage>
                <enumeratedValue>
                  <name>LOW</name>
                  <value>#0</value>
                </enumeratedValue>
                <enumeratedValue>
                  <name>HIGH</name>
                  <value>0x1</value>
                </enumeratedValue>
              </enumeratedValues>
            </field>
            <field>
              <name>MODE</name>
              <lsb>4</lsb>
              <msb>5</msb>
            </field>
            <field>
              <name>CFG</name>
              <bitRange>[9:8]</bitRange>
            </field>
          </fields>
        </register>
      </registers>
    </peripheral>
    <peripheral derivedFrom="GPIOA">
      <name>GPIOB</name>
      <baseAddress>0x40000400</baseAddress>
    </peripheral>
  </peripherals>
</device>`

func TestUnmarshal(t *testing.T) {
	dev := new(svd.Device)
	require.NoError(t, xml.Unmarshal([]byte(doc), dev))

	assert.Equal(t, "TESTCHIP", dev.Name)
	assert.Equal(t, svd.Uint(32), dev.Width)
	require.NotNil(t, dev.RegisterPropertiesGroup)
	require.NotNil(t, dev.Size)
	assert.Equal(t, svd.Uint(0x20), *dev.Size)

	require.Len(t, dev.Peripherals, 2)
	pa, pb := dev.Peripherals[0], dev.Peripherals[1]
	assert.Equal(t, svd.Uint64(0x4000_0000), pa.BaseAddress)
	require.Len(t, pa.AddressBlock, 1)
	assert.Equal(t, svd.Uint64(0x400), pa.AddressBlock[0].Size)
	require.Len(t, pa.Interrupts, 1)
	assert.Equal(t, svd.Int(7), pa.Interrupts[0].Value)

	require.Nil(t, pa.DerivedFrom)
	require.NotNil(t, pb.DerivedFrom)
	assert.Equal(t, "GPIOA", *pb.DerivedFrom)
	assert.Empty(t, pb.Registers)

	require.Len(t, pa.Registers, 1)
	odr := pa.Registers[0]
	assert.Equal(t, svd.Uint64(0x0C), odr.AddressOffset)
	require.NotNil(t, odr.ResetValue)
	assert.Equal(t, svd.Uint64(0xA500), *odr.ResetValue)
	require.Len(t, odr.Fields, 3)
}

func TestFieldBitRanges(t *testing.T) {
	dev := new(svd.Device)
	require.NoError(t, xml.Unmarshal([]byte(doc), dev))
	fields := dev.Peripherals[0].Registers[0].Fields

	tests := []struct {
		name       string
		lsb, width uint
	}{
		{"PIN0", 0, 1}, // offset/width notation
		{"MODE", 4, 2}, // lsb/msb notation
		{"CFG", 8, 2},  // [msb:lsb] pattern
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fields[i]
			require.Equal(t, tt.name, f.Name)
			lsb, width, ok := f.Bits()
			require.True(t, ok)
			assert.Equal(t, tt.lsb, lsb)
			assert.Equal(t, tt.width, width)
		})
	}
}

func TestEnumeratedValueFormats(t *testing.T) {
	dev := new(svd.Device)
	require.NoError(t, xml.Unmarshal([]byte(doc), dev))
	evs := dev.Peripherals[0].Registers[0].Fields[0].EnumeratedValues
	require.Len(t, evs, 1)
	require.NotNil(t, evs[0].Usage)
	assert.Equal(t, "write", *evs[0].Usage)
	require.Len(t, evs[0].EnumeratedValue, 2)

	low, err := evs[0].EnumeratedValue[0].Val() // legacy #binary form
	require.NoError(t, err)
	assert.Equal(t, uint64(0), low)
	high, err := evs[0].EnumeratedValue[1].Val()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), high)

	_, err = (&svd.EnumeratedValue{}).Val()
	assert.ErrorIs(t, err, svd.ErrNilValue)
}
