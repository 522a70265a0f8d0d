// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svd defines the subset of the CMSIS-SVD hardware description
// consumed by the generator. A document is loaded with xml.Unmarshal into
// Device; everything downstream of the normalizer treats it as read-only.
package svd

import (
	"encoding/xml"
	"errors"
	"strconv"
)

// Uint accepts the SVD scaled-integer forms: decimal, 0x/0X hex, 0b binary
// and the legacy # binary notation.
type Uint uint

func (u *Uint) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := parseNum(s, 0)
	*u = Uint(v)
	return err
}

type Uint64 uint64

func (u *Uint64) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := parseNum(s, 64)
	*u = Uint64(v)
	return err
}

type Int int

func (i *Int) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	v, err := strconv.ParseInt(s, 0, 0)
	*i = Int(v)
	return err
}

func parseNum(s string, bitSize int) (uint64, error) {
	if len(s) != 0 && s[0] == '#' {
		// binary #1011 or #1x0x "do not care" format
		a := make([]byte, len(s)+1)
		a[0] = '0'
		a[1] = 'b'
		for i := 1; i < len(s); i++ {
			b := s[i]
			if b == 'x' || b == 'X' {
				b = '0'
			}
			a[i+1] = b
		}
		s = string(a)
	}
	return strconv.ParseUint(s, 0, bitSize)
}

type Device struct {
	Vendor      *string `xml:"vendor"`
	Name        string  `xml:"name"`
	Series      *string `xml:"series"`
	Version     string  `xml:"version"`
	Description string  `xml:"description"`
	// AddressUnitBits and Width describe the addressable space: Width bits
	// per bus access, AddressUnitBits per address increment.
	AddressUnitBits Uint `xml:"addressUnitBits"`
	Width           Uint `xml:"width"`
	*RegisterPropertiesGroup
	Peripherals []*Peripheral `xml:"peripherals>peripheral"`
}

// RegisterPropertiesGroup carries defaults inherited from the enclosing
// element: device -> peripheral -> cluster -> register.
type RegisterPropertiesGroup struct {
	Size       *Uint   `xml:"size"`
	Access     *string `xml:"access"`
	ResetValue *Uint64 `xml:"resetValue"`
	ResetMask  *Uint64 `xml:"resetMask"`
}

type Peripheral struct {
	DerivedFrom *string `xml:"derivedFrom,attr"`
	Name        string  `xml:"name"`
	Description *string `xml:"description"`
	GroupName   *string `xml:"groupName"`
	BaseAddress Uint64  `xml:"baseAddress"`
	*RegisterPropertiesGroup
	AddressBlock []*AddressBlock `xml:"addressBlock"`
	Interrupts   []*Interrupt    `xml:"interrupt"`
	Registers    []*Register     `xml:"registers>register"`
	Clusters     []*Cluster      `xml:"registers>cluster"`
}

type AddressBlock struct {
	Offset Uint64 `xml:"offset"`
	Size   Uint64 `xml:"size"`
	Usage  string `xml:"usage"`
}

type Interrupt struct {
	Name        string  `xml:"name"`
	Description *string `xml:"description"`
	Value       Int     `xml:"value"`
}

// Cluster is a named group of registers sharing a common offset base. The
// generator maps it to a register block.
type Cluster struct {
	DerivedFrom   *string `xml:"derivedFrom,attr"`
	Name          string  `xml:"name"`
	Description   *string `xml:"description"`
	AddressOffset Uint64  `xml:"addressOffset"`
	*RegisterPropertiesGroup
	Registers []*Register `xml:"register"`
	Clusters  []*Cluster  `xml:"cluster"`
}

type Register struct {
	DerivedFrom   *string `xml:"derivedFrom,attr"`
	Name          string  `xml:"name"`
	Description   *string `xml:"description"`
	AddressOffset Uint64  `xml:"addressOffset"`
	*RegisterPropertiesGroup
	Fields []*Field `xml:"fields>field"`
}

type Field struct {
	DerivedFrom *string `xml:"derivedFrom,attr"`
	Name        string  `xml:"name"`
	Description *string `xml:"description"`
	*BitRangeOffsetWidth
	*BitRangeLSBMSB
	BitRangePattern  *string             `xml:"bitRange"`
	Access           *string             `xml:"access"`
	EnumeratedValues []*EnumeratedValues `xml:"enumeratedValues"`
}

type BitRangeOffsetWidth struct {
	BitOffset Uint  `xml:"bitOffset"`
	BitWidth  *Uint `xml:"bitWidth"`
}

type BitRangeLSBMSB struct {
	LSB Uint `xml:"lsb"`
	MSB Uint `xml:"msb"`
}

type EnumeratedValues struct {
	Name            *string            `xml:"name"`
	Usage           *string            `xml:"usage"`
	EnumeratedValue []*EnumeratedValue `xml:"enumeratedValue"`
}

type EnumeratedValue struct {
	Name        *string `xml:"name"`
	Description *string `xml:"description"`
	Value       *string `xml:"value"`
	IsDefault   *bool   `xml:"isDefault"`
}

var ErrNilValue = errors.New("nil value")

// Val decodes the enumerated value, accepting the same number formats as
// the scaled-integer elements.
func (ev *EnumeratedValue) Val() (uint64, error) {
	if ev.Value == nil {
		return 0, ErrNilValue
	}
	return parseNum(*ev.Value, 64)
}

// Bits returns the field bit range as (lsb, width), regardless of which of
// the three SVD notations declared it. ok is false if none did.
func (f *Field) Bits() (lsb, width uint, ok bool) {
	switch {
	case f.BitRangeOffsetWidth != nil:
		lsb = uint(f.BitRangeOffsetWidth.BitOffset)
		width = 1
		if w := f.BitRangeOffsetWidth.BitWidth; w != nil {
			width = uint(*w)
		}
		return lsb, width, true
	case f.BitRangeLSBMSB != nil:
		lsb = uint(f.BitRangeLSBMSB.LSB)
		msb := uint(f.BitRangeLSBMSB.MSB)
		if msb < lsb {
			return 0, 0, false
		}
		return lsb, 1 + msb - lsb, true
	case f.BitRangePattern != nil:
		return parseBitRange(*f.BitRangePattern)
	}
	return 0, 0, false
}

// parseBitRange decodes the "[msb:lsb]" pattern notation.
func parseBitRange(s string) (lsb, width uint, ok bool) {
	if len(s) < 5 || s[0] != '[' || s[len(s)-1] != ']' {
		return 0, 0, false
	}
	colon := -1
	for i := 1; i < len(s)-1; i++ {
		if s[i] == ':' {
			colon = i
			break
		}
	}
	if colon < 0 {
		return 0, 0, false
	}
	msb, err := strconv.ParseUint(s[1:colon], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseUint(s[colon+1:len(s)-1], 10, 32)
	if err != nil || msb < l {
		return 0, 0, false
	}
	return uint(l), uint(1 + msb - l), true
}
