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

func TestVectorTable(t *testing.T) {
	script, err := VectorTable("TEST", []*model.IRQ{
		{Name: "UART0", Value: 2},
		{Name: "TIMER1", Value: 5, Descr: "timer 1 update"},
	})
	require.NoError(t, err)

	// Missing handlers resolve to the default handler, never a link error.
	assert.Contains(t, script, "PROVIDE(UART0 = DefaultHandler);")
	assert.Contains(t, script, "PROVIDE(TIMER1 = DefaultHandler);")

	// Exactly max(index)+1 entries; gaps hold reserved slots.
	assert.Equal(t, 6, strings.Count(script, "LONG("))
	assert.Equal(t, 4, strings.Count(script, "reserved"))
	for _, line := range []string{
		"LONG(0); /* 0: reserved */",
		"LONG(0); /* 1: reserved */",
		"LONG(UART0); /* 2 */",
		"LONG(0); /* 3: reserved */",
		"LONG(0); /* 4: reserved */",
		"LONG(TIMER1); /* 5: timer 1 update */",
	} {
		assert.Contains(t, script, line)
	}

	// Entries appear in index order.
	assert.Less(t,
		strings.Index(script, "LONG(UART0)"),
		strings.Index(script, "LONG(TIMER1)"),
	)
}

func TestVectorTableDuplicateIndex(t *testing.T) {
	_, err := VectorTable("TEST", []*model.IRQ{
		{Name: "SPI1", Value: 3},
		{Name: "I2C1", Value: 3},
	})
	var terr *model.TableError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 3, terr.Index)
	assert.Equal(t, []string{"SPI1", "I2C1"}, terr.Names)
}

func TestVectorTableEmpty(t *testing.T) {
	script, err := VectorTable("TEST", nil)
	require.NoError(t, err)
	assert.NotContains(t, script, "SECTIONS")
	assert.NotContains(t, script, "LONG(")
}

func TestBuildGlue(t *testing.T) {
	glue := BuildGlue("TEST", "vectors.ld")
	// A no-op unless runtime support is requested by the environment.
	assert.Contains(t, glue, `os.Getenv("SVDGEN_RT")`)
	assert.Contains(t, glue, `"vectors.ld"`)
	assert.Contains(t, glue, "link-search:")
	assert.Contains(t, glue, "//go:build ignore")
	assert.Contains(t, glue, "package main")
}
