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

// VectorTable renders the interrupt vector table as linker script text: one
// PROVIDE per declared interrupt so that a missing handler falls back to
// DefaultHandler instead of a link error, then one table entry per index
// from 0 to the highest declared one. Undeclared indices become reserved
// entries that still take a slot, so gaps never shift later vectors.
//
// Duplicate indices are rejected here again: the table must stay correct
// even if a caller skips the normalizer.
func VectorTable(devName string, irqs []*model.IRQ) (string, error) {
	byIndex := make(map[int]*model.IRQ, len(irqs))
	max := -1
	for _, irq := range irqs {
		if prev := byIndex[irq.Value]; prev != nil {
			return "", &model.TableError{
				Index: irq.Value,
				Names: []string{prev.Name, irq.Name},
			}
		}
		byIndex[irq.Value] = irq
		if irq.Value > max {
			max = irq.Value
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "/* Interrupt vector table for %s. Generated by svdgen, DO NOT EDIT. */\n\n", devName)
	names := make([]string, 0, len(irqs))
	for _, irq := range irqs {
		names = append(names, ident(irq.Name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "PROVIDE(%s = DefaultHandler);\n", name)
	}
	if max < 0 {
		return sb.String(), nil
	}
	fmt.Fprintln(&sb, "\nSECTIONS")
	fmt.Fprintln(&sb, "{")
	fmt.Fprintln(&sb, "\t.vector_table.interrupts : ALIGN(4)")
	fmt.Fprintln(&sb, "\t{")
	fmt.Fprintln(&sb, "\t\t__ivectors = .;")
	for i := 0; i <= max; i++ {
		if irq := byIndex[i]; irq != nil {
			fmt.Fprintf(&sb, "\t\tLONG(%s); /* %d", ident(irq.Name), i)
			if irq.Descr != "" {
				fmt.Fprintf(&sb, ": %s", irq.Descr)
			}
			fmt.Fprintln(&sb, " */")
		} else {
			fmt.Fprintf(&sb, "\t\tLONG(0); /* %d: reserved */\n", i)
		}
	}
	fmt.Fprintln(&sb, "\t\t__ivectors_end = .;")
	fmt.Fprintln(&sb, "\t}")
	fmt.Fprintln(&sb, "}")
	return sb.String(), nil
}
