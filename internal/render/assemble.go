// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/imports"

	"github.com/embeddedgo/svdgen/internal/emit"
	"github.com/embeddedgo/svdgen/internal/model"
)

// assemble concatenates the prologue and the peripheral items into the
// final code stream, preserving peripheral declaration order. No
// transformation happens here beyond ordering and separation.
func assemble(dev *model.Device, cfg *emit.Config, items [][]emit.Item) []byte {
	var buf bytes.Buffer
	pro := emit.Prologue(dev, cfg)
	buf.WriteString(pro.Src)
	for _, periphItems := range items {
		for _, it := range periphItems {
			buf.WriteByte('\n')
			buf.WriteString(it.Src)
		}
	}
	return buf.Bytes()
}

// format runs the stream through gofmt plus import fixing. The stream is
// machine written, so a formatting failure means the emitters produced
// broken code and the render must fail.
func format(code []byte) ([]byte, error) {
	out, err := imports.Process("", code, nil)
	if err != nil {
		return nil, fmt.Errorf("internal: generated stream does not format: %w", err)
	}
	return out, nil
}
