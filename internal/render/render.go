// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render runs the whole pipeline: normalize the device, emit every
// peripheral, emit the vector table for targets that take one, and
// assemble the final artifact set. The render either completes or fails as
// a unit; no partial artifact ever leaves this package.
package render

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/sync/errgroup"

	"github.com/embeddedgo/svdgen/internal/diag"
	"github.com/embeddedgo/svdgen/internal/emit"
	"github.com/embeddedgo/svdgen/internal/model"
	"github.com/embeddedgo/svdgen/internal/normalize"
	"github.com/embeddedgo/svdgen/svd"
)

// Target selects the output shape. The choice is made once per invocation,
// before any model processing.
type Target uint8

const (
	CortexM Target = iota // vector table + build glue + code
	MSP430                // code only
	RISCV                 // code only
	None                  // code only, no architecture assumptions
)

var targetNames = [...]string{"cortex-m", "msp430", "riscv", "none"}

func (t Target) String() string {
	if int(t) >= len(targetNames) {
		return fmt.Sprintf("target(%d)", uint8(t))
	}
	return targetNames[t]
}

// ParseTarget maps the command line selector onto a Target. An unknown
// selector fails with *model.UnsupportedTargetError.
func ParseTarget(s string) (Target, error) {
	for i, name := range targetNames {
		if s == name {
			return Target(i), nil
		}
	}
	return None, &model.UnsupportedTargetError{Name: s}
}

// ScriptFile is the name the generated linker script is written under and
// the name the build glue program installs.
const ScriptFile = "vectors.ld"

type Options struct {
	Target     Target
	Next       bool   // newer codegen constructs; honored for cortex-m only
	PkgName    string // package clause; lowercased device name if empty
	ImportRoot string // optional import path prefix, must be valid if set
	Format     bool   // run the assembled stream through gofmt+goimports
	Jobs       int    // parallel peripheral emitters; GOMAXPROCS if 0
}

// Artifact is the final output tuple. LinkerScript and BuildGlue are nil
// for every target but cortex-m.
type Artifact struct {
	Code         []byte
	LinkerScript []byte
	BuildGlue    []byte
}

// Device renders sd for the selected target.
func Device(sd *svd.Device, opt *Options, sink diag.Sink) (*Artifact, error) {
	if sink == nil {
		sink = diag.Discard()
	}
	if int(opt.Target) >= len(targetNames) {
		return nil, &model.UnsupportedTargetError{Name: opt.Target.String()}
	}
	if opt.ImportRoot != "" {
		if err := module.CheckImportPath(opt.ImportRoot); err != nil {
			return nil, fmt.Errorf("bad import root: %w", err)
		}
	}

	dev, err := normalize.Device(sd, sink)
	if err != nil {
		return nil, err
	}
	diag.Infof(sink, dev.Name, "%d peripheral types, %d interrupts",
		len(dev.Periphs), len(dev.IRQs))

	cfg := &emit.Config{
		PkgName:    opt.PkgName,
		ImportRoot: opt.ImportRoot,
		Next:       opt.Next && opt.Target == CortexM,
	}
	if cfg.PkgName == "" {
		cfg.PkgName = strings.ToLower(ident(dev.Name))
	}

	items, err := emitAll(dev, cfg, opt.Jobs, sink)
	if err != nil {
		return nil, err
	}

	art := &Artifact{Code: assemble(dev, cfg, items)}
	if opt.Format {
		art.Code, err = format(art.Code)
		if err != nil {
			return nil, err
		}
	}
	if opt.Target == CortexM {
		script, err := emit.VectorTable(dev.Name, dev.IRQs)
		if err != nil {
			return nil, err
		}
		art.LinkerScript = []byte(script)
		art.BuildGlue = []byte(emit.BuildGlue(dev.Name, ScriptFile))
	}
	return art, nil
}

// emitAll renders the peripherals concurrently. Emission of one peripheral
// does not depend on any other, so the only coordination needed is putting
// the results back into declaration order.
func emitAll(dev *model.Device, cfg *emit.Config, jobs int, sink diag.Sink) ([][]emit.Item, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	items := make([][]emit.Item, len(dev.Periphs))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, p := range dev.Periphs {
		i, p := i, p
		g.Go(func() error {
			its, err := emit.Periph(p, cfg, sink)
			if err != nil {
				return err
			}
			items[i] = its
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func ident(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' ||
			'0' <= r && r <= '9' {
			sb.WriteRune(r)
		}
	}
	id := sb.String()
	if id == "" || '0' <= id[0] && id[0] <= '9' {
		id = "d" + id
	}
	return id
}
