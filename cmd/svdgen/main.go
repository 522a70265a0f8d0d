// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Svdgen generates a typed Go register API plus the vector-table linker
// script from an SVD hardware description.
//
// Usage: svdgen [options]
//
// With -target cortex-m three files are written to the output directory:
// the code stream, the linker script and the build glue program. Every
// other target streams the code to stdout.
package main

import (
	"encoding/xml"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/embeddedgo/svdgen/internal/config"
	"github.com/embeddedgo/svdgen/internal/diag"
	"github.com/embeddedgo/svdgen/internal/render"
	"github.com/embeddedgo/svdgen/svd"
)

func die(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	for err = errors.Unwrap(err); err != nil; err = errors.Unwrap(err) {
		fmt.Fprintln(os.Stderr, "caused by:", err)
	}
	os.Exit(1)
}

func main() {
	var (
		input   = flag.String("i", "", "input SVD `file` (default stdin)")
		target  = flag.String("target", "", "target `arch`: cortex-m, msp430, riscv, none")
		next    = flag.Bool("next", false, "use newer codegen constructs (cortex-m only)")
		pkg     = flag.String("pkg", "", "package `name` of the generated code")
		root    = flag.String("root", "", "import `path` prefix recorded in the generated code")
		format  = flag.Bool("fmt", false, "gofmt the generated code stream")
		outDir  = flag.String("o", "", "output `dir` for the cortex-m artifacts")
		logLvl  = flag.String("l", "", "log `level`: off, error, warn, info, debug, trace")
		cfgFile = flag.String("c", config.DefaultFile, "configuration `file`")
		jobs    = flag.Int("j", 0, "parallel peripheral emitters (default GOMAXPROCS)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		die(err)
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["target"] {
		cfg.Target = *target
	}
	if set["next"] {
		cfg.Next = *next
	}
	if set["pkg"] {
		cfg.Package = *pkg
	}
	if set["root"] {
		cfg.ImportRoot = *root
	}
	if set["fmt"] {
		cfg.Format = *format
	}
	if set["o"] {
		cfg.OutDir = *outDir
	}
	if set["l"] {
		cfg.Log = *logLvl
	}
	if set["j"] {
		cfg.Jobs = *jobs
	}

	level, err := diag.ParseLevel(cfg.Log)
	if err != nil {
		die(err)
	}
	sink := diag.Writer(os.Stderr, level)

	// The target is checked before any model processing.
	tgt, err := render.ParseTarget(cfg.Target)
	if err != nil {
		die(err)
	}

	var data []byte
	if *input != "" {
		data, err = os.ReadFile(*input)
		if err != nil {
			die(fmt.Errorf("reading the SVD file: %w", err))
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			die(fmt.Errorf("reading stdin: %w", err))
		}
	}
	dev := new(svd.Device)
	if err := xml.Unmarshal(data, dev); err != nil {
		die(fmt.Errorf("parsing the SVD document: %w", err))
	}

	art, err := render.Device(dev, &render.Options{
		Target:     tgt,
		Next:       cfg.Next,
		PkgName:    cfg.Package,
		ImportRoot: cfg.ImportRoot,
		Format:     cfg.Format,
		Jobs:       cfg.Jobs,
	}, sink)
	if err != nil {
		die(err)
	}

	if tgt != render.CortexM {
		if _, err := os.Stdout.Write(art.Code); err != nil {
			die(err)
		}
		return
	}
	name := cfg.Package
	if name == "" {
		name = "device"
	}
	for _, out := range []struct {
		name string
		data []byte
	}{
		{name + ".go", art.Code},
		{render.ScriptFile, art.LinkerScript},
		{"rt.go", art.BuildGlue},
	} {
		path := filepath.Join(cfg.OutDir, out.name)
		if err := os.WriteFile(path, out.data, 0644); err != nil {
			die(err)
		}
		diag.Infof(sink, "", "wrote %s", path)
	}
}
