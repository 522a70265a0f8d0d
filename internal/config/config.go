// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the optional svdgen.yaml file. Every setting has a
// matching command line flag; flags win over the file.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is picked up from the working directory when -c is not given.
const DefaultFile = "svdgen.yaml"

type Config struct {
	Target     string `yaml:"target"`
	Next       bool   `yaml:"next"`
	Package    string `yaml:"package"`
	ImportRoot string `yaml:"import_root"`
	Format     bool   `yaml:"format"`
	Log        string `yaml:"log"`
	Jobs       int    `yaml:"jobs"`
	OutDir     string `yaml:"out_dir"`
}

// Default returns the built-in configuration: cortex-m target, info
// logging, output to the working directory.
func Default() *Config {
	return &Config{Target: "cortex-m", Log: "info", OutDir: "."}
}

// Load reads path over the defaults. A missing file is not an error when
// path is DefaultFile: the file is optional.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultFile {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a config document. Unknown keys are rejected so a typo does
// not silently fall back to a default.
func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "."
	}
	return cfg, nil
}
