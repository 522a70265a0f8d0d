// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package emit

import "fmt"

// BuildGlue renders the small generated program that wires the vector-table
// linker script into a build. It does nothing unless the build requests
// runtime support through the environment, in which case it copies the
// script into the directory the linker searches and prints the matching
// link directive for the build orchestrator.
func BuildGlue(devName, script string) string {
	return fmt.Sprintf(`// Code generated by svdgen for %s. DO NOT EDIT.

//go:build ignore

// This program registers the %s vector table with the build: run it before
// linking. Without the runtime feature it is a no-op, so an image can be
// built long before every interrupt handler exists.
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	if os.Getenv("SVDGEN_RT") == "" {
		return
	}
	out := os.Getenv("SVDGEN_OUT_DIR")
	if out == "" {
		out = "."
	}
	data, err := os.ReadFile(%q)
	if err == nil {
		err = os.WriteFile(filepath.Join(out, %q), data, 0644)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "svdgen-rt:", err)
		os.Exit(1)
	}
	fmt.Println("link-search:", out)
	fmt.Println("link-script:", %q)
}
`, devName, devName, script, script, script)
}
