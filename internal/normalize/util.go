// Copyright 2026 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package normalize

import (
	"strconv"
	"strings"
)

// fixSpaces collapses the multi-line, multi-space descriptions found in
// vendor files into single-spaced one-liners.
func fixSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func itoa(i int) string { return strconv.Itoa(i) }
