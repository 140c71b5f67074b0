// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package bitutil has small bit arithmetic helpers shared by the
// transform and analysis packages.
package bitutil

import "math/bits"

// Clog2 returns ceil(log2(n)) for n >= 1.
func Clog2(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// IntToBin returns the width least significant bits of v, most
// significant first.
func IntToBin(v, width int) []bool {
	out := make([]bool, width)
	for i := 0; i < width; i++ {
		out[width-1-i] = v&(1<<uint(i)) != 0
	}
	return out
}
