// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package logic

import (
	"fmt"
	"math/bits"
	"testing"
)

func TestFullAdder(t *testing.T) {
	c := FullAdder()
	for v := 0; v < 8; v++ {
		in := map[string]bool{"x": v&1 != 0, "y": v&2 != 0, "cin": v&4 != 0}
		vals, err := c.Simulate(in)
		if err != nil {
			t.Fatal(err)
		}
		sum := bits.OnesCount(uint(v))
		if vals["s"] != (sum&1 != 0) || vals["c"] != (sum >= 2) {
			t.Errorf("v=%d: s=%v c=%v", v, vals["s"], vals["c"])
		}
	}
}

func TestAdder(t *testing.T) {
	const w = 3
	c := Adder(w)
	for a := 0; a < 1<<w; a++ {
		for b := 0; b < 1<<w; b++ {
			in := map[string]bool{}
			for i := 0; i < w; i++ {
				in[fmt.Sprintf("a_%d", i)] = a&(1<<i) != 0
				in[fmt.Sprintf("b_%d", i)] = b&(1<<i) != 0
			}
			vals, err := c.Simulate(in)
			if err != nil {
				t.Fatal(err)
			}
			got := 0
			for i := 0; i <= w; i++ {
				if vals[fmt.Sprintf("out_%d", i)] {
					got |= 1 << i
				}
			}
			if got != a+b {
				t.Errorf("%d+%d = %d", a, b, got)
			}
		}
	}
}

func TestMux(t *testing.T) {
	const w = 5
	c := Mux(w)
	for sel := 0; sel < w; sel++ {
		for v := 0; v < 1<<w; v++ {
			in := map[string]bool{}
			for i := 0; i < w; i++ {
				in[fmt.Sprintf("in_%d", i)] = v&(1<<i) != 0
			}
			for j := 0; j < 3; j++ {
				in[fmt.Sprintf("sel_%d", j)] = sel&(1<<j) != 0
			}
			vals, err := c.Simulate(in)
			if err != nil {
				t.Fatal(err)
			}
			if vals["out"] != (v&(1<<sel) != 0) {
				t.Errorf("sel=%d v=%05b out=%v", sel, v, vals["out"])
			}
		}
	}
}

func TestPopCount(t *testing.T) {
	for _, w := range []int{1, 2, 3, 4, 5, 7} {
		c := PopCount(w)
		outBits := len(c.Outputs())
		for v := 0; v < 1<<w; v++ {
			in := map[string]bool{}
			for i := 0; i < w; i++ {
				in[fmt.Sprintf("in_%d", i)] = v&(1<<i) != 0
			}
			vals, err := c.Simulate(in)
			if err != nil {
				t.Fatal(err)
			}
			got := 0
			for i := 0; i < outBits; i++ {
				if vals[fmt.Sprintf("out_%d", i)] {
					got |= 1 << i
				}
			}
			if got != bits.OnesCount(uint(v)) {
				t.Errorf("w=%d v=%b count=%d", w, v, got)
			}
		}
	}
}
