// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package logic builds small reusable circuits (adders, muxes,
// popcount) used as subcircuits by the transform engine.
package logic

import (
	"fmt"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/internal/bitutil"
)

// HalfAdder returns a half adder with inputs x, y and outputs c, s.
func HalfAdder() *circuit.Circuit {
	c := circuit.New("half_adder")
	c.MustAdd("x", circuit.Input)
	c.MustAdd("y", circuit.Input)
	c.MustAdd("s", circuit.Xor, circuit.WithFanin("x", "y"), circuit.AsOutput())
	c.MustAdd("c", circuit.And, circuit.WithFanin("x", "y"), circuit.AsOutput())
	return c
}

// FullAdder returns a full adder with inputs x, y, cin and outputs c, s.
func FullAdder() *circuit.Circuit {
	c := circuit.New("full_adder")
	c.MustAdd("x", circuit.Input)
	c.MustAdd("y", circuit.Input)
	c.MustAdd("cin", circuit.Input)
	c.MustAdd("s", circuit.Xor, circuit.WithFanin("x", "y", "cin"), circuit.AsOutput())
	c.MustAdd("xy", circuit.And, circuit.WithFanin("x", "y"))
	c.MustAdd("xxy", circuit.Xor, circuit.WithFanin("x", "y"))
	c.MustAdd("t", circuit.And, circuit.WithFanin("xxy", "cin"))
	c.MustAdd("c", circuit.Or, circuit.WithFanin("xy", "t"), circuit.AsOutput())
	return c
}

// Adder returns a ripple-carry adder of the given width with inputs
// a_i, b_i and outputs out_0 .. out_width, the top bit being the carry.
func Adder(width int) *circuit.Circuit {
	if width < 1 {
		panic(fmt.Sprintf("logic: adder width %d", width))
	}
	c := circuit.New("adder")
	carry := ""
	for i := 0; i < width; i++ {
		a := c.MustAdd(fmt.Sprintf("a_%d", i), circuit.Input)
		b := c.MustAdd(fmt.Sprintf("b_%d", i), circuit.Input)
		out := fmt.Sprintf("out_%d", i)
		if i == 0 {
			c.MustAdd(out, circuit.Xor, circuit.WithFanin(a, b), circuit.AsOutput())
			carry = c.MustAdd("carry_0", circuit.And, circuit.WithFanin(a, b))
			continue
		}
		axb := c.MustAdd(fmt.Sprintf("axb_%d", i), circuit.Xor, circuit.WithFanin(a, b))
		c.MustAdd(out, circuit.Xor, circuit.WithFanin(axb, carry), circuit.AsOutput())
		gen := c.MustAdd(fmt.Sprintf("gen_%d", i), circuit.And, circuit.WithFanin(a, b))
		prop := c.MustAdd(fmt.Sprintf("prop_%d", i), circuit.And, circuit.WithFanin(axb, carry))
		carry = c.MustAdd(fmt.Sprintf("carry_%d", i), circuit.Or, circuit.WithFanin(gen, prop))
	}
	c.MustAdd(fmt.Sprintf("out_%d", width), circuit.Buf, circuit.WithFanin(carry), circuit.AsOutput())
	return c
}

// Mux returns a one-hot-free multiplexer over width data inputs in_i
// with select bus sel_0 .. (low bit first) and single output out.
func Mux(width int) *circuit.Circuit {
	if width < 2 {
		panic(fmt.Sprintf("logic: mux width %d", width))
	}
	c := circuit.New("mux")
	sels := bitutil.Clog2(width)
	for i := 0; i < width; i++ {
		c.MustAdd(fmt.Sprintf("in_%d", i), circuit.Input)
	}
	for j := 0; j < sels; j++ {
		s := c.MustAdd(fmt.Sprintf("sel_%d", j), circuit.Input)
		c.MustAdd(fmt.Sprintf("nsel_%d", j), circuit.Not, circuit.WithFanin(s))
	}
	var terms []string
	for i := 0; i < width; i++ {
		fanin := []string{fmt.Sprintf("in_%d", i)}
		for j := 0; j < sels; j++ {
			if i&(1<<j) != 0 {
				fanin = append(fanin, fmt.Sprintf("sel_%d", j))
			} else {
				fanin = append(fanin, fmt.Sprintf("nsel_%d", j))
			}
		}
		terms = append(terms, c.MustAdd(fmt.Sprintf("term_%d", i), circuit.And, circuit.WithFanin(fanin...)))
	}
	c.MustAdd("out", circuit.Or, circuit.WithFanin(terms...), circuit.AsOutput())
	return c
}

// PopCount returns a circuit counting set bits of in_0 .. in_{width-1}
// into the binary bus out_0 .. (low bit first, clog2(width+1) bits).
func PopCount(width int) *circuit.Circuit {
	if width < 1 {
		panic(fmt.Sprintf("logic: popcount width %d", width))
	}
	c := circuit.New("popcount")
	tie0 := c.MustAdd("tie0", circuit.Zero)
	buses := make([][]string, width)
	for i := 0; i < width; i++ {
		buses[i] = []string{c.MustAdd(fmt.Sprintf("in_%d", i), circuit.Input)}
	}
	// adder tree: pair buses until one remains
	instance := 0
	for len(buses) > 1 {
		var next [][]string
		for len(buses) > 1 {
			p0, p1 := buses[0], buses[1]
			buses = buses[2:]
			w := len(p0)
			if len(p1) > w {
				w = len(p1)
			}
			conns := make(map[string]string, 2*w)
			for i := 0; i < w; i++ {
				conns[fmt.Sprintf("a_%d", i)] = busBit(p0, i, tie0)
				conns[fmt.Sprintf("b_%d", i)] = busBit(p1, i, tie0)
			}
			prefix := fmt.Sprintf("add_%d", instance)
			instance++
			mapping, err := c.AddSubcircuit(Adder(w), prefix, conns)
			if err != nil {
				panic(err)
			}
			sum := make([]string, w+1)
			for i := 0; i <= w; i++ {
				sum[i] = mapping[fmt.Sprintf("out_%d", i)]
			}
			next = append(next, sum)
		}
		if len(buses) == 1 {
			next = append(next, buses[0])
		}
		buses = next
	}
	out := buses[0]
	for i := 0; i < bitutil.Clog2(width+1); i++ {
		c.MustAdd(fmt.Sprintf("out_%d", i), circuit.Buf,
			circuit.WithFanin(busBit(out, i, tie0)), circuit.AsOutput())
	}
	c.RemoveUnloaded(false)
	return c
}

func busBit(bus []string, i int, pad string) string {
	if i < len(bus) {
		return bus[i]
	}
	return pad
}
