// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// Unroll expands a sequential circuit into a purely combinational one
// covering the given number of cycles.  Every blackbox instance must
// look like a flip-flop: one output pin Q and an input pin D (other
// input pins, such as clocks, are dropped).  Nodes of cycle i carry the
// suffix _cc<i>; the state inputs of cycle 0 remain free inputs, and
// each later cycle's state is tied to the previous cycle's D value.
func Unroll(c *circuit.Circuit, cycles int) (*circuit.Circuit, error) {
	if cycles < 1 {
		return nil, errors.Errorf("tx: unroll over %d cycles", cycles)
	}
	boxes := c.Blackboxes()
	type reg struct{ d, q string } // stripped-circuit names
	regs := make([]reg, 0, len(boxes))
	for _, inst := range c.BlackboxInstances() {
		bb := boxes[inst]
		if len(bb.Outputs()) != 1 {
			return nil, errors.Errorf("tx: instance %q is not a flip-flop", inst)
		}
		hasD := false
		for _, p := range bb.Inputs() {
			if p == "D" {
				hasD = true
			}
		}
		if !hasD {
			return nil, errors.Errorf("tx: instance %q has no D pin", inst)
		}
		regs = append(regs, reg{
			d: inst + "_D",
			q: inst + "_" + bb.Outputs()[0],
		})
	}
	flat, err := StripBlackboxes(c)
	if err != nil {
		return nil, err
	}
	// keep the next-state nets observable, then drop the clock plumbing,
	// which serves no combinational purpose
	for _, r := range regs {
		if err := flat.SetOutput(r.d, true); err != nil {
			return nil, err
		}
	}
	flat.RemoveUnloaded(true)

	u := circuit.New(fmt.Sprintf("%s_unrolled_%d", c.Name(), cycles))
	for i := 0; i < cycles; i++ {
		suffix := fmt.Sprintf("_cc%d", i)
		cp, err := flat.CloneRenamed(func(n string) string { return n + suffix })
		if err != nil {
			return nil, err
		}
		for _, n := range cp.Nodes() {
			kind, _ := cp.KindOf(n)
			out, _ := cp.IsOutput(n)
			var opts []circuit.AddOption
			if out {
				opts = append(opts, circuit.AsOutput())
			}
			if _, err := u.Add(n, kind, opts...); err != nil {
				return nil, err
			}
		}
		for _, e := range cp.Edges() {
			if err := u.Connect(e[0], e[1]); err != nil {
				return nil, err
			}
		}
		if i == 0 {
			continue
		}
		prev := fmt.Sprintf("_cc%d", i-1)
		for _, r := range regs {
			state := r.q + suffix
			if err := u.SetKind(state, circuit.Buf); err != nil {
				return nil, err
			}
			if err := u.Connect(r.d+prev, state); err != nil {
				return nil, err
			}
		}
	}
	return u, nil
}
