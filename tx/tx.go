// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package tx derives new circuits from existing ones.  Every transform
// reads its input circuit and returns a fresh, independent one; inputs
// are never mutated, so transforms compose and are safe to run
// concurrently over the same source circuit.
//
// Derived node naming is deterministic.  Copies carry fixed prefixes
// (c0_, c1_, orig_, inv_<s>_) so callers can map startpoint names in a
// derived circuit back to names in the original.
package tx

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// Subcircuit returns the subgraph of c induced by the given nodes,
// preserving kinds, output marks, and every edge whose endpoints are
// both in the set.  Blackbox output pins become inputs, since from
// inside the set they are free value sources; blackbox input pins have
// no meaning in isolation and are rejected.
func Subcircuit(c *circuit.Circuit, nodes []string) (*circuit.Circuit, error) {
	sub := circuit.New(c.Name())
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n] = true
	}
	sorted := append([]string(nil), nodes...)
	sort.Strings(sorted)
	for _, n := range sorted {
		if sub.Has(n) {
			continue
		}
		kind, err := c.KindOf(n)
		if err != nil {
			return nil, err
		}
		switch kind {
		case circuit.BBOutput:
			kind = circuit.Input
		case circuit.BBInput:
			return nil, errors.Errorf("tx: blackbox input pin %q in subcircuit", n)
		}
		out, _ := c.IsOutput(n)
		var opts []circuit.AddOption
		if out {
			opts = append(opts, circuit.AsOutput())
		}
		if _, err := sub.Add(n, kind, opts...); err != nil {
			return nil, err
		}
	}
	for _, e := range c.Edges() {
		if in[e[0]] && in[e[1]] {
			if err := sub.Connect(e[0], e[1]); err != nil {
				return nil, err
			}
		}
	}
	return sub, nil
}

// Cone returns the subcircuit spanned by n and its transitive fanin.
func Cone(c *circuit.Circuit, n string) (*circuit.Circuit, error) {
	fi, err := c.TransitiveFanin(n)
	if err != nil {
		return nil, err
	}
	return Subcircuit(c, append(fi, n))
}

// RelabelAll returns a copy of c with every node name rewritten.
func RelabelAll(c *circuit.Circuit, rename func(string) string) (*circuit.Circuit, error) {
	return c.CloneRenamed(rename)
}

// StripInputs returns a copy with every input converted to an undriven
// buffer.
func StripInputs(c *circuit.Circuit) (*circuit.Circuit, error) {
	cp := c.Copy()
	for _, n := range cp.Inputs() {
		if err := cp.SetKind(n, circuit.Buf); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// StripOutputs returns a copy with every output mark cleared.
func StripOutputs(c *circuit.Circuit) (*circuit.Circuit, error) {
	cp := c.Copy()
	for _, n := range cp.Outputs() {
		if err := cp.SetOutput(n, false); err != nil {
			return nil, err
		}
	}
	return cp, nil
}

// StripIO returns a copy with inputs converted to buffers and output
// marks cleared.
func StripIO(c *circuit.Circuit) (*circuit.Circuit, error) {
	cp, err := StripInputs(c)
	if err != nil {
		return nil, err
	}
	return StripOutputs(cp)
}

// StripBlackboxes returns a copy with every blackbox instance removed:
// each bb_input pin becomes a buffer of its driver and each bb_output
// pin becomes an input, with the "." in pin names rewritten to "_" so
// the result round-trips through the netlist writer unescaped.
func StripBlackboxes(c *circuit.Circuit) (*circuit.Circuit, error) {
	cp := circuit.New(c.Name())
	rename := func(n string) string { return strings.ReplaceAll(n, ".", "_") }
	for _, n := range c.Nodes() {
		kind, _ := c.KindOf(n)
		switch kind {
		case circuit.BBInput:
			kind = circuit.Buf
		case circuit.BBOutput:
			kind = circuit.Input
		}
		out, _ := c.IsOutput(n)
		var opts []circuit.AddOption
		if out {
			opts = append(opts, circuit.AsOutput())
		}
		if _, err := cp.Add(rename(n), kind, opts...); err != nil {
			return nil, err
		}
	}
	for _, e := range c.Edges() {
		if err := cp.Connect(rename(e[0]), rename(e[1])); err != nil {
			return nil, err
		}
	}
	return cp, nil
}
