// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// Miter builds the difference circuit of c0 and c1: both circuits are
// instantiated with prefixes c0_ and c1_, the given startpoints are tied
// to one shared set of inputs, corresponding endpoints are XOR-compared,
// and the comparisons are OR-ed into the single output "sat".  Nil
// startpoints or endpoints default to the names common to both
// circuits; startpoints left untied stay free inputs of their copy.
// Passing c1 == nil miters c0 against itself, the base of the fault
// transforms.  Neither circuit may contain blackboxes.
func Miter(c0, c1 *circuit.Circuit, startpoints, endpoints []string) (*circuit.Circuit, error) {
	if len(c0.Blackboxes()) > 0 {
		return nil, errors.Errorf("tx: %q contains a blackbox", c0.Name())
	}
	if c1 != nil && len(c1.Blackboxes()) > 0 {
		return nil, errors.Errorf("tx: %q contains a blackbox", c1.Name())
	}
	if c1 == nil {
		c1 = c0
	}
	sp0, err := c0.Startpoints()
	if err != nil {
		return nil, err
	}
	sp1, err := c1.Startpoints()
	if err != nil {
		return nil, err
	}
	if startpoints == nil {
		startpoints = intersect(sp0, sp1)
	} else {
		for _, sp := range startpoints {
			if !contains(sp0, sp) || !contains(sp1, sp) {
				return nil, errors.Errorf("tx: %q is not a startpoint of both circuits", sp)
			}
		}
	}
	if endpoints == nil {
		endpoints = intersect(c0.Outputs(), c1.Outputs())
	} else {
		for _, ep := range endpoints {
			if !c0.Has(ep) || !c1.Has(ep) {
				return nil, errors.Errorf("tx: %q is not in both circuits", ep)
			}
		}
	}
	if len(endpoints) == 0 {
		return nil, errors.New("tx: miter needs at least one endpoint")
	}

	m := circuit.New("miter_" + c0.Name() + "_" + c1.Name())
	shared := make(map[string]bool, len(startpoints))
	conns := make(map[string]string, len(startpoints))
	for _, sp := range startpoints {
		if _, err := m.Add(sp, circuit.Input); err != nil {
			return nil, err
		}
		shared[sp] = true
		conns[sp] = sp
	}
	if err := addCopy(m, c0, "c0", sp0, shared, conns); err != nil {
		return nil, err
	}
	if err := addCopy(m, c1, "c1", sp1, shared, conns); err != nil {
		return nil, err
	}
	if _, err := m.Add("sat", circuit.Or, circuit.AsOutput()); err != nil {
		return nil, err
	}
	for _, ep := range endpoints {
		if _, err := m.Add("dif_"+ep, circuit.Xor,
			circuit.WithFanin("c0_"+ep, "c1_"+ep), circuit.WithFanout("sat")); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// addCopy instantiates one side of the miter, restoring the untied
// startpoints to free inputs.
func addCopy(m, c *circuit.Circuit, prefix string, sps []string, shared map[string]bool, conns map[string]string) error {
	cc := make(map[string]string, len(conns))
	for sp, n := range conns {
		if contains(sps, sp) {
			cc[sp] = n
		}
	}
	if _, err := m.AddSubcircuit(c, prefix, cc); err != nil {
		return err
	}
	for _, sp := range sps {
		if !shared[sp] {
			if err := m.SetKind(prefix+"_"+sp, circuit.Input); err != nil {
				return err
			}
		}
	}
	return nil
}

func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if in[n] {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func contains(ns []string, n string) bool {
	for _, m := range ns {
		if m == n {
			return true
		}
	}
	return false
}
