// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// decomposition kind for gates whose semantics fold associatively only
// through an inner gate (nand = not of and tree, etc.)
var innerKind = map[circuit.Kind]circuit.Kind{
	circuit.And:  circuit.And,
	circuit.Nand: circuit.And,
	circuit.Or:   circuit.Or,
	circuit.Nor:  circuit.Or,
	circuit.Xor:  circuit.Xor,
	circuit.Xnor: circuit.Xor,
}

// LimitFanin returns a copy of c in which no gate has more than k
// drivers, splitting wide gates into trees of the matching associative
// kind.  k must be at least 2.
func LimitFanin(c *circuit.Circuit, k int) (*circuit.Circuit, error) {
	if k < 2 {
		return nil, errors.Errorf("tx: fanin limit %d", k)
	}
	cp := c.Copy()
	for _, n := range cp.Nodes() {
		kind, _ := cp.KindOf(n)
		inner, ok := innerKind[kind]
		if !ok {
			continue
		}
		for {
			fi, err := cp.Fanin(n)
			if err != nil {
				return nil, err
			}
			if len(fi) <= k {
				break
			}
			sort.Strings(fi)
			grp := fi[:k]
			t, err := cp.Add(n+"_lim", inner, circuit.WithUID(), circuit.WithFanin(grp...))
			if err != nil {
				return nil, err
			}
			for _, f := range grp {
				if err := cp.Disconnect(f, n); err != nil {
					return nil, err
				}
			}
			if err := cp.Connect(t, n); err != nil {
				return nil, err
			}
		}
	}
	return cp, nil
}

// LimitFanout returns a copy of c in which no node drives more than k
// loads, inserting buffer trees.  k must be at least 2.
func LimitFanout(c *circuit.Circuit, k int) (*circuit.Circuit, error) {
	if k < 2 {
		return nil, errors.Errorf("tx: fanout limit %d", k)
	}
	cp := c.Copy()
	for _, n := range cp.Nodes() {
		if kind, _ := cp.KindOf(n); kind == circuit.BBOutput {
			continue // pins already drive a single buf
		}
		for {
			fo, err := cp.Fanout(n)
			if err != nil {
				return nil, err
			}
			if len(fo) <= k {
				break
			}
			sort.Strings(fo)
			grp := fo[:k]
			t, err := cp.Add(n+"_fan", circuit.Buf, circuit.WithUID(), circuit.WithFanin(n))
			if err != nil {
				return nil, err
			}
			for _, f := range grp {
				if err := cp.Disconnect(n, f); err != nil {
					return nil, err
				}
				if err := cp.Connect(t, f); err != nil {
					return nil, err
				}
			}
		}
	}
	return cp, nil
}
