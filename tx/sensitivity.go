// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/internal/bitutil"
	"github.com/circuitgraph/circuitgraph/logic"
)

// SensitivityTransform builds the sensitivity-counting circuit for n.
// It instantiates n's fanin cone once unmodified (orig_ prefix) and once
// per startpoint s with only s inverted (inv_<s>_ prefix), XOR-compares
// each inverted copy against the original into dif_out_<s>, and sums the
// comparison bits with a popcount into the output bus sen_out_0 ...
// (low bit first).  Under a fixed startpoint assignment the bus reads
// the number of startpoints whose individual flip changes n.
func SensitivityTransform(c *circuit.Circuit, n string) (*circuit.Circuit, error) {
	sps, err := c.Startpoints(n)
	if err != nil {
		return nil, err
	}
	if len(sps) == 0 {
		return nil, errors.Errorf("tx: %q has no startpoints", n)
	}
	cone, err := Cone(c, n)
	if err != nil {
		return nil, err
	}
	for _, o := range cone.Outputs() {
		if err := cone.SetOutput(o, false); err != nil {
			return nil, err
		}
	}
	if err := cone.SetOutput(n, true); err != nil {
		return nil, err
	}

	s := circuit.New(c.Name() + "_sensitivity_" + n)
	conns := make(map[string]string, len(sps))
	for _, sp := range sps {
		if _, err := s.Add(sp, circuit.Input); err != nil {
			return nil, err
		}
		conns[sp] = sp
	}
	if _, err := s.AddSubcircuit(cone, "orig", conns); err != nil {
		return nil, err
	}

	for _, sp := range sps {
		prefix := "inv_" + sp
		if _, err := s.AddSubcircuit(cone, prefix, nil); err != nil {
			return nil, err
		}
		// wire the copy to the shared inputs, inverting only sp
		for _, sp2 := range sps {
			copyIn := prefix + "_" + sp2
			if sp2 == sp {
				if err := s.SetKind(copyIn, circuit.Not); err != nil {
					return nil, err
				}
			}
			if err := s.Connect(sp2, copyIn); err != nil {
				return nil, err
			}
		}
		if _, err := s.Add("dif_out_"+sp, circuit.Xor,
			circuit.WithFanin("orig_"+n, prefix+"_"+n), circuit.AsOutput()); err != nil {
			return nil, err
		}
	}

	pc := logic.PopCount(len(sps))
	pcConns := make(map[string]string, len(sps))
	for i, sp := range sps {
		pcConns[fmt.Sprintf("in_%d", i)] = "dif_out_" + sp
	}
	mapping, err := s.AddSubcircuit(pc, "pc", pcConns)
	if err != nil {
		return nil, err
	}
	for i := 0; i < bitutil.Clog2(len(sps)+1); i++ {
		if _, err := s.Add(fmt.Sprintf("sen_out_%d", i), circuit.Buf,
			circuit.WithFanin(mapping[fmt.Sprintf("out_%d", i)]), circuit.AsOutput()); err != nil {
			return nil, err
		}
	}
	return s, nil
}
