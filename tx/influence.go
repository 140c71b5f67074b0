// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// InfluenceTransform builds the influence circuit for node n and
// startpoint s: two copies of n's fanin cone share every startpoint
// except s, which is forced to constant 0 in the c0 copy and constant 1
// in the c1 copy; the output "sat" is the XOR of the two copies' n and
// is true exactly when flipping s changes n.  The startpoint s remains a
// free input of the result, so satisfying assignments pair up under a
// flip of s and model counts divide evenly by its two values.
func InfluenceTransform(c *circuit.Circuit, n, s string) (*circuit.Circuit, error) {
	sps, err := c.Startpoints(n)
	if err != nil {
		return nil, err
	}
	found := false
	for _, sp := range sps {
		if sp == s {
			found = true
			break
		}
	}
	if !found {
		return nil, errors.Errorf("tx: %q is not a startpoint of %q", s, n)
	}
	cone, err := Cone(c, n)
	if err != nil {
		return nil, err
	}

	infl := circuit.New(c.Name() + "_influence_" + n + "_" + s)
	conns := make(map[string]string, len(sps)-1)
	for _, sp := range sps {
		if _, err := infl.Add(sp, circuit.Input); err != nil {
			return nil, err
		}
		if sp != s {
			conns[sp] = sp
		}
	}
	if _, err := infl.AddSubcircuit(cone, "c0", conns); err != nil {
		return nil, err
	}
	if _, err := infl.AddSubcircuit(cone, "c1", conns); err != nil {
		return nil, err
	}
	if err := infl.SetKind("c0_"+s, circuit.Zero); err != nil {
		return nil, err
	}
	if err := infl.SetKind("c1_"+s, circuit.One); err != nil {
		return nil, err
	}
	if _, err := infl.Add("sat", circuit.Xor,
		circuit.WithFanin("c0_"+n, "c1_"+n), circuit.AsOutput()); err != nil {
		return nil, err
	}
	return infl, nil
}
