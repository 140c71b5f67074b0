// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// SensitizationTransform builds the fault-propagation circuit for n: a
// self-miter of the cone between n's endpoints and their fanin, with n
// forced to its complement in the c1 copy.  The output "sat" is true
// exactly when some input assignment propagates a flip at n to an
// observable output.  Extra endpoints restrict observation to a subset.
func SensitizationTransform(c *circuit.Circuit, n string, endpoints ...string) (*circuit.Circuit, error) {
	if !c.Has(n) {
		return nil, errors.Errorf("tx: no node %q", n)
	}
	eps := endpoints
	if len(eps) == 0 {
		var err error
		eps, err = c.Endpoints(n)
		if err != nil {
			return nil, err
		}
		if len(eps) == 0 {
			return nil, errors.Errorf("tx: %q reaches no endpoint", n)
		}
	}
	fi, err := c.TransitiveFanin(eps...)
	if err != nil {
		return nil, err
	}
	nodes := append(fi, eps...)
	sub, err := Subcircuit(c, nodes)
	if err != nil {
		return nil, err
	}
	// observation points of the miter are the chosen endpoints only
	for _, o := range sub.Outputs() {
		if err := sub.SetOutput(o, false); err != nil {
			return nil, err
		}
	}
	for _, ep := range eps {
		if err := sub.SetOutput(ep, true); err != nil {
			return nil, err
		}
	}
	m, err := Miter(sub, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	m.SetName(c.Name() + "_sensitization_" + n)

	// flip n in the c1 copy by rewiring it to invert the c0 value
	c1n := "c1_" + n
	fis, err := m.Fanin(c1n)
	if err != nil {
		return nil, errors.Wrapf(err, "tx: fault site %q not in the miter", n)
	}
	for _, f := range fis {
		if err := m.Disconnect(f, c1n); err != nil {
			return nil, err
		}
	}
	if err := m.SetKind(c1n, circuit.Not); err != nil {
		return nil, err
	}
	if err := m.Connect("c0_"+n, c1n); err != nil {
		return nil, err
	}
	return m, nil
}
