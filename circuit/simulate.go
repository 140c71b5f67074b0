// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

// Simulate evaluates the circuit under the given input assignment and
// returns the value of every node.  All inputs must be assigned, the
// circuit must pass Lint, and it must contain no blackboxes or x
// constants, since neither has defined combinational behavior.
func (c *Circuit) Simulate(inputs map[string]bool) (map[string]bool, error) {
	if len(c.blackboxes) > 0 {
		return nil, structErrf("simulate", "", "circuit contains blackboxes")
	}
	if err := c.Lint(); err != nil {
		return nil, err
	}
	for n := range inputs {
		i, ok := c.idx(n)
		if !ok {
			return nil, structErrf("simulate", n, "node does not exist")
		}
		if c.nodes[i].kind != Input {
			return nil, structErrf("simulate", n, "assignment to non-input")
		}
	}
	vals := make(map[string]bool, len(c.index))
	for _, i := range c.topoIdx() {
		nd := &c.nodes[i]
		var v bool
		switch nd.kind {
		case Input:
			assigned, ok := inputs[nd.name]
			if !ok {
				return nil, structErrf("simulate", nd.name, "input is unassigned")
			}
			v = assigned
		case Zero:
			v = false
		case One:
			v = true
		case X:
			return nil, structErrf("simulate", nd.name, "x has no defined value")
		default:
			v = evalGate(nd.kind, c.gateIn(nd, vals))
		}
		vals[nd.name] = v
	}
	return vals, nil
}

func (c *Circuit) gateIn(nd *node, vals map[string]bool) []bool {
	in := make([]bool, len(nd.fanin))
	for i, f := range nd.fanin {
		in[i] = vals[c.nodes[f].name]
	}
	return in
}

func evalGate(k Kind, in []bool) bool {
	switch k {
	case Buf:
		return in[0]
	case Not:
		return !in[0]
	case And, Nand:
		v := true
		for _, b := range in {
			v = v && b
		}
		if k == Nand {
			return !v
		}
		return v
	case Or, Nor:
		v := false
		for _, b := range in {
			v = v || b
		}
		if k == Nor {
			return !v
		}
		return v
	case Xor, Xnor:
		v := false
		for _, b := range in {
			v = v != b
		}
		if k == Xnor {
			return !v
		}
		return v
	}
	return false
}
