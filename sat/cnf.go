// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package sat

import (
	"github.com/irifrance/gini/inter"
	"github.com/irifrance/gini/z"
	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// Encoder holds the Tseitin encoding of a circuit.  Node variables are
// assigned in sorted node order starting at 1; chained xor gates take
// auxiliary variables above them.  The encoding is pinned to the
// circuit generation it was built from, so use after a mutation fails
// rather than answering for a stale formula.
type Encoder struct {
	c       *circuit.Circuit
	gen     uint64
	lits    map[string]z.Lit
	clauses [][]z.Lit
	maxVar  z.Var
}

// NewEncoder builds the encoding of c.  The circuit must lint clean
// and hold no x nodes.  Inputs and blackbox output pins become free
// variables; a blackbox input pin is constrained to its driver.
func NewEncoder(c *circuit.Circuit) (*Encoder, error) {
	if err := c.Lint(); err != nil {
		return nil, err
	}
	e := &Encoder{
		c:    c,
		gen:  c.Generation(),
		lits: make(map[string]z.Lit, c.Len()),
	}
	nodes := c.Nodes()
	for _, n := range nodes {
		kind, _ := c.KindOf(n)
		if kind == circuit.X {
			return nil, errors.Errorf("sat: node %q has unknown value", n)
		}
		e.lits[n] = e.fresh()
	}
	for _, n := range nodes {
		kind, _ := c.KindOf(n)
		g := e.lits[n]
		fi, _ := c.Fanin(n)
		ins := make([]z.Lit, len(fi))
		for i, f := range fi {
			ins[i] = e.lits[f]
		}
		switch kind {
		case circuit.Input, circuit.BBOutput:
		case circuit.Zero:
			e.clause(g.Not())
		case circuit.One:
			e.clause(g)
		case circuit.Buf, circuit.BBInput:
			if len(ins) == 1 {
				e.equiv(g, ins[0])
			}
		case circuit.Not:
			e.equiv(g, ins[0].Not())
		case circuit.And:
			e.andGate(g, ins)
		case circuit.Nand:
			e.andGate(g.Not(), ins)
		case circuit.Or:
			e.orGate(g, ins)
		case circuit.Nor:
			e.orGate(g.Not(), ins)
		case circuit.Xor:
			e.xorGate(g, ins)
		case circuit.Xnor:
			e.xorGate(g.Not(), ins)
		}
	}
	return e, nil
}

// Lit returns the solver literal carrying node n.
func (e *Encoder) Lit(n string) (z.Lit, error) {
	if err := e.stale(); err != nil {
		return z.LitNull, err
	}
	m, ok := e.lits[n]
	if !ok {
		return z.LitNull, errors.Errorf("sat: no node %q", n)
	}
	return m, nil
}

// MaxVar returns the largest variable of the encoding.
func (e *Encoder) MaxVar() z.Var { return e.maxVar }

// Load adds every clause of the encoding to dst.
func (e *Encoder) Load(dst inter.Adder) error {
	if err := e.stale(); err != nil {
		return err
	}
	for _, cls := range e.clauses {
		for _, m := range cls {
			dst.Add(m)
		}
		dst.Add(z.LitNull)
	}
	return nil
}

func (e *Encoder) stale() error {
	if e.gen != e.c.Generation() {
		return errors.New("sat: circuit changed since encoding")
	}
	return nil
}

func (e *Encoder) fresh() z.Lit {
	e.maxVar++
	return e.maxVar.Pos()
}

func (e *Encoder) clause(ms ...z.Lit) {
	e.clauses = append(e.clauses, ms)
}

func (e *Encoder) equiv(a, b z.Lit) {
	e.clause(a.Not(), b)
	e.clause(a, b.Not())
}

// andGate emits g <-> and(ins); callers encode nand by negating g.
func (e *Encoder) andGate(g z.Lit, ins []z.Lit) {
	long := make([]z.Lit, 0, len(ins)+1)
	long = append(long, g)
	for _, a := range ins {
		e.clause(g.Not(), a)
		long = append(long, a.Not())
	}
	e.clauses = append(e.clauses, long)
}

// orGate emits g <-> or(ins); callers encode nor by negating g.
func (e *Encoder) orGate(g z.Lit, ins []z.Lit) {
	long := make([]z.Lit, 0, len(ins)+1)
	long = append(long, g.Not())
	for _, a := range ins {
		e.clause(g, a.Not())
		long = append(long, a)
	}
	e.clauses = append(e.clauses, long)
}

// xorGate chains g <-> xor(ins) through fresh variables; callers encode
// xnor by negating g.
func (e *Encoder) xorGate(g z.Lit, ins []z.Lit) {
	cur := ins[0]
	if len(ins) == 1 {
		e.equiv(g, cur)
		return
	}
	for _, a := range ins[1 : len(ins)-1] {
		t := e.fresh()
		e.xor2(t, cur, a)
		cur = t
	}
	e.xor2(g, cur, ins[len(ins)-1])
}

// xor2 emits t <-> x xor y.
func (e *Encoder) xor2(t, x, y z.Lit) {
	e.clause(t.Not(), x, y)
	e.clause(t.Not(), x.Not(), y.Not())
	e.clause(t, x, y.Not())
	e.clause(t, x.Not(), y)
}
