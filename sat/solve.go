// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package sat

import (
	"fmt"
	"sort"
	"time"

	"github.com/irifrance/gini"
	"github.com/irifrance/gini/inter"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/logger"
)

type options struct {
	newS    func() inter.S
	timeout time.Duration
}

// Option configures a query.
type Option func(*options)

// WithSolver substitutes the solver factory, default gini.
func WithSolver(f func() inter.S) Option {
	return func(o *options) { o.newS = f }
}

// WithTimeout bounds the whole query.  An expired query returns an
// error, never a partial answer.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func buildOptions(opts []Option) options {
	o := options{newS: func() inter.S { return gini.New() }}
	for _, f := range opts {
		f(&o)
	}
	return o
}

// deadline tracks an optional query budget across repeated solves.
type deadline struct {
	at time.Time
}

func newDeadline(d time.Duration) deadline {
	if d <= 0 {
		return deadline{}
	}
	return deadline{at: time.Now().Add(d)}
}

// solve runs one solver call under the remaining budget and returns
// the gini result code: 1 sat, -1 unsat, 0 undetermined.
func (d deadline) solve(s inter.S) int {
	if d.at.IsZero() {
		return s.Solve()
	}
	rem := time.Until(d.at)
	if rem <= 0 {
		return 0
	}
	return s.GoSolve().Try(rem)
}

// Solver holds one encoding of a circuit loaded into one solver, so
// repeated queries with different assumptions solve incrementally
// instead of re-encoding.  The encoding errors out if the circuit
// mutates underneath it.
type Solver struct {
	enc *Encoder
	s   inter.S
	o   options
}

// NewSolver encodes c into a fresh solver.
func NewSolver(c *circuit.Circuit, opts ...Option) (*Solver, error) {
	o := buildOptions(opts)
	enc, err := NewEncoder(c)
	if err != nil {
		return nil, err
	}
	s := o.newS()
	if err := enc.Load(s); err != nil {
		return nil, err
	}
	return &Solver{enc: enc, s: s, o: o}, nil
}

// Solve decides whether the circuit admits an assignment consistent
// with the given node assumptions.  It returns a total model over all
// nodes when satisfiable and nil when not.
func (sl *Solver) Solve(assumptions map[string]bool) (map[string]bool, error) {
	if err := assume(sl.s, sl.enc, assumptions); err != nil {
		return nil, err
	}
	c := sl.enc.c
	start := time.Now()
	res := newDeadline(sl.o.timeout).solve(sl.s)
	log := logger.Logger()
	log.Debug().
		Str("circuit", c.Name()).
		Int("result", res).
		Dur("took", time.Since(start)).
		Msg("solve")
	switch res {
	case -1:
		return nil, nil
	case 0:
		return nil, &SolverError{
			Op:  "solve",
			Msg: fmt.Sprintf("%q undetermined after %s", c.Name(), sl.o.timeout),
		}
	}
	model := make(map[string]bool, c.Len())
	for _, n := range c.Nodes() {
		m, err := sl.enc.Lit(n)
		if err != nil {
			return nil, err
		}
		model[n] = sl.s.Value(m)
	}
	return model, nil
}

// Solve answers a single query about c; see Solver for repeated
// queries over one encoding.
func Solve(c *circuit.Circuit, assumptions map[string]bool, opts ...Option) (map[string]bool, error) {
	sl, err := NewSolver(c, opts...)
	if err != nil {
		return nil, err
	}
	return sl.Solve(assumptions)
}

func assume(s inter.S, enc *Encoder, assumptions map[string]bool) error {
	names := make([]string, 0, len(assumptions))
	for n := range assumptions {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		m, err := enc.Lit(n)
		if err != nil {
			return err
		}
		if !assumptions[n] {
			m = m.Not()
		}
		s.Assume(m)
	}
	return nil
}
