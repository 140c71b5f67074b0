// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package props answers Boolean property queries about circuit nodes
// (sensitization, sensitivity, influence, signal probability) by
// handing transformed circuits to the sat package.
package props

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/internal/bitutil"
	"github.com/circuitgraph/circuitgraph/sat"
	"github.com/circuitgraph/circuitgraph/tx"
)

type options struct {
	sat     []sat.Option
	counter sat.Counter
}

// Option configures a property query.
type Option func(*options)

// WithSatOptions forwards options to every solver call of the query.
func WithSatOptions(opts ...sat.Option) Option {
	return func(o *options) { o.sat = opts }
}

// WithCounter switches model counting from exact enumeration to the
// given approximate counter.
func WithCounter(ctr sat.Counter) Option {
	return func(o *options) { o.counter = ctr }
}

func buildOptions(opts []Option) options {
	var o options
	for _, f := range opts {
		f(&o)
	}
	return o
}

func (o options) count(ctx context.Context, c *circuit.Circuit, assumptions map[string]bool) (float64, error) {
	if o.counter != nil {
		n, err := sat.ApproxModelCount(ctx, c, assumptions, o.counter)
		return float64(n), err
	}
	n, err := sat.ModelCount(c, assumptions, o.sat...)
	return float64(n), err
}

// Sensitize finds a startpoint assignment under which a flip of n is
// visible at an endpoint, subject to the assumptions.  Assumption keys
// name nodes of c; the returned assignment uses the original startpoint
// names.  It returns nil when no such assignment exists.
func Sensitize(c *circuit.Circuit, n string, assumptions map[string]bool, opts ...Option) (map[string]bool, error) {
	o := buildOptions(opts)
	s, err := tx.SensitizationTransform(c, n)
	if err != nil {
		return nil, err
	}
	assume := map[string]bool{"sat": true}
	for k, v := range assumptions {
		switch {
		case s.Has(k):
			assume[k] = v
		case s.Has("c0_" + k):
			// non-startpoint nodes appear in the unmodified copy
			assume["c0_"+k] = v
		default:
			return nil, errors.Errorf("props: no node %q to assume", k)
		}
	}
	model, err := sat.Solve(s, assume, o.sat...)
	if err != nil || model == nil {
		return nil, err
	}
	sps, err := s.Startpoints()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(sps))
	for _, sp := range sps {
		out[sp] = model[sp]
	}
	return out, nil
}

// Sensitivity returns the largest number of startpoints of n whose
// individual flips change n under a single assignment.  Counts are
// tested downward from the number of startpoints, so the first
// satisfiable count is the maximum.
func Sensitivity(c *circuit.Circuit, n string, opts ...Option) (int, error) {
	o := buildOptions(opts)
	sps, err := c.Startpoints(n)
	if err != nil {
		return 0, err
	}
	for _, sp := range sps {
		if sp == n {
			return 1, nil
		}
	}
	s, err := tx.SensitivityTransform(c, n)
	if err != nil {
		return 0, err
	}
	// one encoding serves the whole downward search
	slv, err := sat.NewSolver(s, o.sat...)
	if err != nil {
		return 0, err
	}
	width := bitutil.Clog2(len(sps) + 1)
	for k := len(sps); k > 0; k-- {
		bits := bitutil.IntToBin(k, width)
		assume := make(map[string]bool, width)
		for i := 0; i < width; i++ {
			assume[fmt.Sprintf("sen_out_%d", i)] = bits[width-1-i]
		}
		model, err := slv.Solve(assume)
		if err != nil {
			return 0, err
		}
		if model != nil {
			return k, nil
		}
	}
	return 0, nil
}

// Influence returns the probability that a flip of startpoint s changes
// n, over uniform startpoint assignments.
func Influence(ctx context.Context, c *circuit.Circuit, n, s string, opts ...Option) (float64, error) {
	o := buildOptions(opts)
	infl, err := tx.InfluenceTransform(c, n, s)
	if err != nil {
		return 0, err
	}
	cnt, err := o.count(ctx, infl, map[string]bool{"sat": true})
	if err != nil {
		return 0, err
	}
	sps, err := infl.Startpoints()
	if err != nil {
		return 0, err
	}
	return cnt / math.Exp2(float64(len(sps))), nil
}

// AvgSensitivity returns the expected sensitivity of n over uniform
// startpoint assignments, the sum of the startpoint influences.  The
// per-startpoint counts run concurrently.
func AvgSensitivity(ctx context.Context, c *circuit.Circuit, n string, opts ...Option) (float64, error) {
	sps, err := c.Startpoints(n)
	if err != nil {
		return 0, err
	}
	infls := make([]float64, len(sps))
	g, ctx := errgroup.WithContext(ctx)
	for i, sp := range sps {
		i, sp := i, sp
		g.Go(func() error {
			v, err := Influence(ctx, c, n, sp, opts...)
			if err != nil {
				return err
			}
			infls[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	total := 0.0
	for _, v := range infls {
		total += v
	}
	return total, nil
}

// SignalProbability returns the probability that n is true over uniform
// assignments of its own startpoints.  Startpoints outside n's fanin
// are pinned so the count ranges over n's input space only.
func SignalProbability(ctx context.Context, c *circuit.Circuit, n string, opts ...Option) (float64, error) {
	o := buildOptions(opts)
	spn, err := c.Startpoints(n)
	if err != nil {
		return 0, err
	}
	all, err := c.Startpoints()
	if err != nil {
		return 0, err
	}
	inCone := make(map[string]bool, len(spn))
	for _, sp := range spn {
		inCone[sp] = true
	}
	assume := map[string]bool{n: true}
	for _, sp := range all {
		if !inCone[sp] {
			assume[sp] = false
		}
	}
	cnt, err := o.count(ctx, c, assume)
	if err != nil {
		return 0, err
	}
	return cnt / math.Exp2(float64(len(spn))), nil
}

// Levelize returns the logic level of every node, zero at startpoints
// and constants.
func Levelize(c *circuit.Circuit) (map[string]int, error) {
	if c.IsCyclic() {
		return nil, errors.Errorf("props: circuit %q is cyclic", c.Name())
	}
	return c.Levelize(), nil
}
