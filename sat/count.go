// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package sat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/irifrance/gini/z"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// ModelCount counts the assignments of the circuit's startpoints that
// satisfy the assumptions, by enumeration with blocking clauses.  Every
// non-startpoint node is a function of the startpoints, so the
// projected count equals the model count.
func ModelCount(c *circuit.Circuit, assumptions map[string]bool, opts ...Option) (uint64, error) {
	o := buildOptions(opts)
	enc, err := NewEncoder(c)
	if err != nil {
		return 0, err
	}
	sps, err := c.Startpoints()
	if err != nil {
		return 0, err
	}
	spLits := make([]z.Lit, len(sps))
	for i, sp := range sps {
		if spLits[i], err = enc.Lit(sp); err != nil {
			return 0, err
		}
	}
	s := o.newS()
	if err := enc.Load(s); err != nil {
		return 0, err
	}
	dl := newDeadline(o.timeout)
	var count uint64
	for {
		// gini consumes assumptions on every solve
		if err := assume(s, enc, assumptions); err != nil {
			return 0, err
		}
		switch dl.solve(s) {
		case -1:
			return count, nil
		case 0:
			return 0, &SolverError{
				Op:  "count",
				Msg: fmt.Sprintf("%q undetermined after %s", c.Name(), o.timeout),
			}
		}
		count++
		for _, m := range spLits {
			if s.Value(m) {
				m = m.Not()
			}
			s.Add(m)
		}
		s.Add(z.LitNull)
	}
}

// Counter approximates the model count of a DIMACS formula projected
// onto the sampling set named by its "c ind" lines.
type Counter interface {
	Count(ctx context.Context, cnf string) (uint64, error)
}

// ApproxMC drives an approxmc binary over stdin and reads the count
// from its "s mc <n>" line.
type ApproxMC struct {
	// Bin overrides the binary name, default "approxmc".
	Bin string
	// Epsilon and Delta set the tolerance and confidence parameters
	// when positive; otherwise the tool defaults apply.
	Epsilon float64
	Delta   float64
}

func (a ApproxMC) Count(ctx context.Context, cnf string) (uint64, error) {
	bin := a.Bin
	if bin == "" {
		bin = "approxmc"
	}
	var args []string
	if a.Epsilon > 0 {
		args = append(args, fmt.Sprintf("--epsilon=%g", a.Epsilon))
	}
	if a.Delta > 0 {
		args = append(args, fmt.Sprintf("--delta=%g", a.Delta))
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(cnf)
	// approxmc signals the result through exit codes, so inspect the
	// output before the error
	out, err := cmd.Output()
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var n uint64
		if _, e := fmt.Sscanf(sc.Text(), "s mc %d", &n); e == nil {
			return n, nil
		}
	}
	if err != nil {
		return 0, &SolverError{Op: bin, Msg: err.Error()}
	}
	return 0, &SolverError{Op: bin, Msg: "no count in output"}
}

// ApproxModelCount approximates the number of startpoint assignments
// satisfying the assumptions.  The formula ships to the counter as
// DIMACS with the startpoint variables as the sampling set and the
// assumptions as unit clauses.
func ApproxModelCount(ctx context.Context, c *circuit.Circuit, assumptions map[string]bool, ctr Counter) (uint64, error) {
	enc, err := NewEncoder(c)
	if err != nil {
		return 0, err
	}
	sps, err := c.Startpoints()
	if err != nil {
		return 0, err
	}
	cnf, err := dimacs(enc, sps, assumptions)
	if err != nil {
		return 0, err
	}
	return ctr.Count(ctx, cnf)
}

// dimacs renders the encoding with "c ind" sampling-set lines in
// groups of ten variables, the convention projected counters read.
func dimacs(enc *Encoder, sampling []string, assumptions map[string]bool) (string, error) {
	var b strings.Builder
	for i := 0; i < len(sampling); i += 10 {
		b.WriteString("c ind")
		for j := i; j < i+10 && j < len(sampling); j++ {
			m, err := enc.Lit(sampling[j])
			if err != nil {
				return "", err
			}
			b.WriteByte(' ')
			b.WriteString(strconv.Itoa(m.Dimacs()))
		}
		b.WriteString(" 0\n")
	}
	units := make([]z.Lit, 0, len(assumptions))
	for n, v := range assumptions {
		m, err := enc.Lit(n)
		if err != nil {
			return "", err
		}
		if !v {
			m = m.Not()
		}
		units = append(units, m)
	}
	fmt.Fprintf(&b, "p cnf %d %d\n", enc.MaxVar(), len(enc.clauses)+len(units))
	for _, m := range units {
		fmt.Fprintf(&b, "%d 0\n", m.Dimacs())
	}
	for _, cls := range enc.clauses {
		for _, m := range cls {
			b.WriteString(strconv.Itoa(m.Dimacs()))
			b.WriteByte(' ')
		}
		b.WriteString("0\n")
	}
	return b.String(), nil
}
