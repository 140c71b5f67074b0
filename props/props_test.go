// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package props

import (
	"context"
	"math"
	"testing"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/logic"
)

func xor2() *circuit.Circuit {
	c := circuit.New("x2")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("o", circuit.Xor, circuit.WithFanin("a", "b"), circuit.AsOutput())
	return c
}

func TestSensitivityXor(t *testing.T) {
	got, err := Sensitivity(xor2(), "o")
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestSensitivityAnd(t *testing.T) {
	c := circuit.New("a3")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("c", circuit.Input)
	c.MustAdd("o", circuit.And, circuit.WithFanin("a", "b", "c"), circuit.AsOutput())
	// at the all-ones assignment every flip drops the and
	got, err := Sensitivity(c, "o")
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestSensitivityStartpoint(t *testing.T) {
	got, err := Sensitivity(xor2(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestSensitize(t *testing.T) {
	c := circuit.New("a2")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("o", circuit.And, circuit.WithFanin("a", "b"), circuit.AsOutput())

	// a flip of a reaches o only when b is true
	asg, err := Sensitize(c, "a", nil)
	if err != nil {
		t.Fatal(err)
	}
	if asg == nil || !asg["b"] {
		t.Errorf("got %v", asg)
	}
	asg, err = Sensitize(c, "a", map[string]bool{"b": false})
	if err != nil {
		t.Fatal(err)
	}
	if asg != nil {
		t.Errorf("got %v under blocking assumption", asg)
	}
}

func TestInfluence(t *testing.T) {
	c := circuit.New("a2")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("o", circuit.And, circuit.WithFanin("a", "b"), circuit.AsOutput())

	got, err := Influence(context.Background(), c, "o", "a")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.5 {
		t.Errorf("got %v, want 0.5", got)
	}
}

func TestAvgSensitivity(t *testing.T) {
	for _, tc := range []struct {
		c    *circuit.Circuit
		n    string
		want float64
	}{
		{xor2(), "o", 2},
		{logic.FullAdder(), "s", 3},
	} {
		got, err := AvgSensitivity(context.Background(), tc.c, tc.n)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", tc.c.Name(), got, tc.want)
		}
	}
}

func TestSignalProbability(t *testing.T) {
	c := circuit.New("probs")
	c.MustAdd("i0", circuit.Input)
	c.MustAdd("i1", circuit.Input)
	c.MustAdd("g0", circuit.Or, circuit.WithFanin("i0", "i1"))
	c.MustAdd("g1", circuit.Not, circuit.WithFanin("g0"), circuit.AsOutput())

	ctx := context.Background()
	for n, want := range map[string]float64{"g0": 0.75, "g1": 0.25, "i0": 0.5} {
		got, err := SignalProbability(ctx, c, n)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: got %v, want %v", n, got, want)
		}
	}

	// the sum bit of an adder is unbiased
	got, err := SignalProbability(ctx, logic.Adder(2), "out_0")
	if err != nil {
		t.Fatal(err)
	}
	if got != 0.5 {
		t.Errorf("adder sum bit: got %v, want 0.5", got)
	}
}

func TestLevelize(t *testing.T) {
	c := circuit.New("lv")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("g0", circuit.And, circuit.WithFanin("a", "b"))
	c.MustAdd("g1", circuit.Not, circuit.WithFanin("g0"), circuit.AsOutput())
	levels, err := Levelize(c)
	if err != nil {
		t.Fatal(err)
	}
	if levels["a"] != 0 || levels["g0"] != 1 || levels["g1"] != 2 {
		t.Errorf("levels: %v", levels)
	}
}
