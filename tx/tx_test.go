// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"fmt"
	"sort"
	"testing"

	"github.com/circuitgraph/circuitgraph/circuit"
)

func andOr() *circuit.Circuit {
	// out = (a & b) | (b & c), b reconverges at out
	c := circuit.New("andor")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("c", circuit.Input)
	c.MustAdd("t1", circuit.And, circuit.WithFanin("a", "b"))
	c.MustAdd("t2", circuit.And, circuit.WithFanin("b", "c"))
	c.MustAdd("out", circuit.Or, circuit.WithFanin("t1", "t2"), circuit.AsOutput())
	return c
}

func simAll(t *testing.T, c *circuit.Circuit, f func(in map[string]bool, vals map[string]bool)) {
	t.Helper()
	inputs := c.Inputs()
	for v := 0; v < 1<<len(inputs); v++ {
		in := map[string]bool{}
		for i, n := range inputs {
			in[n] = v&(1<<i) != 0
		}
		vals, err := c.Simulate(in)
		if err != nil {
			t.Fatal(err)
		}
		f(in, vals)
	}
}

func TestMiterEquivalent(t *testing.T) {
	c0 := andOr()
	// same function, different structure: b & (a | c)
	c1 := circuit.New("factored")
	c1.MustAdd("a", circuit.Input)
	c1.MustAdd("b", circuit.Input)
	c1.MustAdd("c", circuit.Input)
	c1.MustAdd("aoc", circuit.Or, circuit.WithFanin("a", "c"))
	c1.MustAdd("out", circuit.And, circuit.WithFanin("b", "aoc"), circuit.AsOutput())

	m, err := Miter(c0, c1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	simAll(t, m, func(in, vals map[string]bool) {
		if vals["sat"] {
			t.Errorf("equivalent circuits differ under %v", in)
		}
	})

	// miter does not touch its inputs
	if c0.Has("c0_out") || c1.Has("c1_out") {
		t.Error("miter mutated an input circuit")
	}
}

func TestMiterInequivalent(t *testing.T) {
	c0 := andOr()
	c1 := andOr()
	if err := c1.SetKind("out", circuit.And); err != nil {
		t.Fatal(err)
	}
	m, err := Miter(c0, c1, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	hit := false
	simAll(t, m, func(in, vals map[string]bool) {
		if vals["sat"] {
			hit = true
		}
	})
	if !hit {
		t.Error("inequivalent circuits never differ")
	}
}

func TestMiterSubsets(t *testing.T) {
	two := func() *circuit.Circuit {
		c := circuit.New("two")
		c.MustAdd("a", circuit.Input)
		c.MustAdd("b", circuit.Input)
		c.MustAdd("o1", circuit.And, circuit.WithFanin("a", "b"), circuit.AsOutput())
		c.MustAdd("o2", circuit.Or, circuit.WithFanin("a", "b"), circuit.AsOutput())
		return c
	}
	c0 := two()
	c1 := two()
	if err := c1.SetKind("o2", circuit.Xor); err != nil {
		t.Fatal(err)
	}

	// compared on o1 only, the circuits agree everywhere
	m, err := Miter(c0, c1, nil, []string{"o1"})
	if err != nil {
		t.Fatal(err)
	}
	simAll(t, m, func(in, vals map[string]bool) {
		if vals["sat"] {
			t.Errorf("o1 differs under %v", in)
		}
	})

	// an untied startpoint leaves one free input per copy
	m, err = Miter(c0, c0, []string{"a"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Inputs()) != 3 {
		t.Fatalf("inputs: %v", m.Inputs())
	}
	hit := false
	simAll(t, m, func(in, vals map[string]bool) {
		if vals["sat"] {
			hit = true
		}
	})
	if !hit {
		t.Error("copies with independent b never differ")
	}
}

func TestSensitizationTransform(t *testing.T) {
	c := andOr()
	m, err := SensitizationTransform(c, "t1")
	if err != nil {
		t.Fatal(err)
	}
	// a flip of t1 = a&b is visible at out exactly when t2 = b&c is 0
	simAll(t, m, func(in, vals map[string]bool) {
		want := !(in["b"] && in["c"])
		if vals["sat"] != want {
			t.Errorf("sat=%v under %v", vals["sat"], in)
		}
	})
}

func TestSensitivityTransformXor(t *testing.T) {
	c := circuit.New("x2")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("o", circuit.Xor, circuit.WithFanin("a", "b"), circuit.AsOutput())

	s, err := SensitivityTransform(c, "o")
	if err != nil {
		t.Fatal(err)
	}
	// flipping either input of a xor always flips it: the count reads 2
	simAll(t, s, func(in, vals map[string]bool) {
		if vals["sen_out_0"] || !vals["sen_out_1"] {
			t.Errorf("count != 2 under %v", in)
		}
	})
}

func TestSensitivityTransformAnd(t *testing.T) {
	c := circuit.New("a2")
	c.MustAdd("a", circuit.Input)
	c.MustAdd("b", circuit.Input)
	c.MustAdd("o", circuit.And, circuit.WithFanin("a", "b"), circuit.AsOutput())

	s, err := SensitivityTransform(c, "o")
	if err != nil {
		t.Fatal(err)
	}
	simAll(t, s, func(in, vals map[string]bool) {
		count := 0
		if vals["sen_out_0"] {
			count |= 1
		}
		if vals["sen_out_1"] {
			count |= 2
		}
		want := 0
		if in["a"] {
			want++
		}
		if in["b"] {
			want++
		}
		// for and: a flip of x matters iff the other input is 1
		if count != want {
			t.Errorf("count=%d under %v", count, in)
		}
	})
}

func TestInfluenceTransform(t *testing.T) {
	c := andOr()
	infl, err := InfluenceTransform(c, "out", "a")
	if err != nil {
		t.Fatal(err)
	}
	// flipping a matters iff b=1 and b&c=0, i.e. b && !c
	simAll(t, infl, func(in, vals map[string]bool) {
		want := in["b"] && !in["c"]
		if vals["sat"] != want {
			t.Errorf("sat=%v under %v", vals["sat"], in)
		}
		// flip-invariance in the free startpoint
		flipped := map[string]bool{}
		for k, v := range in {
			flipped[k] = v
		}
		flipped["a"] = !in["a"]
		fv, err := infl.Simulate(flipped)
		if err != nil {
			t.Fatal(err)
		}
		if fv["sat"] != vals["sat"] {
			t.Errorf("sat not invariant under a flip of the free startpoint")
		}
	})

	if _, err := InfluenceTransform(c, "out", "nope"); err == nil {
		t.Error("unknown startpoint accepted")
	}
}

func TestLimitFanin(t *testing.T) {
	c := circuit.New("wide")
	var fanin []string
	for i := 0; i < 7; i++ {
		fanin = append(fanin, c.MustAdd(fmt.Sprintf("i%d", i), circuit.Input))
	}
	c.MustAdd("o", circuit.Nand, circuit.WithFanin(fanin...), circuit.AsOutput())

	lim, err := LimitFanin(c, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range lim.Nodes() {
		if fi, _ := lim.Fanin(n); len(fi) > 2 {
			t.Errorf("node %s has fanin %d", n, len(fi))
		}
	}
	simAll(t, c, func(in, want map[string]bool) {
		got, err := lim.Simulate(in)
		if err != nil {
			t.Fatal(err)
		}
		if got["o"] != want["o"] {
			t.Errorf("function changed under %v", in)
		}
	})
}

func TestLimitFanout(t *testing.T) {
	c := circuit.New("fan")
	c.MustAdd("a", circuit.Input)
	for i := 0; i < 6; i++ {
		c.MustAdd(fmt.Sprintf("o%d", i), circuit.Not, circuit.WithFanin("a"), circuit.AsOutput())
	}
	lim, err := LimitFanout(c, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range lim.Nodes() {
		if fo, _ := lim.Fanout(n); len(fo) > 2 {
			t.Errorf("node %s has fanout %d", n, len(fo))
		}
	}
	simAll(t, c, func(in, want map[string]bool) {
		got, err := lim.Simulate(in)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 6; i++ {
			o := fmt.Sprintf("o%d", i)
			if got[o] != want[o] {
				t.Errorf("output %s changed under %v", o, in)
			}
		}
	})
}

func TestStripBlackboxes(t *testing.T) {
	c := circuit.New("seq")
	c.MustAdd("clk", circuit.Input)
	c.MustAdd("d", circuit.Input)
	c.MustAdd("q", circuit.Buf, circuit.AsOutput())
	ff := circuit.NewBlackBox("dff", []string{"CK", "D"}, []string{"Q"})
	if err := c.AddBlackbox("r0", ff, map[string]string{"CK": "clk", "D": "d", "Q": "q"}); err != nil {
		t.Fatal(err)
	}
	flat, err := StripBlackboxes(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(flat.Blackboxes()) != 0 {
		t.Error("blackboxes survived strip")
	}
	if k, _ := flat.KindOf("r0_Q"); k != circuit.Input {
		t.Errorf("stripped output pin kind: %v", k)
	}
	if k, _ := flat.KindOf("r0_D"); k != circuit.Buf {
		t.Errorf("stripped input pin kind: %v", k)
	}
	if c.Has("r0_Q") {
		t.Error("strip mutated its input")
	}
}

func TestUnroll(t *testing.T) {
	// toggling register: q' = ~q
	c := circuit.New("toggle")
	c.MustAdd("clk", circuit.Input)
	c.MustAdd("q", circuit.Buf, circuit.AsOutput())
	c.MustAdd("nq", circuit.Not)
	ff := circuit.NewBlackBox("dff", []string{"CK", "D"}, []string{"Q"})
	if err := c.AddBlackbox("r0", ff, map[string]string{"CK": "clk", "Q": "q"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Connect("q", "nq"); err != nil {
		t.Fatal(err)
	}
	if err := c.Connect("nq", "r0.D"); err != nil {
		t.Fatal(err)
	}

	u, err := Unroll(c, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(u.Blackboxes()) != 0 {
		t.Error("unrolled circuit still has blackboxes")
	}
	// initial state false: q toggles true, then false
	vals, err := u.Simulate(map[string]bool{"r0_Q_cc0": false})
	if err != nil {
		t.Fatal(err)
	}
	if vals["q_cc0"] != false || vals["q_cc1"] != true || vals["q_cc2"] != false {
		t.Errorf("toggle sequence: %v %v %v", vals["q_cc0"], vals["q_cc1"], vals["q_cc2"])
	}
}

func TestSupergates(t *testing.T) {
	// out = x & (y | z): the or reconverges nothing, so it heads its
	// own supergate
	c := circuit.New("sg")
	c.MustAdd("x", circuit.Input)
	c.MustAdd("y", circuit.Input)
	c.MustAdd("z", circuit.Input)
	c.MustAdd("orn", circuit.Or, circuit.WithFanin("y", "z"))
	c.MustAdd("out", circuit.And, circuit.WithFanin("x", "orn"), circuit.AsOutput())

	sgs, err := Supergates(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(sgs) != 2 {
		t.Fatalf("got %d supergates", len(sgs))
	}
	// topological: the orn supergate precedes the out supergate
	if sgs[0].Name() != "sg_orn" || sgs[1].Name() != "sg_out" {
		t.Errorf("order: %s, %s", sgs[0].Name(), sgs[1].Name())
	}
	in0 := sgs[0].Inputs()
	sort.Strings(in0)
	if len(in0) != 2 || in0[0] != "y" || in0[1] != "z" {
		t.Errorf("sg_orn inputs: %v", in0)
	}
	in1 := sgs[1].Inputs()
	if len(in1) != 2 {
		t.Errorf("sg_out inputs: %v", in1)
	}

	// a fully reconvergent circuit is a single supergate
	one, err := Supergates(andOr())
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 {
		t.Fatalf("got %d supergates", len(one))
	}
	if got := len(one[0].Nodes()); got != 6 {
		t.Errorf("supergate size %d", got)
	}
}

func TestSupergateCircuit(t *testing.T) {
	c := circuit.New("sg")
	c.MustAdd("x", circuit.Input)
	c.MustAdd("y", circuit.Input)
	c.MustAdd("z", circuit.Input)
	c.MustAdd("orn", circuit.Or, circuit.WithFanin("y", "z"))
	c.MustAdd("out", circuit.And, circuit.WithFanin("x", "orn"), circuit.AsOutput())

	super, sgMap, err := SupergateCircuit(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(sgMap) != 2 {
		t.Fatalf("got %d supergates", len(sgMap))
	}
	insts := super.BlackboxInstances()
	if len(insts) != 2 {
		t.Fatalf("instances: %v", insts)
	}
	fo, err := super.Fanout("sg_out.out")
	if err != nil {
		t.Fatal(err)
	}
	if len(fo) != 1 || fo[0] != "out" {
		t.Errorf("supergate output wiring: %v", fo)
	}
}

func TestSubcircuitAndCone(t *testing.T) {
	c := andOr()
	cone, err := Cone(c, "t1")
	if err != nil {
		t.Fatal(err)
	}
	nodes := cone.Nodes()
	sort.Strings(nodes)
	want := []string{"a", "b", "t1"}
	if len(nodes) != 3 || nodes[0] != want[0] || nodes[1] != want[1] || nodes[2] != want[2] {
		t.Errorf("cone nodes: %v", nodes)
	}
}

func TestStripIO(t *testing.T) {
	c := andOr()
	s, err := StripIO(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Inputs()) != 0 || len(s.Outputs()) != 0 {
		t.Errorf("io survived strip: %v %v", s.Inputs(), s.Outputs())
	}
	if len(c.Inputs()) != 3 {
		t.Error("strip mutated its input")
	}
}
