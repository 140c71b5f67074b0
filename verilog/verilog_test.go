// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package verilog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// c17-style nand-only benchmark: five inputs, two outputs, six gates.
const c17 = `
// benchmark netlist
module c17 (G1, G2, G3, G6, G7, G22, G23);
  input G1, G2, G3, G6, G7;
  output G22, G23;
  wire G10, G11, G16, G19;

  nand NAND2_1 (G10, G1, G3);
  nand NAND2_2 (G11, G3, G6);
  nand NAND2_3 (G16, G2, G11);
  nand NAND2_4 (G19, G11, G7);
  nand NAND2_5 (G22, G10, G16, G19);
  nand NAND2_6 (G23, G16, G19);
endmodule
`

func TestParseC17(t *testing.T) {
	c, err := Parse(c17)
	require.NoError(t, err)
	assert.Equal(t, "c17", c.Name())
	assert.Equal(t, []string{"G1", "G2", "G3", "G6", "G7"}, c.Inputs())
	assert.Equal(t, []string{"G22", "G23"}, c.Outputs())

	sp, err := c.Startpoints("G22")
	require.NoError(t, err)
	assert.Equal(t, []string{"G1", "G2", "G3", "G6", "G7"}, sp)

	k, err := c.KindOf("G16")
	require.NoError(t, err)
	assert.Equal(t, circuit.Nand, k)
	require.NoError(t, c.Lint())
}

func TestRoundTrip(t *testing.T) {
	orig, err := Parse(c17)
	require.NoError(t, err)
	src, err := Write(orig)
	require.NoError(t, err)
	back, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, orig.Inputs(), back.Inputs())
	assert.Equal(t, orig.Outputs(), back.Outputs())
	origSp, _ := orig.Startpoints()
	backSp, _ := back.Startpoints()
	assert.Equal(t, origSp, backSp)

	inputs := orig.Inputs()
	for v := 0; v < 1<<len(inputs); v++ {
		assign := map[string]bool{}
		for i, in := range inputs {
			assign[in] = v&(1<<i) != 0
		}
		want, err := orig.Simulate(assign)
		require.NoError(t, err)
		got, err := back.Simulate(assign)
		require.NoError(t, err)
		for _, o := range orig.Outputs() {
			assert.Equal(t, want[o], got[o], "output %s under %v", o, assign)
		}
	}
}

func TestAssignPrecedence(t *testing.T) {
	src := `
module expr (a, b, c, d, y);
  input a, b, c, d;
  output y;
  assign y = a | b & ~c ^ d;
endmodule
`
	c, err := Parse(src)
	require.NoError(t, err)
	for v := 0; v < 16; v++ {
		a, b, cc, d := v&1 != 0, v&2 != 0, v&4 != 0, v&8 != 0
		vals, err := c.Simulate(map[string]bool{"a": a, "b": b, "c": cc, "d": d})
		require.NoError(t, err)
		want := a || ((b && !cc) != d)
		assert.Equal(t, want, vals["y"], "a=%v b=%v c=%v d=%v", a, b, cc, d)
	}
}

func TestVectorAssign(t *testing.T) {
	src := `
module vec (a, b, y, z);
  input [2:0] a;
  input [2:0] b;
  output [2:0] y;
  output z;
  assign y = a & ~b;
  assign z = a[1] ^ b[2];
endmodule
`
	c, err := Parse(src)
	require.NoError(t, err)
	assert.True(t, c.Has("a[0]") && c.Has("y[2]"))
	vals, err := c.Simulate(map[string]bool{
		"a[0]": true, "a[1]": true, "a[2]": false,
		"b[0]": true, "b[1]": false, "b[2]": false,
	})
	require.NoError(t, err)
	assert.False(t, vals["y[0]"])
	assert.True(t, vals["y[1]"])
	assert.False(t, vals["y[2]"])
	assert.True(t, vals["z"])
}

func TestConstants(t *testing.T) {
	src := `
module konst (a, y);
  input a;
  output y;
  wire t;
  assign t = 1'b1;
  assign y = a & t & ~1'b0;
endmodule
`
	c, err := Parse(src)
	require.NoError(t, err)
	vals, err := c.Simulate(map[string]bool{"a": true})
	require.NoError(t, err)
	assert.True(t, vals["y"])
}

func TestEscapedIdentifiers(t *testing.T) {
	src := `
module esc (\weird.name , y);
  input \weird.name ;
  output y;
  assign y = ~\weird.name ;
endmodule
`
	c, err := Parse(src)
	require.NoError(t, err)
	assert.True(t, c.Has("weird.name"))
	vals, err := c.Simulate(map[string]bool{"weird.name": false})
	require.NoError(t, err)
	assert.True(t, vals["y"])
}

func TestMultiModuleBlackbox(t *testing.T) {
	src := `
module top (a, b, clk, y);
  input a, b, clk;
  output y;
  wire s;
  and g0 (s, a, b);
  keep u0 (.D(s), .CK(clk), .Q(y));
endmodule

module keep (D, CK, Q);
  input D, CK;
  output Q;
endmodule
`
	_, err := Parse(src)
	require.Error(t, err) // two modules, none selected

	c, err := Parse(src, WithModule("top"))
	require.NoError(t, err)
	boxes := c.Blackboxes()
	require.Len(t, boxes, 1)
	assert.Equal(t, "keep", boxes["u0"].Name())
	k, err := c.KindOf("u0.Q")
	require.NoError(t, err)
	assert.Equal(t, circuit.BBOutput, k)

	// startpoints of y include the instance output pin
	sp, err := c.Startpoints("y")
	require.NoError(t, err)
	assert.Equal(t, []string{"u0.Q"}, sp)
}

func TestBlackboxFromOption(t *testing.T) {
	src := `
module top (a, clk, q);
  input a, clk;
  output q;
  dff r0 (.CK(clk), .D(a), .Q(q));
endmodule
`
	_, err := Parse(src)
	var perr *ParseError
	require.ErrorAs(t, err, &perr) // unknown module, no interface supplied

	ff := circuit.NewBlackBox("dff", []string{"CK", "D"}, []string{"Q"})
	c, err := Parse(src, WithBlackbox(ff))
	require.NoError(t, err)
	assert.Equal(t, []string{"r0"}, c.BlackboxInstances())
}

func TestPositionalInstance(t *testing.T) {
	src := `
module top (a, b, y);
  input a, b;
  output y;
  sub u0 (a, b, y);
endmodule

module sub (p, q, r);
  input p, q;
  output r;
endmodule
`
	c, err := Parse(src, WithModule("top"))
	require.NoError(t, err)
	fi, err := c.Fanin("u0.p")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, fi)
	fo, err := c.Fanout("u0.r")
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, fo)
}

func TestFlipFlopIdiom(t *testing.T) {
	src := `
module seq (clk, d, q, y);
  input clk, d;
  output reg q;
  output y;
  always @(posedge clk) q <= d;
  not g0 (y, q);
endmodule
`
	c, err := Parse(src)
	require.NoError(t, err)
	insts := c.BlackboxInstances()
	require.Len(t, insts, 1)
	assert.Equal(t, "dff", c.Blackboxes()[insts[0]].Name())
	sp, err := c.Startpoints("y")
	require.NoError(t, err)
	assert.Equal(t, []string{circuit.PinName(insts[0], "Q")}, sp)
}

func TestUnsupportedConstructs(t *testing.T) {
	cases := map[string]string{
		"lhs part-select": `
module m (a, y);
  input a;
  output [3:0] y;
  assign y[3:1] = a;
endmodule
`,
		"lhs concatenation": `
module m (a, y, z);
  input a;
  output y, z;
  assign {y, z} = a;
endmodule
`,
		"logical operator": `
module m (a, b, y);
  input a, b;
  output y;
  assign y = a && b;
endmodule
`,
		"generate block": `
module m (a, y);
  input a;
  output y;
  generate
endmodule
`,
		"behavioral always": `
module m (a, b, y);
  input a, b;
  output y;
  always @(a or b) y = a;
endmodule
`,
		"multi-driver net": `
module m (a, b, y);
  input a, b;
  output y;
  and g0 (y, a, b);
  or g1 (y, a, b);
endmodule
`,
		"wide literal": `
module m (a, y);
  input a;
  output y;
  assign y = a & 2'b10;
endmodule
`,
	}
	for name, src := range cases {
		_, err := Parse(src)
		var uerr *UnsupportedConstructError
		assert.ErrorAs(t, err, &uerr, name)
		if uerr != nil {
			assert.NotZero(t, uerr.Line, name)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"not a module":    `wire w;`,
		"unterminated":    `module m (a); input a;`,
		"undeclared bit":  "module m (a, y);\n input a;\n output y;\n assign y = a[3];\nendmodule",
		"width mismatch":  "module m (a, y);\n input [1:0] a;\n output [2:0] y;\n assign y = a;\nendmodule",
		"input driven":    "module m (a, b);\n input a, b;\n assign a = b;\nendmodule",
		"port direction":  "module m (a, y);\n input a;\n assign y = a;\nendmodule",
	}
	for name, src := range cases {
		_, err := Parse(src)
		var perr *ParseError
		assert.ErrorAs(t, err, &perr, name)
	}
}

func TestWriterEmitsBlackbox(t *testing.T) {
	c := circuit.New("top")
	c.MustAdd("clk", circuit.Input)
	c.MustAdd("d", circuit.Input)
	c.MustAdd("q", circuit.Buf, circuit.AsOutput())
	ff := circuit.NewBlackBox("dff", []string{"CK", "D"}, []string{"Q"})
	require.NoError(t, c.AddBlackbox("r0", ff, map[string]string{"CK": "clk", "D": "d", "Q": "q"}))

	src, err := Write(c)
	require.NoError(t, err)
	back, err := Parse(src, WithBlackbox(ff))
	require.NoError(t, err)
	assert.Equal(t, []string{"r0"}, back.BlackboxInstances())
	fi, err := back.Fanin("r0.D")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, fi)
}

func TestWriterRejectsX(t *testing.T) {
	c := circuit.New("m")
	c.MustAdd("n", circuit.X)
	_, err := Write(c)
	require.Error(t, err)
}
