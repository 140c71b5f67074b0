// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package verilog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// keywords the emitter must not use as bare identifiers.
var keywords = map[string]bool{
	"module": true, "endmodule": true, "input": true, "output": true,
	"inout": true, "wire": true, "reg": true, "assign": true,
	"always": true, "posedge": true, "negedge": true, "begin": true,
	"end": true, "generate": true, "initial": true,
	"buf": true, "not": true, "and": true, "or": true,
	"nand": true, "nor": true, "xor": true, "xnor": true,
}

// Write renders the circuit as a structural netlist.  Parsing the
// result yields a circuit with the same startpoints, endpoints, and
// per-output truth tables, though internal node identity may differ.
func Write(c *circuit.Circuit) (string, error) {
	var b strings.Builder
	if err := WriteTo(&b, c); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteTo streams the netlist for c to w.
func WriteTo(w io.Writer, c *circuit.Circuit) error {
	if err := c.Lint(); err != nil {
		return errors.Wrap(err, "verilog: circuit not writable")
	}
	inputs := c.Inputs()
	outputs := c.Outputs()
	for _, n := range outputs {
		if k, _ := c.KindOf(n); k == circuit.Input {
			return errors.Errorf("verilog: node %q is both an input and an output", n)
		}
		if k, _ := c.KindOf(n); k == circuit.X {
			return errors.Errorf("verilog: x constant %q not expressible", n)
		}
	}

	var b strings.Builder
	ports := append(append([]string(nil), inputs...), outputs...)
	fmt.Fprintf(&b, "module %s (", emitName(c.Name()))
	for i, p := range ports {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(emitName(p))
	}
	b.WriteString(");\n")

	if len(inputs) > 0 {
		fmt.Fprintf(&b, "  input %s;\n", emitNames(inputs))
	}
	if len(outputs) > 0 {
		fmt.Fprintf(&b, "  output %s;\n", emitNames(outputs))
	}
	var wires []string
	isOut := make(map[string]bool, len(outputs))
	for _, n := range outputs {
		isOut[n] = true
	}
	for _, n := range c.Nodes() {
		k, _ := c.KindOf(n)
		if k == circuit.Input || k.IsPin() || isOut[n] {
			continue
		}
		if k == circuit.X {
			return errors.Errorf("verilog: x constant %q not expressible", n)
		}
		wires = append(wires, n)
	}
	sort.Strings(wires)
	if len(wires) > 0 {
		fmt.Fprintf(&b, "  wire %s;\n", emitNames(wires))
	}
	b.WriteString("\n")

	names := c.Nodes()
	sort.Strings(names)
	for _, n := range names {
		k, _ := c.KindOf(n)
		if k == circuit.Input || k.IsPin() {
			continue
		}
		fi, _ := c.Fanin(n)
		if k == circuit.Buf && len(fi) == 1 {
			// nets driven by an instance output are declared, not assigned
			if dk, _ := c.KindOf(fi[0]); dk == circuit.BBOutput {
				continue
			}
		}
		fmt.Fprintf(&b, "  assign %s = %s;\n", emitName(n), gateExpr(k, fi))
	}

	insts := c.BlackboxInstances()
	if len(insts) > 0 {
		b.WriteString("\n")
	}
	for _, inst := range insts {
		bb := c.Blackboxes()[inst]
		var conns []string
		for _, p := range bb.Inputs() {
			fi, _ := c.Fanin(circuit.PinName(inst, p))
			if len(fi) == 1 {
				conns = append(conns, fmt.Sprintf(".%s(%s)", emitName(p), emitName(fi[0])))
			}
		}
		for _, p := range bb.Outputs() {
			fo, _ := c.Fanout(circuit.PinName(inst, p))
			if len(fo) == 1 {
				conns = append(conns, fmt.Sprintf(".%s(%s)", emitName(p), emitName(fo[0])))
			}
		}
		fmt.Fprintf(&b, "  %s %s (%s);\n", emitName(bb.Name()), emitName(inst), strings.Join(conns, ", "))
	}

	b.WriteString("endmodule\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func gateExpr(k circuit.Kind, fanin []string) string {
	switch k {
	case circuit.Zero:
		return "1'b0"
	case circuit.One:
		return "1'b1"
	case circuit.Buf:
		return emitName(fanin[0])
	case circuit.Not:
		return "~" + emitName(fanin[0])
	}
	op := map[circuit.Kind]string{
		circuit.And: " & ", circuit.Nand: " & ",
		circuit.Or: " | ", circuit.Nor: " | ",
		circuit.Xor: " ^ ", circuit.Xnor: " ^ ",
	}[k]
	parts := make([]string, len(fanin))
	for i, f := range fanin {
		parts[i] = emitName(f)
	}
	body := strings.Join(parts, op)
	switch k {
	case circuit.Nand, circuit.Nor, circuit.Xnor:
		return "~(" + body + ")"
	}
	return body
}

func emitNames(ns []string) string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = emitName(n)
	}
	return strings.Join(out, ", ")
}

// emitName renders a node name, escaping it when it is not a simple
// identifier or collides with a keyword.  Escaped identifiers carry
// their terminating space.
func emitName(n string) string {
	if simpleIdent(n) && !keywords[n] {
		return n
	}
	return "\\" + n + " "
}

func simpleIdent(n string) bool {
	if n == "" || !isIdentStart(n[0]) {
		return false
	}
	for i := 1; i < len(n); i++ {
		if !isIdentPart(n[i]) {
			return false
		}
	}
	return true
}
