// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import (
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

type wireNode struct {
	Name   string `cbor:"n"`
	Kind   string `cbor:"k"`
	Output bool   `cbor:"o,omitempty"`
}

type wireBox struct {
	Instance string   `cbor:"i"`
	Module   string   `cbor:"m"`
	Inputs   []string `cbor:"in"`
	Outputs  []string `cbor:"out"`
}

type wireCircuit struct {
	Name  string     `cbor:"name"`
	Nodes []wireNode `cbor:"nodes"`
	Edges [][2]int   `cbor:"edges"` // indices into Nodes, driver then load
	Boxes []wireBox  `cbor:"boxes,omitempty"`
}

// MarshalBinary encodes the circuit in a compact CBOR form, compacting
// away dead arena slots.
func (c *Circuit) MarshalBinary() ([]byte, error) {
	var w wireCircuit
	w.Name = c.name
	remap := make([]int, len(c.nodes))
	for i := range c.nodes {
		nd := &c.nodes[i]
		if nd.dead {
			remap[i] = -1
			continue
		}
		remap[i] = len(w.Nodes)
		w.Nodes = append(w.Nodes, wireNode{Name: nd.name, Kind: nd.kind.String(), Output: nd.output})
	}
	for i := range c.nodes {
		if c.nodes[i].dead {
			continue
		}
		for _, f := range c.nodes[i].fanin {
			w.Edges = append(w.Edges, [2]int{remap[f], remap[i]})
		}
	}
	insts := make([]string, 0, len(c.blackboxes))
	for inst := range c.blackboxes {
		insts = append(insts, inst)
	}
	sort.Strings(insts)
	for _, inst := range insts {
		bb := c.blackboxes[inst]
		w.Boxes = append(w.Boxes, wireBox{Instance: inst, Module: bb.name, Inputs: bb.inputs, Outputs: bb.outputs})
	}
	return cbor.Marshal(&w)
}

// UnmarshalBinary decodes a circuit produced by MarshalBinary.  Edges
// are replayed through Connect, so a corrupted or hand-built encoding
// that violates a structural invariant is rejected.
func (c *Circuit) UnmarshalBinary(data []byte) error {
	var w wireCircuit
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	fresh := New(w.Name)
	for _, wn := range w.Nodes {
		kind, ok := KindFromString(wn.Kind)
		if !ok {
			return structErrf("decode", wn.Name, "unknown kind %q", wn.Kind)
		}
		if fresh.Has(wn.Name) {
			return structErrf("decode", wn.Name, "node already in circuit")
		}
		fresh.alloc(wn.Name, kind, wn.Output)
	}
	for _, wb := range w.Boxes {
		fresh.blackboxes[wb.Instance] = NewBlackBox(wb.Module, wb.Inputs, wb.Outputs)
	}
	for _, e := range w.Edges {
		if e[0] < 0 || e[0] >= len(w.Nodes) || e[1] < 0 || e[1] >= len(w.Nodes) {
			return structErrf("decode", "", "edge index out of range")
		}
		if err := fresh.Connect(w.Nodes[e[0]].Name, w.Nodes[e[1]].Name); err != nil {
			return err
		}
	}
	*c = *fresh
	return nil
}

// WriteTo streams the CBOR encoding to w.
func (c *Circuit) WriteTo(w io.Writer) (int64, error) {
	data, err := c.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom reads a CBOR encoding from r until EOF and decodes it.
func (c *Circuit) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	return int64(len(data)), c.UnmarshalBinary(data)
}
