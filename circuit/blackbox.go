// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import "sort"

// BlackBox describes an opaque submodule interface: a module name and
// ordered input and output port lists.  Sequential elements and
// undefined modules are modeled as blackbox instances, which contribute
// boundary pin nodes but no internal edges.
type BlackBox struct {
	name    string
	inputs  []string
	outputs []string
}

// NewBlackBox defines a blackbox interface.  Port order is preserved for
// netlist emission.
func NewBlackBox(name string, inputs, outputs []string) BlackBox {
	return BlackBox{
		name:    name,
		inputs:  append([]string(nil), inputs...),
		outputs: append([]string(nil), outputs...),
	}
}

// Name returns the blackbox module name.
func (b BlackBox) Name() string { return b.name }

// Inputs returns the input port names in declaration order.
func (b BlackBox) Inputs() []string { return append([]string(nil), b.inputs...) }

// Outputs returns the output port names in declaration order.
func (b BlackBox) Outputs() []string { return append([]string(nil), b.outputs...) }

// PinName returns the node name of an instance pin.
func PinName(instance, port string) string { return instance + "." + port }

// AddBlackbox instantiates bb under the given instance name.  Each input
// port becomes a bb_input node named "instance.port" and each output
// port a bb_output node.  conns maps port names to circuit nodes: input
// ports are driven by the named node, output ports drive the named
// node, which is converted to a buf.
func (c *Circuit) AddBlackbox(instance string, bb BlackBox, conns map[string]string) error {
	if _, ok := c.blackboxes[instance]; ok {
		return structErrf("add blackbox", instance, "instance already exists")
	}
	for _, p := range bb.inputs {
		if c.Has(PinName(instance, p)) {
			return structErrf("add blackbox", PinName(instance, p), "node already in circuit")
		}
	}
	for _, p := range bb.outputs {
		if c.Has(PinName(instance, p)) {
			return structErrf("add blackbox", PinName(instance, p), "node already in circuit")
		}
	}
	for p := range conns {
		if !contains(bb.inputs, p) && !contains(bb.outputs, p) {
			return structErrf("add blackbox", p, "not a port of %q", bb.name)
		}
	}
	for _, p := range bb.inputs {
		c.alloc(PinName(instance, p), BBInput, false)
	}
	for _, p := range bb.outputs {
		c.alloc(PinName(instance, p), BBOutput, false)
	}
	c.blackboxes[instance] = bb

	for _, p := range bb.inputs {
		n, ok := conns[p]
		if !ok {
			continue
		}
		if err := c.Connect(n, PinName(instance, p)); err != nil {
			return err
		}
	}
	for _, p := range bb.outputs {
		n, ok := conns[p]
		if !ok {
			continue
		}
		if err := c.SetKind(n, Buf); err != nil {
			return err
		}
		if err := c.Connect(PinName(instance, p), n); err != nil {
			return err
		}
	}
	return nil
}

// Blackboxes returns the instance name → interface table.
func (c *Circuit) Blackboxes() map[string]BlackBox {
	out := make(map[string]BlackBox, len(c.blackboxes))
	for k, v := range c.blackboxes {
		out[k] = v
	}
	return out
}

// BlackboxInstances returns the instance names, sorted.
func (c *Circuit) BlackboxInstances() []string {
	out := make([]string, 0, len(c.blackboxes))
	for k := range c.blackboxes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FillBlackbox replaces the named instance with an implementation
// circuit whose inputs and outputs match the blackbox ports.  Pin nodes
// are removed and the implementation is merged in under the instance
// name as prefix, rewired to the pins' former drivers and loads.
func (c *Circuit) FillBlackbox(instance string, impl *Circuit) error {
	bb, ok := c.blackboxes[instance]
	if !ok {
		return structErrf("fill blackbox", instance, "no such instance")
	}
	if !sameSet(impl.Inputs(), bb.inputs) {
		return structErrf("fill blackbox", instance, "implementation inputs do not match %q ports", bb.name)
	}
	if !sameSet(impl.Outputs(), bb.outputs) {
		return structErrf("fill blackbox", instance, "implementation outputs do not match %q ports", bb.name)
	}

	conns := make(map[string]string, len(bb.inputs)+len(bb.outputs))
	var pins []int
	for _, p := range bb.inputs {
		i, _ := c.idx(PinName(instance, p))
		fi := c.nodes[i].fanin
		if len(fi) != 1 {
			return structErrf("fill blackbox", PinName(instance, p), "pin is undriven")
		}
		conns[p] = c.nodes[fi[0]].name
		pins = append(pins, i)
	}
	for _, p := range bb.outputs {
		i, _ := c.idx(PinName(instance, p))
		fo := c.nodes[i].fanout
		if len(fo) != 1 {
			return structErrf("fill blackbox", PinName(instance, p), "pin has no load")
		}
		conns[p] = c.nodes[fo[0]].name
		pins = append(pins, i)
	}
	for _, i := range pins {
		c.kill(i)
	}
	delete(c.blackboxes, instance)
	if _, err := c.AddSubcircuit(impl, instance, conns); err != nil {
		return err
	}
	return nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}
