// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// Supergates computes a minimal covering of the circuit with maximal
// supergates: single-output cones bounded by reconvergence, found as
// subtrees of the dominator tree of each output cone (Seth and Agrawal's
// testability model).  Gates are first split to fanin 2, since wider
// gates break the dominator argument.  The returned supergate circuits
// are topologically sorted, producers before consumers.
func Supergates(c *circuit.Circuit) ([]*circuit.Circuit, error) {
	sgs, err := supergateCover(c)
	if err != nil {
		return nil, err
	}
	return sortSupergates(c, sgs)
}

// SupergateCircuit packages a single-output circuit as a supercircuit:
// every supergate of the cover becomes a blackbox instance sg_<head>
// wired through shared nets.  It returns the supercircuit and the
// instance name → supergate map.
func SupergateCircuit(c *circuit.Circuit) (*circuit.Circuit, map[string]*circuit.Circuit, error) {
	if len(c.Outputs()) != 1 {
		return nil, nil, errors.New("tx: supercircuit needs a single-output circuit")
	}
	sgs, err := supergateCover(c)
	if err != nil {
		return nil, nil, err
	}
	super := circuit.New(c.Name() + "_supergates")
	lim, err := LimitFanin(c, 2)
	if err != nil {
		return nil, nil, err
	}
	for _, in := range lim.Inputs() {
		if _, err := super.Add(in, circuit.Input); err != nil {
			return nil, nil, err
		}
	}
	for _, out := range lim.Outputs() {
		if _, err := super.Add(out, circuit.Buf, circuit.AsOutput()); err != nil {
			return nil, nil, err
		}
	}
	sgMap := make(map[string]*circuit.Circuit, len(sgs))
	heads := make([]string, 0, len(sgs))
	for head := range sgs {
		heads = append(heads, head)
	}
	sort.Strings(heads)
	for _, head := range heads {
		sg := sgs[head]
		name := "sg_" + head
		sgMap[name] = sg
		conns := make(map[string]string, len(sg.Inputs())+1)
		for _, n := range append(sg.Inputs(), head) {
			if !super.Has(n) {
				if _, err := super.Add(n, circuit.Buf); err != nil {
					return nil, nil, err
				}
			}
			conns[n] = n
		}
		bb := circuit.NewBlackBox(name, sg.Inputs(), []string{head})
		if err := super.AddBlackbox(name, bb, conns); err != nil {
			return nil, nil, err
		}
	}
	return super, sgMap, nil
}

type supergate struct {
	head string
	c    *circuit.Circuit
}

// supergateCover returns the minimal cover, keyed by supergate head.
func supergateCover(c *circuit.Circuit) (map[string]*circuit.Circuit, error) {
	lim, err := LimitFanin(c, 2)
	if err != nil {
		return nil, err
	}
	var all []supergate
	seen := map[string]bool{}
	for _, output := range lim.Outputs() {
		fi, err := lim.TransitiveFanin(output)
		if err != nil {
			return nil, err
		}
		cone, err := Subcircuit(lim, append(fi, output))
		if err != nil {
			return nil, err
		}
		for _, o := range cone.Outputs() {
			if err := cone.SetOutput(o, false); err != nil {
				return nil, err
			}
		}
		if err := cone.SetOutput(output, true); err != nil {
			return nil, err
		}
		for _, sg := range coneSupergates(cone, output) {
			key := supergateKey(sg.c.Nodes())
			if !seen[key] {
				seen[key] = true
				all = append(all, sg)
			}
		}
	}
	return minimalCover(all), nil
}

// coneSupergates decomposes one output cone along its dominator tree.
func coneSupergates(cone *circuit.Circuit, output string) []supergate {
	idom := immediateDominators(cone, output)
	children := map[string][]string{}
	for v, d := range idom {
		if v != d {
			children[d] = append(children[d], v)
		}
	}
	for _, ch := range children {
		sort.Strings(ch)
	}

	var sgs []supergate
	frontier := []string{output}
	for len(frontier) > 0 {
		head := frontier[0]
		frontier = frontier[1:]
		members := []string{head}
		queue := append([]string(nil), children[head]...)
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			members = append(members, fi)
			switch ch := children[fi]; len(ch) {
			case 0:
			case 1:
				queue = append(queue, ch[0])
			default:
				frontier = append(frontier, fi)
			}
		}
		sg := subcircuitIO(cone, members)
		sg.SetName("sg_" + head)
		if err := sg.SetOutput(head, true); err != nil {
			panic(err) // head is always a member
		}
		sgs = append(sgs, supergate{head: head, c: sg})
	}
	return sgs
}

func supergateKey(members []string) string {
	s := append([]string(nil), members...)
	sort.Strings(s)
	key := ""
	for _, m := range s {
		key += m + "|"
	}
	return key
}

// subcircuitIO is Subcircuit with boundary repair: driverless non-const
// nodes become inputs, loadless nodes become outputs.
func subcircuitIO(c *circuit.Circuit, nodes []string) *circuit.Circuit {
	sub, err := Subcircuit(c, nodes)
	if err != nil {
		// callers pass nodes of a blackbox-free cone
		panic(err)
	}
	for _, n := range sub.Nodes() {
		kind, _ := sub.KindOf(n)
		fi, _ := sub.Fanin(n)
		if !kind.IsConst() && kind != circuit.Input && len(fi) == 0 {
			if err := sub.SetKind(n, circuit.Input); err != nil {
				panic(err)
			}
		}
		fo, _ := sub.Fanout(n)
		if len(fo) == 0 {
			if err := sub.SetOutput(n, true); err != nil {
				panic(err)
			}
		}
	}
	return sub
}

// minimalCover drops supergates contributing no gate of their own.
func minimalCover(sgs []supergate) map[string]*circuit.Circuit {
	own := make([]map[string]bool, len(sgs))
	for i, sg := range sgs {
		inputs := map[string]bool{}
		for _, in := range sg.c.Inputs() {
			inputs[in] = true
		}
		own[i] = map[string]bool{}
		for _, n := range sg.c.Nodes() {
			if !inputs[n] {
				own[i][n] = true
			}
		}
	}
	cover := map[string]*circuit.Circuit{}
	for i, sg := range sgs {
		unique := false
		for n := range own[i] {
			covered := false
			for j := range sgs {
				if j != i && own[j][n] {
					covered = true
					break
				}
			}
			if !covered {
				unique = true
				break
			}
		}
		if unique {
			cover[sg.head] = sg.c
		}
	}
	return cover
}

// sortSupergates orders the cover so that a supergate producing a net
// comes before every supergate consuming it.
func sortSupergates(c *circuit.Circuit, cover map[string]*circuit.Circuit) ([]*circuit.Circuit, error) {
	heads := make([]string, 0, len(cover))
	for h := range cover {
		heads = append(heads, h)
	}
	sort.Strings(heads)
	produces := map[string]string{} // internal node -> head
	for _, h := range heads {
		sg := cover[h]
		inputs := map[string]bool{}
		for _, in := range sg.Inputs() {
			inputs[in] = true
		}
		for _, n := range sg.Nodes() {
			if !inputs[n] {
				produces[n] = h
			}
		}
	}
	indeg := map[string]int{}
	deps := map[string][]string{} // producer head -> consumer heads
	for _, h := range heads {
		indeg[h] += 0
		for _, in := range cover[h].Inputs() {
			if p, ok := produces[in]; ok && p != h {
				deps[p] = append(deps[p], h)
				indeg[h]++
			}
		}
	}
	var queue []string
	for _, h := range heads {
		if indeg[h] == 0 {
			queue = append(queue, h)
		}
	}
	sort.Strings(queue)
	var out []*circuit.Circuit
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		out = append(out, cover[h])
		for _, consumer := range deps[h] {
			indeg[consumer]--
			if indeg[consumer] == 0 {
				queue = append(queue, consumer)
			}
		}
	}
	if len(out) != len(heads) {
		return nil, errors.New("tx: supergate dependency cycle")
	}
	return out, nil
}

// immediateDominators runs the iterative dominator algorithm of Cooper,
// Harvey and Kennedy over the cone's dominator graph: every edge is
// walked both ways except into the root, which mirrors treating the
// cone as a flow graph entered at its output.
func immediateDominators(cone *circuit.Circuit, root string) map[string]string {
	succ := map[string][]string{}
	pred := map[string][]string{}
	addEdge := func(u, v string) {
		succ[u] = append(succ[u], v)
		pred[v] = append(pred[v], u)
	}
	for _, e := range cone.Edges() {
		u, v := e[0], e[1]
		addEdge(v, u)
		if v != root {
			addEdge(u, v)
		}
	}

	// reverse postorder from the root
	var order []string
	visited := map[string]bool{root: true}
	var dfs func(string)
	dfs = func(n string) {
		ss := append([]string(nil), succ[n]...)
		sort.Strings(ss)
		for _, s := range ss {
			if !visited[s] {
				visited[s] = true
				dfs(s)
			}
		}
		order = append(order, n)
	}
	dfs(root)
	rpo := map[string]int{}
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	for i, n := range order {
		rpo[n] = i
	}

	idom := map[string]string{root: root}
	intersect := func(a, b string) string {
		for a != b {
			for rpo[a] > rpo[b] {
				a = idom[a]
			}
			for rpo[b] > rpo[a] {
				b = idom[b]
			}
		}
		return a
	}
	for changed := true; changed; {
		changed = false
		for _, v := range order {
			if v == root {
				continue
			}
			var newIdom string
			for _, p := range pred[v] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if newIdom == "" {
					newIdom = p
				} else {
					newIdom = intersect(newIdom, p)
				}
			}
			if newIdom == "" {
				continue
			}
			if idom[v] != newIdom {
				idom[v] = newIdom
				changed = true
			}
		}
	}
	return idom
}
