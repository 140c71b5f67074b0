// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// reaches reports whether dst is reachable from src along fanout edges.
func (c *Circuit) reaches(src, dst int) bool {
	seen := bitset.New(uint(len(c.nodes)))
	stack := []int{src}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i == dst {
			return true
		}
		if seen.Test(uint(i)) {
			continue
		}
		seen.Set(uint(i))
		stack = append(stack, c.nodes[i].fanout...)
	}
	return false
}

// descendants returns every arena index reachable from i along fanout
// edges, excluding i itself.
func (c *Circuit) descendants(i int) []int {
	seen := bitset.New(uint(len(c.nodes)))
	var out []int
	stack := append([]int(nil), c.nodes[i].fanout...)
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if j == i || seen.Test(uint(j)) {
			continue
		}
		seen.Set(uint(j))
		out = append(out, j)
		stack = append(stack, c.nodes[j].fanout...)
	}
	return out
}

func (c *Circuit) closure(roots []int, next func(int) []int) *bitset.BitSet {
	seen := bitset.New(uint(len(c.nodes)))
	stack := append([]int(nil), roots...)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, j := range next(i) {
			if !seen.Test(uint(j)) {
				seen.Set(uint(j))
				stack = append(stack, j)
			}
		}
	}
	return seen
}

func (c *Circuit) roots(ns []string, op string) ([]int, error) {
	ids := make([]int, len(ns))
	for i, n := range ns {
		id, ok := c.idx(n)
		if !ok {
			return nil, structErrf(op, n, "node does not exist")
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *Circuit) setNames(s *bitset.BitSet) []string {
	out := make([]string, 0, s.Count())
	for i, ok := s.NextSet(0); ok; i, ok = s.NextSet(i + 1) {
		out = append(out, c.nodes[i].name)
	}
	sort.Strings(out)
	return out
}

// TransitiveFanin returns every node reachable from the given nodes by
// walking driver edges backwards, excluding the roots themselves unless
// they drive each other.  Traversal stops at blackbox pins like at any
// other node; it does not cross instance boundaries.
func (c *Circuit) TransitiveFanin(ns ...string) ([]string, error) {
	roots, err := c.roots(ns, "transitive fanin")
	if err != nil {
		return nil, err
	}
	seen := c.closure(roots, func(i int) []int { return c.nodes[i].fanin })
	return c.setNames(seen), nil
}

// TransitiveFanout is the forward counterpart of TransitiveFanin.
func (c *Circuit) TransitiveFanout(ns ...string) ([]string, error) {
	roots, err := c.roots(ns, "transitive fanout")
	if err != nil {
		return nil, err
	}
	seen := c.closure(roots, func(i int) []int { return c.nodes[i].fanout })
	return c.setNames(seen), nil
}

// Startpoints returns the inputs and blackbox outputs in the transitive
// fanin of the given nodes, or of the whole circuit when none are given.
// A node that is itself a startpoint is its own startpoint.
func (c *Circuit) Startpoints(ns ...string) ([]string, error) {
	return c.points(ns, "startpoints",
		func(i int) []int { return c.nodes[i].fanin },
		func(k Kind) bool { return k == Input || k == BBOutput })
}

// Endpoints returns the output-marked nodes and blackbox inputs in the
// transitive fanout of the given nodes, or of the whole circuit when
// none are given.  A node that is itself an endpoint is its own
// endpoint.
func (c *Circuit) Endpoints(ns ...string) ([]string, error) {
	return c.points(ns, "endpoints",
		func(i int) []int { return c.nodes[i].fanout },
		func(k Kind) bool { return k == BBInput })
}

func (c *Circuit) points(ns []string, op string, next func(int) []int, hit func(Kind) bool) ([]string, error) {
	var roots []int
	if len(ns) == 0 {
		for i := range c.nodes {
			if !c.nodes[i].dead {
				roots = append(roots, i)
			}
		}
	} else {
		var err error
		roots, err = c.roots(ns, op)
		if err != nil {
			return nil, err
		}
	}
	seen := c.closure(roots, next)
	for _, r := range roots {
		seen.Set(uint(r))
	}
	var out []string
	for i, ok := seen.NextSet(0); ok; i, ok = seen.NextSet(i + 1) {
		nd := &c.nodes[i]
		if hit(nd.kind) || (op == "endpoints" && nd.output) {
			out = append(out, nd.name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// TopoSort returns all live node names in a topological order: every
// driver precedes its loads.  Blackbox pins order like ordinary nodes
// since instances carry no internal edges.
func (c *Circuit) TopoSort() []string {
	order := c.topoIdx()
	out := make([]string, len(order))
	for i, id := range order {
		out[i] = c.nodes[id].name
	}
	return out
}

// topoIdx is Kahn's algorithm over the arena.  Connect rejects
// combinational cycles, so every live node is emitted.
func (c *Circuit) topoIdx() []int {
	indeg := make([]int, len(c.nodes))
	var queue []int
	for i := range c.nodes {
		if c.nodes[i].dead {
			continue
		}
		indeg[i] = len(c.nodes[i].fanin)
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	out := make([]int, 0, len(c.index))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		out = append(out, i)
		for _, j := range c.nodes[i].fanout {
			indeg[j]--
			if indeg[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	return out
}

// IsCyclic reports whether the circuit contains a combinational cycle.
// Connect rejects cycles, so this only fires on graphs rebuilt through
// lower-level paths.
func (c *Circuit) IsCyclic() bool {
	return len(c.topoIdx()) < c.Len()
}

// RemoveUnloaded repeatedly deletes nodes that drive nothing and are not
// marked as outputs.  With inputs true, unloaded input nodes are removed
// as well.
func (c *Circuit) RemoveUnloaded(inputs bool) {
	for {
		removed := false
		for i := range c.nodes {
			nd := &c.nodes[i]
			if nd.dead || nd.output || len(nd.fanout) > 0 {
				continue
			}
			if nd.kind == Input && !inputs {
				continue
			}
			c.kill(i)
			removed = true
		}
		if !removed {
			return
		}
	}
}

// Levelize assigns each node its logic depth: startpoints and constants
// are level 0, every other node is one more than its deepest driver.
func (c *Circuit) Levelize() map[string]int {
	levels := make(map[string]int, len(c.index))
	for _, i := range c.topoIdx() {
		nd := &c.nodes[i]
		lvl := 0
		for _, f := range nd.fanin {
			if fl := levels[c.nodes[f].name]; fl+1 > lvl {
				lvl = fl + 1
			}
		}
		levels[nd.name] = lvl
	}
	return levels
}
