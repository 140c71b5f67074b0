// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import (
	"fmt"
	"sort"
)

// node is an arena slot.  Edges are arena indices; dead slots are
// tombstoned and skipped until the next Copy compacts them away.
type node struct {
	name   string
	kind   Kind
	output bool
	fanin  []int
	fanout []int
	dead   bool
}

// Circuit is a named collection of nodes and directed driver→load edges.
//
// Nodes live in an integer-indexed arena with a name→index side table,
// so neighbor iteration never hashes.  All mutating methods bump a
// generation counter which downstream encoders use to invalidate caches.
type Circuit struct {
	name       string
	nodes      []node
	index      map[string]int
	blackboxes map[string]BlackBox
	gen        uint64
}

// New creates an empty circuit.  An empty name defaults to "circuit".
func New(name string) *Circuit {
	if name == "" {
		name = "circuit"
	}
	return &Circuit{
		name:       name,
		index:      make(map[string]int),
		blackboxes: make(map[string]BlackBox),
	}
}

// Name returns the circuit name.
func (c *Circuit) Name() string { return c.name }

// SetName sets the circuit name.
func (c *Circuit) SetName(name string) { c.name = name }

// Generation returns a counter incremented by every structural mutation.
// Encoders key their caches on it.
func (c *Circuit) Generation() uint64 { return c.gen }

func (c *Circuit) mutated() { c.gen++ }

// Len returns the number of live nodes.
func (c *Circuit) Len() int { return len(c.index) }

// Has reports whether a node named n exists.
func (c *Circuit) Has(n string) bool {
	_, ok := c.index[n]
	return ok
}

func (c *Circuit) idx(n string) (int, bool) {
	i, ok := c.index[n]
	return i, ok
}

// Nodes returns the names of all live nodes in insertion order.
func (c *Circuit) Nodes() []string {
	out := make([]string, 0, len(c.index))
	for i := range c.nodes {
		if !c.nodes[i].dead {
			out = append(out, c.nodes[i].name)
		}
	}
	return out
}

// Edges returns every driver→load pair, ordered by load insertion.
func (c *Circuit) Edges() [][2]string {
	var out [][2]string
	for i := range c.nodes {
		if c.nodes[i].dead {
			continue
		}
		for _, f := range c.nodes[i].fanin {
			out = append(out, [2]string{c.nodes[f].name, c.nodes[i].name})
		}
	}
	return out
}

// AddOption configures Add.
type AddOption func(*addConfig)

type addConfig struct {
	fanin  []string
	fanout []string
	output bool
	uid    bool
}

// WithFanin wires the listed nodes as drivers of the new node.
func WithFanin(ns ...string) AddOption {
	return func(cfg *addConfig) { cfg.fanin = append(cfg.fanin, ns...) }
}

// WithFanout wires the new node as a driver of the listed nodes.
func WithFanout(ns ...string) AddOption {
	return func(cfg *addConfig) { cfg.fanout = append(cfg.fanout, ns...) }
}

// AsOutput marks the new node as a circuit output.
func AsOutput() AddOption {
	return func(cfg *addConfig) { cfg.output = true }
}

// WithUID renames the new node to a fresh unique name if the requested
// one is taken, instead of failing.
func WithUID() AddOption {
	return func(cfg *addConfig) { cfg.uid = true }
}

// Add creates a node and wires it, returning the name actually used
// (which differs from n only under WithUID).  It fails with a
// StructuralError on duplicate names, dangling fanin/fanout references,
// kinds that cannot be added directly (blackbox pins), and arity
// violations.
func (c *Circuit) Add(n string, kind Kind, opts ...AddOption) (string, error) {
	var cfg addConfig
	for _, o := range opts {
		o(&cfg)
	}

	if n == "" {
		return "", structErrf("add", n, "empty node name")
	}
	if n[0] >= '0' && n[0] <= '9' {
		return "", structErrf("add", n, "node name starts with a digit")
	}
	if kind.IsPin() {
		return "", structErrf("add", n, "%s nodes are added through AddBlackbox", kind)
	}
	if kind >= numKinds {
		return "", structErrf("add", n, "unknown kind")
	}
	if cfg.uid {
		n = c.UID(n)
	} else if c.Has(n) {
		return "", structErrf("add", n, "node already in circuit")
	}

	switch kind.Arity() {
	case Nullary:
		if len(cfg.fanin) > 0 {
			return "", structErrf("add", n, "%s cannot have fanin", kind)
		}
	case Unary:
		if len(cfg.fanin) > 1 {
			return "", structErrf("add", n, "%s cannot have more than one fanin", kind)
		}
	}
	for _, f := range cfg.fanin {
		if !c.Has(f) {
			return "", structErrf("add", n, "fanin %q does not exist", f)
		}
	}
	for _, f := range cfg.fanout {
		if !c.Has(f) {
			return "", structErrf("add", n, "fanout %q does not exist", f)
		}
	}

	c.alloc(n, kind, cfg.output)
	for _, f := range cfg.fanin {
		if err := c.Connect(f, n); err != nil {
			return "", err
		}
	}
	for _, f := range cfg.fanout {
		if err := c.Connect(n, f); err != nil {
			return "", err
		}
	}
	return n, nil
}

// MustAdd is Add for programmatic construction where the caller controls
// all names; it panics on error.
func (c *Circuit) MustAdd(n string, kind Kind, opts ...AddOption) string {
	name, err := c.Add(n, kind, opts...)
	if err != nil {
		panic(err)
	}
	return name
}

func (c *Circuit) alloc(n string, kind Kind, output bool) int {
	id := len(c.nodes)
	c.nodes = append(c.nodes, node{name: n, kind: kind, output: output})
	c.index[n] = id
	c.mutated()
	return id
}

// Connect adds the single edge driver→load.  Connecting an existing edge
// is a no-op.  Connect fails with a StructuralError if either endpoint
// is missing, if the load is a source kind, if it would give a unary
// load a second driver, if it violates the blackbox pin rules, or if it
// would close a combinational cycle.
func (c *Circuit) Connect(driver, load string) error {
	u, ok := c.idx(driver)
	if !ok {
		return structErrf("connect", driver, "node does not exist")
	}
	v, ok := c.idx(load)
	if !ok {
		return structErrf("connect", load, "node does not exist")
	}
	ln := &c.nodes[v]
	switch ln.kind {
	case Input, Zero, One, X, BBOutput:
		return structErrf("connect", load, "cannot connect to %s", ln.kind)
	}
	for _, f := range ln.fanin {
		if f == u {
			return nil
		}
	}
	if ln.kind.Arity() == Unary && len(ln.fanin) >= 1 {
		return structErrf("connect", load, "second driver for %s (already driven by %q)",
			ln.kind, c.nodes[ln.fanin[0]].name)
	}
	dn := &c.nodes[u]
	if dn.kind == BBInput {
		return structErrf("connect", driver, "cannot connect from %s", dn.kind)
	}
	if dn.kind == BBOutput {
		if ln.kind != Buf {
			return structErrf("connect", driver, "%s must drive a single buf, not %s %q",
				dn.kind, ln.kind, load)
		}
		if len(dn.fanout) >= 1 {
			return structErrf("connect", driver, "fanout of %s cannot be greater than 1", dn.kind)
		}
	}
	// A cycle that never crosses a blackbox boundary is combinational:
	// blackbox instances have no internal pin-to-pin edge, so any path
	// found here is purely combinational.
	if u == v || c.reaches(v, u) {
		return structErrf("connect", load, "combinational cycle through %q", driver)
	}
	dn.fanout = append(dn.fanout, v)
	ln.fanin = append(ln.fanin, u)
	c.mutated()
	return nil
}

// Disconnect removes the edge driver→load if present.
func (c *Circuit) Disconnect(driver, load string) error {
	u, ok := c.idx(driver)
	if !ok {
		return structErrf("disconnect", driver, "node does not exist")
	}
	v, ok := c.idx(load)
	if !ok {
		return structErrf("disconnect", load, "node does not exist")
	}
	c.nodes[u].fanout = cutIdx(c.nodes[u].fanout, v)
	c.nodes[v].fanin = cutIdx(c.nodes[v].fanin, u)
	c.mutated()
	return nil
}

func cutIdx(s []int, x int) []int {
	for i, v := range s {
		if v == x {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// Remove deletes the named nodes and their incident edges.  It fails
// with a StructuralError if any node outside the removed set still
// depends on one of them; use RemoveCascade to delete dependents too.
func (c *Circuit) Remove(ns ...string) error {
	ids := make(map[int]bool, len(ns))
	for _, n := range ns {
		i, ok := c.idx(n)
		if !ok {
			return structErrf("remove", n, "node does not exist")
		}
		ids[i] = true
	}
	for i := range ids {
		for _, o := range c.nodes[i].fanout {
			if !ids[o] {
				return structErrf("remove", c.nodes[i].name,
					"node %q still depends on it", c.nodes[o].name)
			}
		}
	}
	for i := range ids {
		c.kill(i)
	}
	return nil
}

// RemoveCascade deletes n together with its transitive fanout.
func (c *Circuit) RemoveCascade(n string) error {
	i, ok := c.idx(n)
	if !ok {
		return structErrf("remove", n, "node does not exist")
	}
	for _, d := range c.descendants(i) {
		c.kill(d)
	}
	c.kill(i)
	return nil
}

func (c *Circuit) kill(i int) {
	nd := &c.nodes[i]
	for _, f := range nd.fanin {
		c.nodes[f].fanout = cutIdx(c.nodes[f].fanout, i)
	}
	for _, f := range nd.fanout {
		c.nodes[f].fanin = cutIdx(c.nodes[f].fanin, i)
	}
	delete(c.index, nd.name)
	nd.fanin, nd.fanout = nil, nil
	nd.dead = true
	c.mutated()
}

// Relabel renames nodes in place.  The mapping must not collide with
// names that remain in use.
func (c *Circuit) Relabel(mapping map[string]string) error {
	for old := range mapping {
		if !c.Has(old) {
			return structErrf("relabel", old, "node does not exist")
		}
	}
	for old, next := range mapping {
		if old == next {
			continue
		}
		if _, taken := c.index[next]; taken {
			if _, moving := mapping[next]; !moving {
				return structErrf("relabel", next, "name already in use")
			}
		}
	}
	// two passes so that swaps do not clobber each other
	for old, next := range mapping {
		i := c.index[old]
		delete(c.index, old)
		c.nodes[i].name = next
	}
	for _, next := range mapping {
		for i := range c.nodes {
			if !c.nodes[i].dead && c.nodes[i].name == next {
				c.index[next] = i
			}
		}
	}
	c.mutated()
	return nil
}

// Fanin returns the immediate drivers of n, sorted by name.
func (c *Circuit) Fanin(n string) ([]string, error) {
	i, ok := c.idx(n)
	if !ok {
		return nil, structErrf("fanin", n, "node does not exist")
	}
	return c.names(c.nodes[i].fanin), nil
}

// Fanout returns the immediate loads of n, sorted by name.
func (c *Circuit) Fanout(n string) ([]string, error) {
	i, ok := c.idx(n)
	if !ok {
		return nil, structErrf("fanout", n, "node does not exist")
	}
	return c.names(c.nodes[i].fanout), nil
}

func (c *Circuit) names(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = c.nodes[id].name
	}
	sort.Strings(out)
	return out
}

// KindOf returns the kind of n.
func (c *Circuit) KindOf(n string) (Kind, error) {
	i, ok := c.idx(n)
	if !ok {
		return 0, structErrf("kind", n, "node does not exist")
	}
	return c.nodes[i].kind, nil
}

// SetKind changes the kind of n.  Blackbox pin kinds cannot be assigned;
// arity of the existing fanin must remain legal for the new kind.
func (c *Circuit) SetKind(n string, kind Kind) error {
	i, ok := c.idx(n)
	if !ok {
		return structErrf("set kind", n, "node does not exist")
	}
	if kind.IsPin() || kind >= numKinds {
		return structErrf("set kind", n, "cannot assign kind %s", kind)
	}
	fi := len(c.nodes[i].fanin)
	switch kind.Arity() {
	case Nullary:
		if fi > 0 {
			return structErrf("set kind", n, "%s cannot have fanin", kind)
		}
	case Unary:
		if fi > 1 {
			return structErrf("set kind", n, "%s cannot have more than one fanin", kind)
		}
	}
	c.nodes[i].kind = kind
	c.mutated()
	return nil
}

// IsOutput reports whether n is marked as a circuit output.
func (c *Circuit) IsOutput(n string) (bool, error) {
	i, ok := c.idx(n)
	if !ok {
		return false, structErrf("is output", n, "node does not exist")
	}
	return c.nodes[i].output, nil
}

// SetOutput marks or unmarks n as a circuit output.
func (c *Circuit) SetOutput(n string, output bool) error {
	i, ok := c.idx(n)
	if !ok {
		return structErrf("set output", n, "node does not exist")
	}
	c.nodes[i].output = output
	c.mutated()
	return nil
}

// FilterKind returns all live nodes of the given kinds, sorted by name.
func (c *Circuit) FilterKind(kinds ...Kind) []string {
	var out []string
	for i := range c.nodes {
		if c.nodes[i].dead {
			continue
		}
		for _, k := range kinds {
			if c.nodes[i].kind == k {
				out = append(out, c.nodes[i].name)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Inputs returns the input-kind nodes, sorted by name.
func (c *Circuit) Inputs() []string { return c.FilterKind(Input) }

// Outputs returns the output-marked nodes, sorted by name.
func (c *Circuit) Outputs() []string {
	var out []string
	for i := range c.nodes {
		if !c.nodes[i].dead && c.nodes[i].output {
			out = append(out, c.nodes[i].name)
		}
	}
	sort.Strings(out)
	return out
}

// UID derives a name based on n that is not yet used in the circuit.
func (c *Circuit) UID(n string) string {
	if !c.Has(n) {
		return n
	}
	for i := 0; ; i++ {
		u := fmt.Sprintf("%s_%d", n, i)
		if !c.Has(u) {
			return u
		}
	}
}

// Copy returns a deep, independent duplicate with the arena compacted.
func (c *Circuit) Copy() *Circuit {
	cp, err := c.CloneRenamed(func(n string) string { return n })
	if err != nil {
		// the identity renamer cannot collide
		panic(err)
	}
	return cp
}

// CloneRenamed returns a disjoint copy of c with every node name passed
// through rename.  It is the primitive all transforms build on; rename
// must be injective over the live node names.
func (c *Circuit) CloneRenamed(rename func(string) string) (*Circuit, error) {
	cp := New(c.name)
	remap := make([]int, len(c.nodes))
	for i := range c.nodes {
		nd := &c.nodes[i]
		if nd.dead {
			remap[i] = -1
			continue
		}
		name := rename(nd.name)
		if cp.Has(name) {
			return nil, structErrf("clone", name, "rename collision")
		}
		remap[i] = cp.alloc(name, nd.kind, nd.output)
	}
	for i := range c.nodes {
		if c.nodes[i].dead {
			continue
		}
		v := remap[i]
		for _, f := range c.nodes[i].fanin {
			u := remap[f]
			cp.nodes[u].fanout = append(cp.nodes[u].fanout, v)
			cp.nodes[v].fanin = append(cp.nodes[v].fanin, u)
		}
	}
	for inst, bb := range c.blackboxes {
		cp.blackboxes[rename(inst)] = bb
	}
	return cp, nil
}

// AddSubcircuit merges a disjoint copy of sc into c with every node
// renamed to prefix_name, inputs converted to buffers and output marks
// stripped, then applies the optional connections (keys are sc
// input/output names, values are nodes of c).  It returns the renaming
// map from sc names to their names in c.
func (c *Circuit) AddSubcircuit(sc *Circuit, prefix string, conns map[string]string) (map[string]string, error) {
	mapping := make(map[string]string, sc.Len())
	for _, n := range sc.Nodes() {
		renamed := prefix + "_" + n
		if c.Has(renamed) {
			return nil, structErrf("add subcircuit", renamed, "name overlaps with %q subcircuit", prefix)
		}
		mapping[n] = renamed
	}
	for inst := range sc.blackboxes {
		if _, ok := c.blackboxes[prefix+"_"+inst]; ok {
			return nil, structErrf("add subcircuit", prefix+"_"+inst, "blackbox already exists")
		}
	}
	scIn := sc.Inputs()
	scOut := sc.Outputs()
	for scN := range conns {
		if !contains(scIn, scN) && !contains(scOut, scN) {
			return nil, structErrf("add subcircuit", scN, "not an input or output of %q", prefix)
		}
	}

	remap := make([]int, len(sc.nodes))
	for i := range sc.nodes {
		nd := &sc.nodes[i]
		if nd.dead {
			remap[i] = -1
			continue
		}
		kind := nd.kind
		if kind == Input {
			kind = Buf
		}
		remap[i] = c.alloc(mapping[nd.name], kind, false)
	}
	for i := range sc.nodes {
		if sc.nodes[i].dead {
			continue
		}
		v := remap[i]
		for _, f := range sc.nodes[i].fanin {
			u := remap[f]
			c.nodes[u].fanout = append(c.nodes[u].fanout, v)
			c.nodes[v].fanin = append(c.nodes[v].fanin, u)
		}
	}
	for inst, bb := range sc.blackboxes {
		c.blackboxes[prefix+"_"+inst] = bb
	}

	for scN, n := range conns {
		if contains(scIn, scN) {
			if err := c.Connect(n, mapping[scN]); err != nil {
				return nil, err
			}
		} else {
			if err := c.Connect(mapping[scN], n); err != nil {
				return nil, err
			}
		}
	}
	return mapping, nil
}

func contains(s []string, x string) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}

// Lint verifies the deferred arity invariant: every gate and pin has at
// least the fanin its kind requires.  Add permits incremental wiring, so
// an under-driven gate is only an error once the circuit is used.
func (c *Circuit) Lint() error {
	for i := range c.nodes {
		nd := &c.nodes[i]
		if nd.dead {
			continue
		}
		switch nd.kind.Arity() {
		case Unary:
			if len(nd.fanin) != 1 {
				return structErrf("lint", nd.name, "%s has %d drivers, wants 1", nd.kind, len(nd.fanin))
			}
		case Nary:
			if len(nd.fanin) == 0 {
				return structErrf("lint", nd.name, "%s has no drivers", nd.kind)
			}
		}
	}
	return nil
}
