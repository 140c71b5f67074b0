// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package verilog

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/circuitgraph/circuitgraph/circuit"
)

// ParseOption configures Parse and ParseAll.
type ParseOption func(*parseConfig)

type parseConfig struct {
	module     string
	blackboxes map[string]circuit.BlackBox
}

// WithModule selects which module of a multi-module source to
// materialize.  Without it the source must contain exactly one module.
func WithModule(name string) ParseOption {
	return func(cfg *parseConfig) { cfg.module = name }
}

// WithBlackbox supplies port directions for instantiated modules that
// have no definition in the source text.
func WithBlackbox(bbs ...circuit.BlackBox) ParseOption {
	return func(cfg *parseConfig) {
		for _, bb := range bbs {
			cfg.blackboxes[bb.Name()] = bb
		}
	}
}

// Parse materializes one module of src as a circuit.  Modules
// instantiated but not selected are treated as blackbox interfaces, with
// directions taken from their headers or from WithBlackbox.
func Parse(src string, opts ...ParseOption) (*circuit.Circuit, error) {
	cfg := newConfig(opts)
	mods, err := parseSource(src)
	if err != nil {
		return nil, err
	}
	var mod *moduleAST
	switch {
	case cfg.module != "":
		for _, m := range mods {
			if m.name == cfg.module {
				mod = m
				break
			}
		}
		if mod == nil {
			return nil, parseErrf(1, "no module named %q in source", cfg.module)
		}
	case len(mods) == 1:
		mod = mods[0]
	case len(mods) == 0:
		return nil, parseErrf(1, "no module in source")
	default:
		return nil, parseErrf(1, "source defines %d modules, select one with WithModule", len(mods))
	}
	return elaborate(mod, mods, cfg)
}

// ParseAll materializes every module in src.
func ParseAll(src string, opts ...ParseOption) (map[string]*circuit.Circuit, error) {
	cfg := newConfig(opts)
	mods, err := parseSource(src)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*circuit.Circuit, len(mods))
	for _, m := range mods {
		c, err := elaborate(m, mods, cfg)
		if err != nil {
			return nil, err
		}
		out[m.name] = c
	}
	return out, nil
}

func newConfig(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{blackboxes: make(map[string]circuit.BlackBox)}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// ---- syntax ----

type dir uint8

const (
	dirWire dir = iota
	dirInput
	dirOutput
)

type decl struct {
	dir      dir
	hasDir   bool
	vec      bool
	msb, lsb int
	line     int
}

type selKind uint8

const (
	selNone selKind = iota
	selBit
	selPart
)

type expr interface {
	loc() int
}

type identExpr struct {
	name   string
	sel    selKind
	hi, lo int
	line   int
}

type constExpr struct {
	one  bool
	line int
}

type unaryExpr struct {
	x    expr
	line int
}

type binExpr struct {
	op   byte // '&', '^' or '|'
	x, y expr
	line int
}

func (e *identExpr) loc() int { return e.line }
func (e *constExpr) loc() int { return e.line }
func (e *unaryExpr) loc() int { return e.line }
func (e *binExpr) loc() int   { return e.line }

type gateInst struct {
	kind circuit.Kind
	args []expr // args[0] is the driven net
	line int
}

type modInst struct {
	module, instance string
	pos              []expr
	named            map[string]expr
	line             int
}

type assignStmt struct {
	lhs  *identExpr
	rhs  expr
	line int
}

type ffStmt struct {
	clk  string
	q, d *identExpr
	line int
}

type moduleAST struct {
	name    string
	ports   []string
	decls   map[string]*decl
	gates   []gateInst
	insts   []modInst
	assigns []assignStmt
	ffs     []ffStmt
	line    int
}

type parser struct {
	toks []token
	pos  int
}

func parseSource(src string) ([]*moduleAST, error) {
	toks, err := newLexer(src).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var mods []*moduleAST
	for p.cur().kind != tokEOF {
		if !p.isIdent("module") {
			return nil, parseErrf(p.cur().line, "expected module, got %q", p.cur().text)
		}
		m, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isIdent(s string) bool {
	return p.cur().kind == tokIdent && p.cur().text == s
}

func (p *parser) isSym(s string) bool {
	return p.cur().kind == tokSymbol && p.cur().text == s
}

func (p *parser) expectSym(s string) error {
	if !p.isSym(s) {
		return parseErrf(p.cur().line, "expected %q, got %q", s, p.cur().text)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (token, error) {
	if p.cur().kind != tokIdent {
		return token{}, parseErrf(p.cur().line, "expected identifier, got %q", p.cur().text)
	}
	return p.advance(), nil
}

func (p *parser) expectInt() (int, error) {
	t := p.cur()
	if t.kind != tokNumber {
		return 0, parseErrf(t.line, "expected number, got %q", t.text)
	}
	v, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, parseErrf(t.line, "bad index %q", t.text)
	}
	p.advance()
	return v, nil
}

func (p *parser) parseModule() (*moduleAST, error) {
	line := p.advance().line // module
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	m := &moduleAST{name: name.text, decls: make(map[string]*decl), line: line}
	if p.isSym("#") {
		return nil, unsupported(p.cur().line, "parameterized module")
	}
	if p.isSym("(") {
		p.advance()
		if err := p.parseHeaderPorts(m); err != nil {
			return nil, err
		}
	}
	if err := p.expectSym(";"); err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return nil, parseErrf(m.line, "module %q not terminated", m.name)
		}
		if t.kind != tokIdent {
			return nil, parseErrf(t.line, "expected statement, got %q", t.text)
		}
		switch t.text {
		case "endmodule":
			p.advance()
			return m, nil
		case "input":
			p.advance()
			err = p.parseDecl(m, dirInput, true)
		case "output":
			p.advance()
			err = p.parseDecl(m, dirOutput, true)
		case "inout":
			return nil, unsupported(t.line, "inout port")
		case "wire", "reg":
			p.advance()
			err = p.parseDecl(m, dirWire, false)
		case "assign":
			p.advance()
			err = p.parseAssign(m)
		case "always":
			p.advance()
			err = p.parseAlways(m)
		case "generate":
			return nil, unsupported(t.line, "generate block")
		case "initial", "specify", "function", "task", "parameter", "localparam", "tri", "supply0", "supply1":
			return nil, unsupported(t.line, t.text+" construct")
		default:
			if kind, ok := circuit.KindFromString(t.text); ok && kind.IsGate() {
				p.advance()
				err = p.parseGate(m, kind)
			} else {
				err = p.parseInst(m)
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseHeaderPorts handles both header styles; the opening paren is
// already consumed.
func (p *parser) parseHeaderPorts(m *moduleAST) error {
	if p.isSym(")") {
		p.advance()
		return nil
	}
	if p.isIdent("input") || p.isIdent("output") || p.isIdent("inout") {
		return p.parseANSIPorts(m)
	}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		m.ports = append(m.ports, name.text)
		m.decls[name.text] = &decl{line: name.line}
		if p.isSym(")") {
			p.advance()
			return nil
		}
		if err := p.expectSym(","); err != nil {
			return err
		}
	}
}

func (p *parser) parseANSIPorts(m *moduleAST) error {
	d := dirWire
	hasDir := false
	vec := false
	msb, lsb := 0, 0
	for {
		switch {
		case p.isIdent("input"), p.isIdent("output"):
			if p.isIdent("input") {
				d = dirInput
			} else {
				d = dirOutput
			}
			hasDir = true
			vec = false
			p.advance()
			if p.isIdent("wire") || p.isIdent("reg") {
				p.advance()
			}
			if p.isSym("[") {
				var err error
				msb, lsb, err = p.parseRange()
				if err != nil {
					return err
				}
				vec = true
			}
		case p.isIdent("inout"):
			return unsupported(p.cur().line, "inout port")
		}
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		if !hasDir {
			return parseErrf(name.line, "port %q has no direction", name.text)
		}
		m.ports = append(m.ports, name.text)
		m.decls[name.text] = &decl{dir: d, hasDir: true, vec: vec, msb: msb, lsb: lsb, line: name.line}
		if p.isSym(")") {
			p.advance()
			return nil
		}
		if err := p.expectSym(","); err != nil {
			return err
		}
	}
}

func (p *parser) parseRange() (msb, lsb int, err error) {
	if err = p.expectSym("["); err != nil {
		return
	}
	if msb, err = p.expectInt(); err != nil {
		return
	}
	if err = p.expectSym(":"); err != nil {
		return
	}
	if lsb, err = p.expectInt(); err != nil {
		return
	}
	if msb < lsb {
		return 0, 0, parseErrf(p.cur().line, "descending range [%d:%d]", msb, lsb)
	}
	err = p.expectSym("]")
	return
}

func (p *parser) parseDecl(m *moduleAST, d dir, hasDir bool) error {
	if p.isIdent("wire") || p.isIdent("reg") {
		p.advance()
	}
	vec := false
	msb, lsb := 0, 0
	if p.isSym("[") {
		var err error
		msb, lsb, err = p.parseRange()
		if err != nil {
			return err
		}
		vec = true
	}
	for {
		name, err := p.expectIdent()
		if err != nil {
			return err
		}
		if old, ok := m.decls[name.text]; ok {
			if old.hasDir && hasDir && old.dir != d {
				return parseErrf(name.line, "conflicting declarations of %q", name.text)
			}
			if hasDir {
				old.dir, old.hasDir = d, true
			}
			if vec {
				old.vec, old.msb, old.lsb = true, msb, lsb
			}
		} else {
			m.decls[name.text] = &decl{dir: d, hasDir: hasDir, vec: vec, msb: msb, lsb: lsb, line: name.line}
		}
		if p.isSym(";") {
			p.advance()
			return nil
		}
		if err := p.expectSym(","); err != nil {
			return err
		}
	}
}

// parseNet parses the restricted operand form allowed in gate and
// instance argument positions: a constant, or an identifier with an
// optional bit or part select.
func (p *parser) parseNet() (expr, error) {
	t := p.cur()
	if t.kind == tokNumber {
		p.advance()
		return parseConst(t)
	}
	if t.kind != tokIdent {
		if t.text == "{" {
			return nil, unsupported(t.line, "concatenation")
		}
		return nil, parseErrf(t.line, "expected net, got %q", t.text)
	}
	p.advance()
	e := &identExpr{name: t.text, line: t.line}
	if p.isSym("[") {
		p.advance()
		hi, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		e.sel, e.hi, e.lo = selBit, hi, hi
		if p.isSym(":") {
			p.advance()
			lo, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, parseErrf(t.line, "descending part-select on %q", t.text)
			}
			e.sel, e.lo = selPart, lo
		}
		if err := p.expectSym("]"); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func parseConst(t token) (expr, error) {
	switch t.text {
	case "1'b0", "1'd0", "1'h0":
		return &constExpr{one: false, line: t.line}, nil
	case "1'b1", "1'd1", "1'h1":
		return &constExpr{one: true, line: t.line}, nil
	}
	return nil, unsupported(t.line, fmt.Sprintf("numeric literal %s", t.text))
}

func (p *parser) parseGate(m *moduleAST, kind circuit.Kind) error {
	for {
		line := p.cur().line
		if p.cur().kind == tokIdent {
			p.advance() // optional instance name, discarded
		}
		if err := p.expectSym("("); err != nil {
			return err
		}
		var args []expr
		for {
			e, err := p.parseNet()
			if err != nil {
				return err
			}
			args = append(args, e)
			if p.isSym(")") {
				p.advance()
				break
			}
			if err := p.expectSym(","); err != nil {
				return err
			}
		}
		if len(args) < 2 {
			return parseErrf(line, "%s gate needs an output and at least one input", kind)
		}
		if kind.Arity() == circuit.Unary && len(args) != 2 {
			return parseErrf(line, "%s gate takes exactly one input", kind)
		}
		m.gates = append(m.gates, gateInst{kind: kind, args: args, line: line})
		if p.isSym(";") {
			p.advance()
			return nil
		}
		if err := p.expectSym(","); err != nil {
			return err
		}
	}
}

func (p *parser) parseInst(m *moduleAST) error {
	modName, err := p.expectIdent()
	if err != nil {
		return err
	}
	if p.isSym("#") {
		return unsupported(p.cur().line, "parameterized instantiation")
	}
	instName, err := p.expectIdent()
	if err != nil {
		return err
	}
	if err := p.expectSym("("); err != nil {
		return err
	}
	inst := modInst{module: modName.text, instance: instName.text, line: modName.line}
	if p.isSym(".") {
		inst.named = make(map[string]expr)
		for {
			if err := p.expectSym("."); err != nil {
				return err
			}
			port, err := p.expectIdent()
			if err != nil {
				return err
			}
			if err := p.expectSym("("); err != nil {
				return err
			}
			if !p.isSym(")") { // .port() leaves the port unconnected
				e, err := p.parseNet()
				if err != nil {
					return err
				}
				inst.named[port.text] = e
			}
			if err := p.expectSym(")"); err != nil {
				return err
			}
			if p.isSym(")") {
				p.advance()
				break
			}
			if err := p.expectSym(","); err != nil {
				return err
			}
		}
	} else {
		for {
			e, err := p.parseNet()
			if err != nil {
				return err
			}
			inst.pos = append(inst.pos, e)
			if p.isSym(")") {
				p.advance()
				break
			}
			if err := p.expectSym(","); err != nil {
				return err
			}
		}
	}
	if err := p.expectSym(";"); err != nil {
		return err
	}
	m.insts = append(m.insts, inst)
	return nil
}

func (p *parser) parseAssign(m *moduleAST) error {
	t := p.cur()
	if t.text == "{" {
		return unsupported(t.line, "concatenation on assign left-hand side")
	}
	lhsNet, err := p.parseNet()
	if err != nil {
		return err
	}
	lhs, ok := lhsNet.(*identExpr)
	if !ok {
		return parseErrf(t.line, "constant on assign left-hand side")
	}
	if lhs.sel == selPart {
		return unsupported(t.line, "part-select on assign left-hand side")
	}
	if err := p.expectSym("="); err != nil {
		return err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return err
	}
	if err := p.expectSym(";"); err != nil {
		return err
	}
	m.assigns = append(m.assigns, assignStmt{lhs: lhs, rhs: rhs, line: t.line})
	return nil
}

// expression grammar, loosest binding first: | then ^ then & then ~
func (p *parser) parseExpr() (expr, error) {
	return p.parseBin('|', func() (expr, error) {
		return p.parseBin('^', func() (expr, error) {
			return p.parseBin('&', p.parseUnary)
		})
	})
}

func (p *parser) parseBin(op byte, sub func() (expr, error)) (expr, error) {
	x, err := sub()
	if err != nil {
		return nil, err
	}
	for p.isSym(string(op)) {
		line := p.advance().line
		y, err := sub()
		if err != nil {
			return nil, err
		}
		x = &binExpr{op: op, x: x, y: y, line: line}
	}
	return x, nil
}

func (p *parser) parseUnary() (expr, error) {
	t := p.cur()
	if t.kind == tokSymbol {
		switch t.text {
		case "~":
			p.advance()
			x, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return &unaryExpr{x: x, line: t.line}, nil
		case "&&", "||", "!":
			return nil, unsupported(t.line, fmt.Sprintf("logical operator %s", t.text))
		case "==", "!=", "?":
			return nil, unsupported(t.line, fmt.Sprintf("operator %s", t.text))
		case "+", "-", "*":
			return nil, unsupported(t.line, fmt.Sprintf("arithmetic operator %s", t.text))
		case "{":
			return nil, unsupported(t.line, "concatenation")
		case "(":
			p.advance()
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectSym(")"); err != nil {
				return nil, err
			}
			return x, nil
		}
	}
	return p.parseNet()
}

// parseAlways accepts only the clocked storage idiom:
// always @(posedge CK) Q <= D;  with an optional begin/end block of
// such nonblocking assignments.  Everything else is out of subset.
func (p *parser) parseAlways(m *moduleAST) error {
	line := p.cur().line
	if err := p.expectSym("@"); err != nil {
		return err
	}
	if err := p.expectSym("("); err != nil {
		return err
	}
	if !p.isIdent("posedge") {
		return unsupported(line, "always block without posedge clock")
	}
	p.advance()
	clk, err := p.expectIdent()
	if err != nil {
		return err
	}
	if err := p.expectSym(")"); err != nil {
		return err
	}
	block := false
	if p.isIdent("begin") {
		block = true
		p.advance()
	}
	for {
		q, err := p.parseNet()
		if err != nil {
			return err
		}
		qi, ok := q.(*identExpr)
		if !ok || qi.sel == selPart {
			return unsupported(line, "always block target")
		}
		if !p.isSym("<=") {
			return unsupported(p.cur().line, "blocking assignment in always block")
		}
		p.advance()
		d, err := p.parseNet()
		if err != nil {
			return err
		}
		di, ok := d.(*identExpr)
		if !ok || di.sel == selPart {
			return unsupported(line, "always block source expression")
		}
		if err := p.expectSym(";"); err != nil {
			return err
		}
		m.ffs = append(m.ffs, ffStmt{clk: clk.text, q: qi, d: di, line: line})
		if !block {
			return nil
		}
		if p.isIdent("end") {
			p.advance()
			return nil
		}
	}
}

// ---- elaboration ----

type elaborator struct {
	mod    *moduleAST
	sigs   map[string]*moduleAST
	cfg    *parseConfig
	c      *circuit.Circuit
	driven map[string]bool
	ties   [2]string
}

func elaborate(mod *moduleAST, all []*moduleAST, cfg *parseConfig) (*circuit.Circuit, error) {
	e := &elaborator{
		mod:    mod,
		sigs:   make(map[string]*moduleAST, len(all)),
		cfg:    cfg,
		c:      circuit.New(mod.name),
		driven: make(map[string]bool),
	}
	for _, m := range all {
		e.sigs[m.name] = m
	}
	for _, port := range mod.ports {
		if d := mod.decls[port]; !d.hasDir {
			return nil, parseErrf(d.line, "port %q has no direction", port)
		}
	}
	names := make([]string, 0, len(mod.decls))
	for n := range mod.decls {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		d := mod.decls[n]
		for _, bit := range declBits(n, d) {
			kind := circuit.Buf
			if d.dir == dirInput {
				kind = circuit.Input
			}
			var opts []circuit.AddOption
			if d.dir == dirOutput {
				opts = append(opts, circuit.AsOutput())
			}
			if _, err := e.c.Add(bit, kind, opts...); err != nil {
				return nil, err
			}
		}
	}
	for _, g := range mod.gates {
		if err := e.elabGate(g); err != nil {
			return nil, err
		}
	}
	for _, inst := range mod.insts {
		if err := e.elabInst(inst); err != nil {
			return nil, err
		}
	}
	for _, ff := range mod.ffs {
		if err := e.elabFF(ff); err != nil {
			return nil, err
		}
	}
	for _, a := range mod.assigns {
		if err := e.elabAssign(a); err != nil {
			return nil, err
		}
	}
	return e.c, nil
}

func declBits(name string, d *decl) []string {
	if !d.vec {
		return []string{name}
	}
	bits := make([]string, 0, d.msb-d.lsb+1)
	for i := d.lsb; i <= d.msb; i++ {
		bits = append(bits, fmt.Sprintf("%s[%d]", name, i))
	}
	return bits
}

// scalarBit resolves an operand expression to a single node name,
// implicitly declaring undeclared scalar nets.
func (e *elaborator) scalarBit(x expr) (string, error) {
	switch v := x.(type) {
	case *constExpr:
		return e.tie(v.one)
	case *identExpr:
		bits, err := e.identBits(v)
		if err != nil {
			return "", err
		}
		if len(bits) != 1 {
			return "", parseErrf(v.line, "vector %q used where a single bit is required", v.name)
		}
		return bits[0], nil
	}
	return "", parseErrf(x.loc(), "expression used where a net is required")
}

func (e *elaborator) identBits(v *identExpr) ([]string, error) {
	d, declared := e.mod.decls[v.name]
	switch v.sel {
	case selNone:
		if declared && d.vec {
			return declBits(v.name, d), nil
		}
		if !declared {
			// implicit scalar net
			if !e.c.Has(v.name) {
				if _, err := e.c.Add(v.name, circuit.Buf); err != nil {
					return nil, err
				}
			}
		}
		return []string{v.name}, nil
	default:
		if !declared || !d.vec {
			return nil, parseErrf(v.line, "bit-select on non-vector %q", v.name)
		}
		if v.hi > d.msb || v.lo < d.lsb {
			return nil, parseErrf(v.line, "select [%d:%d] out of range of %q [%d:%d]", v.hi, v.lo, v.name, d.msb, d.lsb)
		}
		bits := make([]string, 0, v.hi-v.lo+1)
		for i := v.lo; i <= v.hi; i++ {
			bits = append(bits, fmt.Sprintf("%s[%d]", v.name, i))
		}
		return bits, nil
	}
}

// tie returns the constant node for the given value, creating it on
// first use.
func (e *elaborator) tie(one bool) (string, error) {
	i := 0
	kind := circuit.Zero
	if one {
		i, kind = 1, circuit.One
	}
	if e.ties[i] == "" {
		name, err := e.c.Add(fmt.Sprintf("tie%d", i), kind, circuit.WithUID())
		if err != nil {
			return "", err
		}
		e.ties[i] = name
	}
	return e.ties[i], nil
}

// drive turns the placeholder net into a gate of the given kind driven
// by fanin.  A net may be driven at most once.
func (e *elaborator) drive(net string, kind circuit.Kind, fanin []string, line int) error {
	if e.driven[net] {
		return unsupported(line, fmt.Sprintf("multiple drivers on net %s", net))
	}
	k, err := e.c.KindOf(net)
	if err != nil {
		return parseErrf(line, "undeclared net %q", net)
	}
	if k == circuit.Input {
		return parseErrf(line, "assignment to input %q", net)
	}
	if err := e.c.SetKind(net, kind); err != nil {
		return err
	}
	for _, f := range fanin {
		if err := e.c.Connect(f, net); err != nil {
			return err
		}
	}
	e.driven[net] = true
	return nil
}

func (e *elaborator) elabGate(g gateInst) error {
	out, ok := g.args[0].(*identExpr)
	if !ok {
		return parseErrf(g.line, "%s gate output must be a net", g.kind)
	}
	if out.sel == selPart {
		return unsupported(g.line, "part-select gate output")
	}
	outBit, err := e.scalarBit(out)
	if err != nil {
		return err
	}
	fanin := make([]string, 0, len(g.args)-1)
	for _, a := range g.args[1:] {
		bit, err := e.scalarBit(a)
		if err != nil {
			return err
		}
		fanin = append(fanin, bit)
	}
	return e.drive(outBit, g.kind, fanin, g.line)
}

// iface resolves the blackbox interface of an instantiated module:
// caller-supplied definitions win, then module headers elsewhere in the
// source.  Vector ports expand to one pin per bit.
func (e *elaborator) iface(inst modInst) (circuit.BlackBox, error) {
	if bb, ok := e.cfg.blackboxes[inst.module]; ok {
		return bb, nil
	}
	sig, ok := e.sigs[inst.module]
	if !ok {
		return circuit.BlackBox{}, parseErrf(inst.line,
			"module %q has no definition and no supplied blackbox interface", inst.module)
	}
	var in, out []string
	for _, port := range sig.ports {
		d := sig.decls[port]
		if !d.hasDir {
			return circuit.BlackBox{}, parseErrf(inst.line, "port %q of %q has no direction", port, inst.module)
		}
		bits := declBits(port, d)
		if d.dir == dirInput {
			in = append(in, bits...)
		} else {
			out = append(out, bits...)
		}
	}
	return circuit.NewBlackBox(inst.module, in, out), nil
}

func (e *elaborator) elabInst(inst modInst) error {
	bb, err := e.iface(inst)
	if err != nil {
		return err
	}
	// port name → connection expression
	byPort := inst.named
	if byPort == nil {
		byPort = make(map[string]expr, len(inst.pos))
		order := e.portOrder(inst, bb)
		if len(inst.pos) > len(order) {
			return parseErrf(inst.line, "too many connections for %q", inst.module)
		}
		for i, x := range inst.pos {
			byPort[order[i]] = x
		}
	}
	conns := make(map[string]string, len(byPort))
	inPins := make(map[string]bool, len(bb.Inputs()))
	for _, p := range bb.Inputs() {
		inPins[p] = true
	}
	outPins := make(map[string]bool, len(bb.Outputs()))
	for _, p := range bb.Outputs() {
		outPins[p] = true
	}
	for port, x := range byPort {
		bits, err := e.connBits(x)
		if err != nil {
			return err
		}
		pins := e.portPins(port, inPins, outPins)
		if pins == nil {
			return parseErrf(inst.line, "%q is not a port of %q", port, inst.module)
		}
		if len(pins) != len(bits) {
			return parseErrf(inst.line, "port %q of %q is %d bits wide, connected to %d",
				port, inst.module, len(pins), len(bits))
		}
		for i, pin := range pins {
			conns[pin] = bits[i]
			if outPins[pin] {
				if e.driven[bits[i]] {
					return unsupported(inst.line, fmt.Sprintf("multiple drivers on net %s", bits[i]))
				}
				if k, err := e.c.KindOf(bits[i]); err == nil && k == circuit.Input {
					return parseErrf(inst.line, "instance output drives input %q", bits[i])
				}
				e.driven[bits[i]] = true
			}
		}
	}
	if err := e.c.AddBlackbox(inst.instance, bb, conns); err != nil {
		return parseErrf(inst.line, "instance %q: %v", inst.instance, err)
	}
	return nil
}

// portOrder reconstructs header port order in pin space for positional
// connections.
func (e *elaborator) portOrder(inst modInst, bb circuit.BlackBox) []string {
	if sig, ok := e.sigs[inst.module]; ok && len(sig.ports) > 0 {
		return sig.ports
	}
	return append(bb.Inputs(), bb.Outputs()...)
}

// portPins expands a connected port name to its pin names.  A scalar
// port is its own single pin; a vector port contributes its bit pins in
// ascending index order.
func (e *elaborator) portPins(port string, in, out map[string]bool) []string {
	if in[port] || out[port] {
		return []string{port}
	}
	type pin struct {
		name string
		idx  int
	}
	var pins []pin
	for _, set := range []map[string]bool{in, out} {
		for name := range set {
			var idx int
			if n, err := fmt.Sscanf(name, port+"[%d]", &idx); err == nil && n == 1 {
				pins = append(pins, pin{name, idx})
			}
		}
	}
	if len(pins) == 0 {
		return nil
	}
	sort.Slice(pins, func(i, j int) bool { return pins[i].idx < pins[j].idx })
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = p.name
	}
	return names
}

func (e *elaborator) connBits(x expr) ([]string, error) {
	switch v := x.(type) {
	case *constExpr:
		bit, err := e.tie(v.one)
		if err != nil {
			return nil, err
		}
		return []string{bit}, nil
	case *identExpr:
		return e.identBits(v)
	}
	return nil, parseErrf(x.loc(), "expression used where a net is required")
}

func (e *elaborator) elabFF(ff ffStmt) error {
	qBit, err := e.scalarBit(ff.q)
	if err != nil {
		return err
	}
	dBit, err := e.scalarBit(ff.d)
	if err != nil {
		return err
	}
	clkBit, err := e.scalarBit(&identExpr{name: ff.clk, line: ff.line})
	if err != nil {
		return err
	}
	if e.driven[qBit] {
		return unsupported(ff.line, fmt.Sprintf("multiple drivers on net %s", qBit))
	}
	e.driven[qBit] = true
	bb := circuit.NewBlackBox("dff", []string{"CK", "D"}, []string{"Q"})
	inst := e.c.UID(qBit + "_reg")
	if err := e.c.AddBlackbox(inst, bb, map[string]string{"CK": clkBit, "D": dBit, "Q": qBit}); err != nil {
		return parseErrf(ff.line, "flip-flop on %q: %v", qBit, err)
	}
	return nil
}

func (e *elaborator) elabAssign(a assignStmt) error {
	lhsBits, err := e.identBits(a.lhs)
	if err != nil {
		return err
	}
	base := a.lhs.name
	return e.elabExprInto(lhsBits, a.rhs, base)
}

// elabExprInto realizes the expression tree as gates, making the top
// node of each bit the target net itself rather than inserting a buffer.
func (e *elaborator) elabExprInto(targets []string, x expr, base string) error {
	switch v := x.(type) {
	case *constExpr:
		if len(targets) != 1 {
			return parseErrf(v.line, "assign width mismatch: %d bits from a 1-bit constant", len(targets))
		}
		kind := circuit.Zero
		if v.one {
			kind = circuit.One
		}
		return e.drive(targets[0], kind, nil, v.line)
	case *identExpr:
		bits, err := e.identBits(v)
		if err != nil {
			return err
		}
		if len(bits) != len(targets) {
			return parseErrf(v.line, "assign width mismatch: %d bits into %d", len(bits), len(targets))
		}
		for i, t := range targets {
			if err := e.drive(t, circuit.Buf, []string{bits[i]}, v.line); err != nil {
				return err
			}
		}
		return nil
	case *unaryExpr:
		bits, err := e.elabExprBits(v.x, base)
		if err != nil {
			return err
		}
		if len(bits) != len(targets) {
			return parseErrf(v.line, "assign width mismatch: %d bits into %d", len(bits), len(targets))
		}
		for i, t := range targets {
			if err := e.drive(t, circuit.Not, []string{bits[i]}, v.line); err != nil {
				return err
			}
		}
		return nil
	case *binExpr:
		xb, err := e.elabExprBits(v.x, base)
		if err != nil {
			return err
		}
		yb, err := e.elabExprBits(v.y, base)
		if err != nil {
			return err
		}
		if len(xb) != len(yb) {
			return parseErrf(v.line, "operand width mismatch: %d and %d", len(xb), len(yb))
		}
		if len(xb) != len(targets) {
			return parseErrf(v.line, "assign width mismatch: %d bits into %d", len(xb), len(targets))
		}
		kind := binKind(v.op)
		for i, t := range targets {
			if err := e.drive(t, kind, []string{xb[i], yb[i]}, v.line); err != nil {
				return err
			}
		}
		return nil
	}
	return parseErrf(x.loc(), "unhandled expression")
}

// elabExprBits realizes a subexpression into fresh uid-named gate nodes
// and returns the per-bit node names.
func (e *elaborator) elabExprBits(x expr, base string) ([]string, error) {
	switch v := x.(type) {
	case *constExpr:
		bit, err := e.tie(v.one)
		if err != nil {
			return nil, err
		}
		return []string{bit}, nil
	case *identExpr:
		return e.identBits(v)
	case *unaryExpr:
		bits, err := e.elabExprBits(v.x, base)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(bits))
		for i, b := range bits {
			n, err := e.c.Add(base+"_not", circuit.Not, circuit.WithUID(), circuit.WithFanin(b))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case *binExpr:
		xb, err := e.elabExprBits(v.x, base)
		if err != nil {
			return nil, err
		}
		yb, err := e.elabExprBits(v.y, base)
		if err != nil {
			return nil, err
		}
		if len(xb) != len(yb) {
			return nil, parseErrf(v.line, "operand width mismatch: %d and %d", len(xb), len(yb))
		}
		kind := binKind(v.op)
		out := make([]string, len(xb))
		for i := range xb {
			n, err := e.c.Add(fmt.Sprintf("%s_%s", base, kind), kind, circuit.WithUID(),
				circuit.WithFanin(xb[i], yb[i]))
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, parseErrf(x.loc(), "unhandled expression")
}

func binKind(op byte) circuit.Kind {
	switch op {
	case '&':
		return circuit.And
	case '^':
		return circuit.Xor
	default:
		return circuit.Or
	}
}
