// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import "fmt"

// StructuralError reports a violated graph invariant: a duplicate or
// dangling name, an illegal arity, a second driver on a single-bit load,
// or a combinational cycle.  It is raised at the point of violation,
// never deferred.
type StructuralError struct {
	Op   string // the mutating operation, e.g. "add", "connect"
	Node string // the offending node, if one is identifiable
	Msg  string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("circuit: %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("circuit: %s %q: %s", e.Op, e.Node, e.Msg)
}

func structErrf(op, node, format string, args ...interface{}) error {
	return &StructuralError{Op: op, Node: node, Msg: fmt.Sprintf(format, args...)}
}
