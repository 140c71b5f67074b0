// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package verilog

import "fmt"

// ParseError reports malformed netlist syntax.  It aborts the parse of
// the enclosing module.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("verilog: line %d: %s", e.Line, e.Msg)
}

func parseErrf(line int, format string, args ...interface{}) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedConstructError reports syntactically valid input that falls
// outside the supported structural subset.  It names the construct and
// is never silently degraded into an approximation.
type UnsupportedConstructError struct {
	Line      int
	Construct string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("verilog: line %d: unsupported construct: %s", e.Line, e.Construct)
}

func unsupported(line int, construct string) error {
	return &UnsupportedConstructError{Line: line, Construct: construct}
}
