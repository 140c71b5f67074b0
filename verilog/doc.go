// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package verilog parses a structural netlist subset into circuits and
// writes circuits back out as netlists.
//
// The supported grammar covers module headers in both legacy and ANSI
// style, scalar and vector wire/input/output declarations, primitive
// gate instantiations, generic module instantiation (materialized as
// blackboxes), a restricted assign expression subset (~ & ^ |, selects,
// 1'b0/1'b1), escaped identifiers, and the single clocked storage idiom
// always @(posedge CK) Q <= D.  Anything else in the language fails with
// UnsupportedConstructError; malformed text fails with ParseError.
package verilog
