// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package circuit provides a mutable directed-graph representation of
// gate-level logic netlists.
//
// Every node in a Circuit is a named logic gate, input, constant, or
// blackbox pin; every edge is a driver→load connection.  Any node may
// additionally be marked as a circuit output.  Structural invariants
// (unique names, kind arity, single drivers on unary loads, acyclicity
// outside blackbox boundaries) are enforced at the point of mutation and
// surface as StructuralError.
//
// Circuits are not safe for concurrent mutation.  Read-only use from
// multiple goroutines is safe, which is what the transform and analysis
// packages rely on.
package circuit
