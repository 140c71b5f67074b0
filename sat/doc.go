// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package sat encodes circuits into CNF and answers satisfiability and
// model counting queries about them.
//
// The Tseitin encoding gives every live node one solver variable, so a
// model maps back to a named assignment of the circuit.  Solving is
// backed by gini in process; approximate counting shells out to an
// external projected model counter.
package sat
