// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package circuit

import "fmt"

// Kind is the gate kind of a node.  The set of kinds is closed: every
// kind carries a fixed arity rule and, in package sat, a fixed clause
// template.
type Kind uint8

const (
	Buf Kind = iota
	Not
	And
	Or
	Nand
	Nor
	Xor
	Xnor
	Input
	Zero
	One
	X
	BBInput
	BBOutput
	numKinds
)

// Arity classifies how many drivers a kind accepts.
type Arity uint8

const (
	// Nullary kinds accept no drivers (sources).
	Nullary Arity = iota
	// Unary kinds accept exactly one driver.
	Unary
	// Nary kinds accept one or more drivers.
	Nary
)

var kindNames = [numKinds]string{
	Buf:      "buf",
	Not:      "not",
	And:      "and",
	Or:       "or",
	Nand:     "nand",
	Nor:      "nor",
	Xor:      "xor",
	Xnor:     "xnor",
	Input:    "input",
	Zero:     "0",
	One:      "1",
	X:        "x",
	BBInput:  "bb_input",
	BBOutput: "bb_output",
}

var kindArity = [numKinds]Arity{
	Buf:      Unary,
	Not:      Unary,
	And:      Nary,
	Or:       Nary,
	Nand:     Nary,
	Nor:      Nary,
	Xor:      Nary,
	Xnor:     Nary,
	Input:    Nullary,
	Zero:     Nullary,
	One:      Nullary,
	X:        Nullary,
	BBInput:  Unary,
	BBOutput: Nullary,
}

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Arity returns the arity rule of k.
func (k Kind) Arity() Arity {
	return kindArity[k]
}

// IsGate reports whether k is a primitive logic gate.
func (k Kind) IsGate() bool {
	return k <= Xnor
}

// IsConst reports whether k is a constant or unknown value.
func (k Kind) IsConst() bool {
	return k == Zero || k == One || k == X
}

// IsPin reports whether k is a blackbox boundary pin.
func (k Kind) IsPin() bool {
	return k == BBInput || k == BBOutput
}

// KindFromString maps a kind name ("and", "input", "1", ...) back to its
// Kind.  The second return is false for unknown names.
func KindFromString(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
