// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package bitutil

import (
	"reflect"
	"testing"
)

func TestClog2(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 1024: 10, 1025: 11}
	for n, want := range cases {
		if got := Clog2(n); got != want {
			t.Errorf("Clog2(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestIntToBin(t *testing.T) {
	if got := IntToBin(5, 4); !reflect.DeepEqual(got, []bool{false, true, false, true}) {
		t.Errorf("IntToBin(5, 4) = %v", got)
	}
	if got := IntToBin(0, 2); !reflect.DeepEqual(got, []bool{false, false}) {
		t.Errorf("IntToBin(0, 2) = %v", got)
	}
}
