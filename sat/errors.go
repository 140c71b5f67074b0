// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package sat

import "fmt"

// SolverError reports an oracle that is unavailable, timed out or
// returned an unusable response.  Queries are never retried here;
// satisfiability calls are not safe to retry silently.
type SolverError struct {
	Op  string
	Msg string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("sat: %s: %s", e.Op, e.Msg)
}
