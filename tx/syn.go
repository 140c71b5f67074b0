// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package tx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/logger"
	"github.com/circuitgraph/circuitgraph/verilog"
)

// SynthesisError reports a failure of the external synthesis tool.
type SynthesisError struct {
	Tool string
	Msg  string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("tx: %s: %s", e.Tool, e.Msg)
}

// Synthesizer optimizes a netlist and returns the optimized netlist.
// Implementations wrap external tools; tests substitute stubs.
type Synthesizer interface {
	Synth(ctx context.Context, netlist string) (string, error)
}

// Yosys drives a yosys binary through temporary files with a plain
// read/synth/write script.
type Yosys struct {
	// Bin overrides the binary name, default "yosys".
	Bin string
}

func (y Yosys) Synth(ctx context.Context, netlist string) (string, error) {
	bin := y.Bin
	if bin == "" {
		bin = "yosys"
	}
	dir, err := os.MkdirTemp("", "cgsyn")
	if err != nil {
		return "", &SynthesisError{Tool: bin, Msg: err.Error()}
	}
	defer os.RemoveAll(dir)
	in := filepath.Join(dir, "in.v")
	out := filepath.Join(dir, "out.v")
	if err := os.WriteFile(in, []byte(netlist), 0o600); err != nil {
		return "", &SynthesisError{Tool: bin, Msg: err.Error()}
	}
	script := fmt.Sprintf("read_verilog %s; synth; write_verilog -noattr %s", in, out)
	start := time.Now()
	cmd := exec.CommandContext(ctx, bin, "-p", script)
	if msg, err := cmd.CombinedOutput(); err != nil {
		return "", &SynthesisError{Tool: bin, Msg: fmt.Sprintf("%v: %s", err, msg)}
	}
	log := logger.Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("synthesis")
	data, err := os.ReadFile(out)
	if err != nil {
		return "", &SynthesisError{Tool: bin, Msg: err.Error()}
	}
	return string(data), nil
}

// Syn round-trips c through an external synthesizer and parses the
// optimized netlist back, carrying over blackbox interfaces so
// re-emitted instances resolve.
func Syn(ctx context.Context, c *circuit.Circuit, syn Synthesizer) (*circuit.Circuit, error) {
	src, err := verilog.Write(c)
	if err != nil {
		return nil, err
	}
	optimized, err := syn.Synth(ctx, src)
	if err != nil {
		return nil, err
	}
	var bbs []circuit.BlackBox
	for _, bb := range c.Blackboxes() {
		bbs = append(bbs, bb)
	}
	return verilog.Parse(optimized, verilog.WithModule(c.Name()), verilog.WithBlackbox(bbs...))
}
