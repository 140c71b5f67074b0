// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/verilog"
)

// loadCircuit reads a netlist by extension: .v structural verilog,
// .cg the binary circuit format.
func loadCircuit(path, module string) (*circuit.Circuit, error) {
	switch filepath.Ext(path) {
	case ".v":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "cgraph")
		}
		var opts []verilog.ParseOption
		if module != "" {
			opts = append(opts, verilog.WithModule(module))
		}
		return verilog.Parse(string(data), opts...)
	case ".cg":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "cgraph")
		}
		defer f.Close()
		c := circuit.New(strings.TrimSuffix(filepath.Base(path), ".cg"))
		if _, err := c.ReadFrom(f); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, errors.Errorf("cgraph: unsupported netlist format %q", path)
	}
}

// saveCircuit writes a netlist by extension, like loadCircuit.
func saveCircuit(c *circuit.Circuit, path string) error {
	switch filepath.Ext(path) {
	case ".v":
		src, err := verilog.Write(c)
		if err != nil {
			return err
		}
		return errors.Wrap(os.WriteFile(path, []byte(src), 0o644), "cgraph")
	case ".cg":
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "cgraph")
		}
		defer f.Close()
		if _, err := c.WriteTo(f); err != nil {
			return err
		}
		return errors.Wrap(f.Close(), "cgraph")
	default:
		return errors.Errorf("cgraph: unsupported netlist format %q", path)
	}
}
