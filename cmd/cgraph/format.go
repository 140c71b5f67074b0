// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/circuitgraph/circuitgraph/verilog"
)

func newFormatCmd() *cobra.Command {
	var (
		module string
		output string
	)
	cmd := &cobra.Command{
		Use:   "format <netlist>",
		Short: "Rewrite a netlist, converting between verilog and the binary format",
		Long: `Reads a netlist and writes it back out, normalized.  The output
format follows the -o extension (.v or .cg); without -o the verilog
goes to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCircuit(args[0], module)
			if err != nil {
				return err
			}
			if output == "" {
				src, err := verilog.Write(c)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), src)
				return nil
			}
			return saveCircuit(c, output)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "module to load from a multi-module file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, extension selects the format")
	return cmd
}
