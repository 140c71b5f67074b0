// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/circuitgraph/circuitgraph/circuit"
	"github.com/circuitgraph/circuitgraph/props"
)

func newStatsCmd() *cobra.Command {
	var module string
	cmd := &cobra.Command{
		Use:   "stats <netlist>",
		Short: "Print node, gate and depth statistics of a netlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCircuit(args[0], module)
			if err != nil {
				return err
			}
			return printStats(cmd, c)
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "module to load from a multi-module file")
	return cmd
}

func printStats(cmd *cobra.Command, c *circuit.Circuit) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "name:     %s\n", c.Name())
	fmt.Fprintf(out, "nodes:    %d\n", c.Len())
	fmt.Fprintf(out, "inputs:   %d\n", len(c.Inputs()))
	fmt.Fprintf(out, "outputs:  %d\n", len(c.Outputs()))
	if insts := c.BlackboxInstances(); len(insts) > 0 {
		fmt.Fprintf(out, "blackbox: %d\n", len(insts))
	}

	counts := map[circuit.Kind]int{}
	for _, n := range c.Nodes() {
		kind, err := c.KindOf(n)
		if err != nil {
			return err
		}
		counts[kind]++
	}
	kinds := make([]circuit.Kind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(out, "  %-10s %d\n", k, counts[k])
	}

	levels, err := props.Levelize(c)
	if err != nil {
		return err
	}
	depth := 0
	for _, l := range levels {
		if l > depth {
			depth = l
		}
	}
	fmt.Fprintf(out, "depth:    %d\n", depth)
	return nil
}
