// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/circuitgraph/circuitgraph/props"
	"github.com/circuitgraph/circuitgraph/sat"
)

func newSensitivityCmd() *cobra.Command {
	var (
		module  string
		node    string
		avg     bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sensitivity <netlist>",
		Short: "Compute the (maximum or average) sensitivity of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCircuit(args[0], module)
			if err != nil {
				return err
			}
			var opts []props.Option
			if timeout > 0 {
				opts = append(opts, props.WithSatOptions(sat.WithTimeout(timeout)))
			}
			if avg {
				s, err := props.AvgSensitivity(cmd.Context(), c, node, opts...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%g\n", s)
				return nil
			}
			s, err := props.Sensitivity(c, node, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", s)
			return nil
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "module to load from a multi-module file")
	cmd.Flags().StringVarP(&node, "node", "n", "", "node to analyze")
	cmd.Flags().BoolVar(&avg, "avg", false, "average sensitivity instead of maximum")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound on solving")
	cobra.CheckErr(cmd.MarkFlagRequired("node"))
	return cmd
}
