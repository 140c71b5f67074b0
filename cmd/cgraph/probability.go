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

func newProbabilityCmd() *cobra.Command {
	var (
		module  string
		node    string
		approx  bool
		bin     string
		epsilon float64
		delta   float64
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probability <netlist>",
		Short: "Compute the signal probability of a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCircuit(args[0], module)
			if err != nil {
				return err
			}
			var opts []props.Option
			if approx {
				opts = append(opts, props.WithCounter(sat.ApproxMC{
					Bin:     bin,
					Epsilon: epsilon,
					Delta:   delta,
				}))
			}
			if timeout > 0 {
				opts = append(opts, props.WithSatOptions(sat.WithTimeout(timeout)))
			}
			p, err := props.SignalProbability(cmd.Context(), c, node, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%g\n", p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&module, "module", "m", "", "module to load from a multi-module file")
	cmd.Flags().StringVarP(&node, "node", "n", "", "node to analyze")
	cmd.Flags().BoolVar(&approx, "approx", false, "use approximate model counting")
	cmd.Flags().StringVar(&bin, "counter-bin", "", "approximate counter binary, default approxmc")
	cmd.Flags().Float64Var(&epsilon, "epsilon", 0, "approximate counter tolerance")
	cmd.Flags().Float64Var(&delta, "delta", 0, "approximate counter confidence")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "bound on exact counting")
	cobra.CheckErr(cmd.MarkFlagRequired("node"))
	return cmd
}
