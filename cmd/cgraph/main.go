// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Command cgraph inspects, converts and analyzes gate-level netlists.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/circuitgraph/circuitgraph/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cgraph",
		Short: "inspect, convert and analyze gate-level netlists",

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				logger.SetLevel(zerolog.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newProbabilityCmd())
	rootCmd.AddCommand(newSensitivityCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
