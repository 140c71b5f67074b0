// Copyright 2026 The CircuitGraph Authors. All rights reserved.  Use of this
// source code is governed by a license that can be found in the License file.

// Package logger provides the structured logger shared by all
// circuitgraph packages.  Long-running operations (parsing, SAT solving,
// model counting, synthesis) emit progress events through it.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var logger zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	logger = zerolog.New(output).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// Logger returns the process-wide logger.
func Logger() zerolog.Logger {
	return logger
}

// Set replaces the process-wide logger.
func Set(l zerolog.Logger) {
	logger = l
}

// SetOutput redirects the logger output.
func SetOutput(w io.Writer) {
	logger = logger.Output(w)
}

// SetLevel sets the minimum emitted level.
func SetLevel(lvl zerolog.Level) {
	logger = logger.Level(lvl)
}

// Disable silences the logger.
func Disable() {
	logger = zerolog.Nop()
}
