// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command masim runs multi-agent DAG simulations from YAML scenario files,
// either a single run with its event log or a parameter sweep with CSV
// output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

var debug bool

var rootCmd = &cobra.Command{
	Use:     "masim",
	Short:   "discrete-event multi-agent DAG simulator",
	Version: version,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// newLogger builds the console logger used by all subcommands. Debug level
// additionally traces every simulation event.
func newLogger() *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core)
}
