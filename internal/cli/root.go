/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cli implements the rtr command.
package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirpx.dev/rtr"
	"dirpx.dev/rtr/config"
	_ "dirpx.dev/rtr/internal/demo"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose    bool
	configPath string
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "rtr",
		Short: "Runtime type reflection toolkit",
		Long: color.CyanString(`rtr - runtime type reflection for Go

Inspect the demo registry, run a reflection smoke test, and name the
packaged core library for a set of build options.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log registry events to stderr")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "registry configuration file (yaml, toml or json)")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewSmokeCommand())
	rootCmd.AddCommand(NewTypesCommand())
	rootCmd.AddCommand(NewArtifactCommand())

	return rootCmd
}

// setup installs the configuration and logger before the global registry
// is first built.
func setup(flags globalFlags) error {
	logger := zap.NewNop()
	if flags.verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			logger = zap.NewNop()
		}
	}

	cfg, err := config.Load(flags.configPath, config.WithLogger(logger))
	if err != nil {
		return err
	}
	rtr.SetConfig(cfg)
	return nil
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			titleColor.Fprint(out, "rtr version: ")
			fmt.Fprintln(out, Version)
			titleColor.Fprint(out, "Git commit: ")
			fmt.Fprintln(out, GitCommit)
			titleColor.Fprint(out, "Go version: ")
			fmt.Fprintln(out, runtime.Version())
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
