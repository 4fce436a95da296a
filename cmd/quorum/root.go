// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Quorum CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quorum",
		Short: "Quorum - question and answer service",
		Long: `Quorum serves account sign-up, sign-in and sign-out, and lets
signed-in users post questions.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: XDG_CONFIG_HOME/quorum/config.yaml if present)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
