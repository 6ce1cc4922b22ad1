package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	basePath string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "castellan",
	Short: "Castellan - policy storage and versioning core",
	Long: `Castellan stores and versions access-control policies and delegation
grants. Policies live under <base>/policies/[<version>/] in one of five
interchangeable formats (json, yaml, xml, toml, serialized); delegations live
under <base>/delegations/ keyed by id.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&basePath, "base", "b", "./storage", "storage base path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
