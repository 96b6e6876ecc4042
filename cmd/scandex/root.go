package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/populse/scandex/internal/config"
)

var (
	flagDBPath  string
	flagInitial bool
)

var rootCmd = &cobra.Command{
	Use:   "scandex",
	Short: "scandex manages a typed, staged-commit document store.",
	Long:  `scandex is a command-line client for a typed, schema-extensible document store with staged/committed semantics and a filter language.`,
}

func init() {
	dbDefault := "scandex.db"
	initialDefault := false

	if cfg, err := config.Load(); err == nil && cfg.ConfigFilePath != "" {
		if cfg.Path != "" {
			dbDefault = cfg.Path
		}
		initialDefault = cfg.InitialTableEnabled
	}
	env, err := config.LoadDotenv("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	for k, v := range env {
		if _, set := os.LookupEnv(k); !set {
			os.Setenv(k, v)
		}
	}

	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", dbDefault, "path to the database file")
	rootCmd.PersistentFlags().BoolVar(&flagInitial, "initial-table", initialDefault, "enable the initial-value table")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
