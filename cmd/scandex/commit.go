package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Promote the staged session to the durable database",
	Long: `Promote the staged session to the durable database (save_modifications).

Since this CLI opens and closes a fresh handle for every command, each
mutating command already commits before exiting; "commit" exists for
scripts that want an explicit no-op checkpoint after a read-only
session, or as a building block once a long-lived --interactive mode
is added.`,
	Run: runCommit,
}

func init() {
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Println("✓ changes committed")
}
