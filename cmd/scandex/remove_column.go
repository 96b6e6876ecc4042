package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var removeColumnCmd = &cobra.Command{
	Use:     "remove-column NAME",
	Short:   "Drop a column from the schema registry and its cells",
	Example: `  scandex remove-column BandWidth`,
	Args:    cobra.ExactArgs(1),
	Run:     runRemoveColumn,
}

func init() {
	rootCmd.AddCommand(removeColumnCmd)
}

func runRemoveColumn(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	name := args[0]

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.RemoveColumn(ctx, name); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Printf("✓ removed column %q\n", name)
}
