package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var removeDocumentCmd = &cobra.Command{
	Use:     "remove-document ID",
	Short:   "Delete a document and all of its cells",
	Example: `  scandex remove-document d1`,
	Args:    cobra.ExactArgs(1),
	Run:     runRemoveDocument,
}

func init() {
	rootCmd.AddCommand(removeDocumentCmd)
}

func runRemoveDocument(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	id := args[0]

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.RemoveDocument(ctx, id); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Printf("✓ removed document %q\n", id)
}
