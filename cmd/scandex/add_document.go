package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var addDocumentCmd = &cobra.Command{
	Use:     "add-document ID",
	Short:   "Insert a new, all-null document",
	Example: `  scandex add-document d1`,
	Args:    cobra.ExactArgs(1),
	Run:     runAddDocument,
}

func init() {
	rootCmd.AddCommand(addDocumentCmd)
}

func runAddDocument(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	id := args[0]

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.AddDocument(ctx, id); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Printf("✓ added document %q\n", id)
}
