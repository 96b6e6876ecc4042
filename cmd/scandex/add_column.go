package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/populse/scandex/internal/valuetype"
)

var addColumnDescription string

var addColumnCmd = &cobra.Command{
	Use:   "add-column NAME TYPE",
	Short: "Declare a new column in the schema registry",
	Example: `  scandex add-column PatientName string --description "subject identifier"
  scandex add-column BandWidth integer`,
	Args: cobra.ExactArgs(2),
	Run:  runAddColumn,
}

func init() {
	rootCmd.AddCommand(addColumnCmd)
	addColumnCmd.Flags().StringVar(&addColumnDescription, "description", "", "human-readable column description")
}

func runAddColumn(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	name, typeName := args[0], args[1]

	t := valuetype.SemanticType(typeName)
	if !t.Valid() {
		fatalf("%s %q is not a declared semantic type", color.RedString("error:"), typeName)
	}

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.AddColumn(ctx, name, t, addColumnDescription); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Printf("%s declared column %q (%s)\n", "✓", name, t)
}
