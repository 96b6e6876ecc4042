package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var setValueCmd = &cobra.Command{
	Use:   "set-value DOC COLUMN VALUE",
	Short: "Create or overwrite a document's current value for a column",
	Long: `Create or overwrite a document's current value for a column.

If the cell has never been written, this behaves like new_value. If it
already has a value, this overwrites it (set_current_value); the
initial value, when the initial table is enabled, is left untouched.`,
	Example: `  scandex set-value d1 PatientName "test"
  scandex set-value d1 BandWidth 35`,
	Args: cobra.ExactArgs(3),
	Run:  runSetValue,
}

func init() {
	rootCmd.AddCommand(setValueCmd)
}

func runSetValue(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	doc, col, raw := args[0], args[1], args[2]

	db := openDatabase(ctx)
	defer db.Close()

	column, err := db.GetColumn(ctx, col)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	value, err := parseScalarValue(raw, column.Type)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}

	current, err := db.GetCurrentValue(ctx, doc, col)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}

	if current.Null {
		err = db.NewValue(ctx, doc, col, value, nil)
	} else {
		err = db.SetCurrentValue(ctx, doc, col, value)
	}
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Printf("✓ %s.%s = %s\n", doc, col, raw)
}
