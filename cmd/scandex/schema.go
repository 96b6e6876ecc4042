package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Export or import the column schema as JSON",
}

var schemaExportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Print the column schema as a JSON document",
	Example: `  scandex schema export > schema.json`,
	Args:    cobra.NoArgs,
	Run:     runSchemaExport,
}

var schemaImportCmd = &cobra.Command{
	Use:     "import FILE",
	Short:   "Declare columns from a JSON schema document",
	Example: `  scandex schema import schema.json`,
	Args:    cobra.ExactArgs(1),
	Run:     runSchemaImport,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaExportCmd)
	schemaCmd.AddCommand(schemaImportCmd)
}

func runSchemaExport(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	db := openDatabase(ctx)
	defer db.Close()

	doc, err := db.ExportSchema(ctx)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	cmd.OutOrStdout().Write(append(doc, '\n'))
}

func runSchemaImport(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	path := args[0]

	doc, err := os.ReadFile(path)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}

	db := openDatabase(ctx)
	defer db.Close()

	if err := db.ImportSchema(ctx, doc); err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if err := db.SaveModifications(ctx); err != nil {
		fatalf("%s failed to save: %v", color.RedString("error:"), err)
	}
	_, _ = color.New(color.FgGreen).Println("✓ schema imported")
}
