package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var filterCmd = &cobra.Command{
	Use:   "filter EXPR",
	Short: "List document ids matching a filter expression",
	Example: `  scandex filter 'format == "NIFTI"'
  scandex filter '"b" IN strings'`,
	Args: cobra.ExactArgs(1),
	Run:  runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	expr := args[0]

	db := openDatabase(ctx)
	defer db.Close()

	ids, err := db.FilterDocuments(ctx, expr)
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	if len(ids) == 0 {
		_, _ = color.New(color.FgYellow).Println("no documents matched")
		return
	}
	for _, id := range ids {
		cmd.Println(id)
	}
}
