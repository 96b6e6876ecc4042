package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var getValueInitial bool

var getValueCmd = &cobra.Command{
	Use:     "get-value DOC COLUMN",
	Short:   "Print a document's current (or initial) value for a column",
	Example: `  scandex get-value d1 PatientName
  scandex get-value d1 PatientName --initial`,
	Args: cobra.ExactArgs(2),
	Run:  runGetValue,
}

func init() {
	rootCmd.AddCommand(getValueCmd)
	getValueCmd.Flags().BoolVar(&getValueInitial, "initial", false, "print the initial value instead of the current one")
}

func runGetValue(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	doc, col := args[0], args[1]

	db := openDatabase(ctx)
	defer db.Close()

	var (
		value interface{ String() string }
		err   error
	)
	if getValueInitial {
		v, e := db.GetInitialValue(ctx, doc, col)
		value, err = v, e
	} else {
		v, e := db.GetCurrentValue(ctx, doc, col)
		value, err = v, e
	}
	if err != nil {
		fatalf("%s %v", color.RedString("error:"), err)
	}
	cmd.Println(value.String())
}
