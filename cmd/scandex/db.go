package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/populse/scandex/internal/errs"

	scandex "github.com/populse/scandex"
)

// openDatabase opens the configured database, exiting the process
// with a colored error on failure, matching the teacher's
// log.Fatalf-on-setup-error convention in cmd/apply.go.
func openDatabase(ctx context.Context) *scandex.Database {
	db, err := scandex.OpenWithOptions(ctx, flagDBPath, flagInitial)
	if err != nil {
		if errs.Is(err, errs.InitialTableConflict) {
			fatalf("%s %v\n\nThe database already exists with a different initial-table configuration; drop --initial-table or match the original setting.",
				color.RedString("error:"), err)
		}
		fatalf("%s failed to open %s: %v", color.RedString("error:"), flagDBPath, err)
	}
	return db
}
