package main

import (
	"fmt"

	"github.com/fatih/color"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// runDiff renders the diff between two encoded JSON texts the way
// libdiff.DiffString does: diffpatch.New().DiffMain, then color insertions
// green and deletions red when useColor is set (grounded on
// go-tony/cmd/o/configs.go's isatty-gated color enablement).
func runDiff(from, to string, useColor bool) error {
	dmp := diffpatch.New()
	diffs := dmp.DiffMain(from, to, true)

	insert := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	if !useColor {
		insert.DisableColor()
		del.DisableColor()
	}

	for _, d := range diffs {
		switch d.Type {
		case diffpatch.DiffInsert:
			insert.Print(d.Text)
		case diffpatch.DiffDelete:
			del.Print(d.Text)
		case diffpatch.DiffEqual:
			fmt.Print(d.Text)
		}
	}
	fmt.Println()
	return nil
}
