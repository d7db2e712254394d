package utils

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// RenderDiff returns a terminal-colored diff between the current document
// and the proposed one, so a preview shows exactly what apply would change.
func RenderDiff(current string, proposed string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(current, proposed, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
