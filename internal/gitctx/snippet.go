package gitctx

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/commitleak/internal/search"
)

// Snippet wraps content as a patch of path. Without a base the whole content
// is an addition; with a base the patch is a line diff against it with the
// full file as context. Identical content yields an empty patch.
func Snippet(content, path, base string) search.FileDiff {
	if base == "" {
		return search.FileDiff{Filename: path, Status: "added", Patch: addedPatch(content)}
	}
	return search.FileDiff{Filename: path, Status: "modified", Patch: linePatch(base, content)}
}

func addedPatch(content string) string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", len(lines))
	for _, line := range lines {
		fmt.Fprintf(&b, "+%s\n", line)
	}
	return b.String()
}

func linePatch(base, content string) string {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(base, content)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var body strings.Builder
	oldLines, newLines, changed := 0, 0, false
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		if d.Text == "" {
			continue
		}
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
			changed = true
		case diffmatchpatch.DiffDelete:
			prefix = "-"
			changed = true
		}
		for _, line := range strings.Split(text, "\n") {
			body.WriteString(prefix)
			body.WriteString(line)
			body.WriteString("\n")
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				newLines++
			case diffmatchpatch.DiffDelete:
				oldLines++
			default:
				oldLines++
				newLines++
			}
		}
	}
	if !changed {
		return ""
	}
	return fmt.Sprintf("@@ -1,%d +1,%d @@\n", oldLines, newLines) + body.String()
}
