package detect

import (
	"regexp"
	"strings"
)

// ignorableMarkers name directories and file stems that usually hold tests,
// examples, vendored libraries or build output.
var ignorableMarkers = []string{
	"test",
	"tests",
	"spec",
	"jquery",
	"angular",
	"node_modules",
	"build",
	"target",
	"example",
}

var (
	markerAlt       = "(" + strings.Join(ignorableMarkers, "|") + ")"
	markerSegmentRe = regexp.MustCompile(`(?i)/` + markerAlt)
	markerPrefixRe  = regexp.MustCompile(`(?i)^` + markerAlt)
	markerStemRe    = regexp.MustCompile(`(?i)` + markerAlt + `\.[a-zA-Z]+$`)
)

// LooksLikeTestOrResource reports whether path looks like test, example,
// vendor or build content. The check is coarse: "src/testing/db.go" matches
// because a segment starts with "test".
func LooksLikeTestOrResource(path string) bool {
	return markerSegmentRe.MatchString(path) ||
		markerPrefixRe.MatchString(path) ||
		markerStemRe.MatchString(path)
}

// Extension returns the substring after the final '.' in filename, lower
// cased. ok is false when filename has no '.'.
func Extension(filename string) (ext string, ok bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	return strings.ToLower(filename[i+1:]), true
}
