package search

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewFileLine(t *testing.T) {
	patch := "@@ -10,3 +20,4 @@ func f() {\n context\n-removed\n+added\n context2\n"
	tests := []struct {
		needle string
		want   int
	}{
		{"context\n", 20},
		{"removed", 0},
		{"added", 21},
		{"context2", 22},
		{"@@", 0},
	}
	for _, tt := range tests {
		got := newFileLine(patch, strings.Index(patch, tt.needle))
		assert.Equal(t, tt.want, got, tt.needle)
	}
	assert.Equal(t, 0, newFileLine(patch, -1))
}

func TestNewFinding_Line(t *testing.T) {
	s := newTestScanner(nil, Options{})
	recs := s.ScanFiles(testCommit("abc"), []FileDiff{{Filename: "main.go", Patch: secretPatch}}, "password")
	if assert.Len(t, recs, 1) {
		kept, suppressed := recs[0].Reported(true)
		assert.Zero(t, suppressed)
		f := NewFinding(recs[0], kept)
		assert.Equal(t, 2, f.Line)
		assert.Len(t, f.ID, 16)
		assert.Equal(t, "password", f.Keyword)
	}
}

func TestNewFinding_LineFromNormalizedJSON(t *testing.T) {
	s := newTestScanner(nil, Options{})
	patch := "{\n  \"name\": \"svc\",\n  \"apiKey\":\"abc123SECRET\"\n}"
	recs := s.ScanFiles(testCommit("abc"), []FileDiff{{Filename: "app.json", Patch: patch}}, "")
	if assert.Len(t, recs, 1) {
		kept, _ := recs[0].Reported(false)
		f := NewFinding(recs[0], kept)
		assert.Equal(t, []string{`apiKey": "abc123SECRET"`}, f.Candidates)
		assert.Equal(t, 3, f.Line)
	}
}

func TestComputeSummary(t *testing.T) {
	findings := []Finding{
		{Commit: CommitRef{SHA: "a"}, Keyword: "password"},
		{Commit: CommitRef{SHA: "a"}, Keyword: "secret"},
		{Commit: CommitRef{SHA: "b"}, Keyword: "password"},
	}
	s := ComputeSummary(findings, 2)
	assert.Equal(t, 3, s.Files)
	assert.Equal(t, 2, s.Commits)
	assert.Equal(t, 2, s.Suppressed)
	assert.Equal(t, map[string]int{"password": 2, "secret": 1}, s.ByKeyword)
}

func TestSortFindings(t *testing.T) {
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.AddDate(1, 0, 0)
	findings := []Finding{
		{Path: "b.go", Commit: CommitRef{Date: old}},
		{Path: "z.go", Commit: CommitRef{Date: recent}},
		{Path: "a.go", Commit: CommitRef{Date: old}},
	}
	SortFindings(findings)
	assert.Equal(t, []string{"z.go", "a.go", "b.go"}, []string{findings[0].Path, findings[1].Path, findings[2].Path})
}
