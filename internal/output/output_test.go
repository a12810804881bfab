package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/commitleak/internal/search"
)

func testReport() *search.Report {
	commit := search.CommitRef{
		SHA:    "0123456789abcdef0123456789abcdef01234567",
		Date:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Author: search.Author{Name: "Jane Dev", Email: "jane@example.org"},
	}
	findings := []search.Finding{
		{
			ID:         "aaaaaaaaaaaaaaaa",
			Path:       "cmd/main.go",
			Line:       12,
			Status:     "modified",
			Commit:     commit,
			Keyword:    "password",
			Testers:    []string{"brace"},
			Candidates: []string{`	password := "[REDACTED]"`},
		},
		{
			ID:         "bbbbbbbbbbbbbbbb",
			Path:       "conf/app.ini",
			Status:     "added",
			Commit:     commit,
			Keyword:    "pwd",
			Testers:    []string{"keyvalue"},
			Candidates: []string{"pwd=[REDACTED]"},
		},
	}
	return &search.Report{
		Tool:     "commitleak",
		Version:  "1.0",
		RunID:    "run",
		Repo:     search.RepoInfo{Name: "acme/widgets", Source: "github"},
		Inputs:   search.InputInfo{Mode: "github", Keywords: []string{"password", "pwd"}},
		Summary:  search.ComputeSummary(findings, 1),
		Findings: findings,
		Timing:   search.Timing{SourceMs: 40, TotalMs: 55},
	}
}

func emptyReport() *search.Report {
	return &search.Report{
		Tool:     "commitleak",
		Version:  "1.0",
		Inputs:   search.InputInfo{Mode: "staged"},
		Findings: []search.Finding{},
	}
}

func TestGetWriter(t *testing.T) {
	for _, format := range Formats {
		w, err := GetWriter(format)
		if err != nil {
			t.Errorf("GetWriter(%q) error: %v", format, err)
		}
		if w == nil {
			t.Errorf("GetWriter(%q) returned nil writer", format)
		}
	}

	if _, err := GetWriter("html"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteReport_File(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.json")
	if err := WriteReport(testReport(), "json", out); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Contains(data, []byte(`"acme/widgets"`)) {
		t.Error("output file should contain the repo name")
	}
}

func TestWriteReport_BadFormat(t *testing.T) {
	if err := WriteReport(testReport(), "xml", ""); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestGroupByCommit(t *testing.T) {
	r := testReport()
	other := r.Findings[0]
	other.Commit.SHA = "fedcba"
	findings := append([]search.Finding{}, r.Findings[0], other, r.Findings[1])

	groups := groupByCommit(findings)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if len(groups[0].findings) != 2 {
		t.Errorf("first group has %d findings, want 2", len(groups[0].findings))
	}
	if groups[1].commit.SHA != "fedcba" {
		t.Errorf("second group sha = %q", groups[1].commit.SHA)
	}
}

func TestShortSHA(t *testing.T) {
	if got := shortSHA("0123456789"); got != "0123456" {
		t.Errorf("shortSHA = %q", got)
	}
	if got := shortSHA("STAGED"); got != "STAGED" {
		t.Errorf("shortSHA = %q", got)
	}
}
