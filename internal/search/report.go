package search

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/commitleak/internal/detect"
)

// RepoInfo describes where the scan ran.
type RepoInfo struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// InputInfo describes what was scanned.
type InputInfo struct {
	Mode          string   `json:"mode"`
	Keywords      []string `json:"keywords,omitempty"`
	PathsExcluded []string `json:"pathsExcluded,omitempty"`
}

// Summary provides an overview of the findings. Suppressed counts the
// assignments left out for sitting next to a local address.
type Summary struct {
	Files      int            `json:"files"`
	Commits    int            `json:"commits"`
	Suppressed int            `json:"suppressed"`
	ByKeyword  map[string]int `json:"byKeyword,omitempty"`
}

// Timing contains performance metrics.
type Timing struct {
	SourceMs int64 `json:"sourceMs"`
	TotalMs  int64 `json:"totalMs"`
}

// Finding is a reported file with its matched assignments.
type Finding struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Line       int       `json:"line,omitempty"`
	Status     string    `json:"status,omitempty"`
	RawURL     string    `json:"rawUrl,omitempty"`
	Commit     CommitRef `json:"commit"`
	Keyword    string    `json:"keyword,omitempty"`
	Testers    []string  `json:"testers"`
	Candidates []string  `json:"candidates"`
	Patch      string    `json:"patch,omitempty"`
}

// Report is the top-level output structure.
type Report struct {
	Tool     string    `json:"tool"`
	Version  string    `json:"version"`
	RunID    string    `json:"runId"`
	Repo     RepoInfo  `json:"repo"`
	Inputs   InputInfo `json:"inputs"`
	Summary  Summary   `json:"summary"`
	Findings []Finding `json:"findings"`
	Timing   Timing    `json:"timing"`
}

// NewFinding converts a record for reporting with the assignments chosen
// from it. Line points at the first of them.
func NewFinding(f CommittedFile, assignments []detect.Assignment) Finding {
	candidates := make([]string, len(assignments))
	for i, a := range assignments {
		candidates[i] = a.Text
	}
	line := 0
	if len(assignments) > 0 {
		line = newFileLine(f.Patch, assignmentOffset(f.Patch, assignments[0]))
	}
	return Finding{
		ID:         generateFindingID(f),
		Path:       f.Path,
		Line:       line,
		Status:     f.Status,
		RawURL:     f.RawURL,
		Commit:     f.Commit,
		Keyword:    f.Keyword,
		Testers:    f.Testers(),
		Candidates: candidates,
		Patch:      f.Patch,
	}
}

// assignmentOffset locates a in patch. Text matched against normalized
// content may not appear verbatim, in which case the value is used.
func assignmentOffset(patch string, a detect.Assignment) int {
	if i := strings.Index(patch, a.Text); i >= 0 || a.Value == "" {
		return i
	}
	return strings.Index(patch, a.Value)
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding, suppressed int) Summary {
	s := Summary{Files: len(findings), Suppressed: suppressed}
	commits := make(map[string]bool)
	for _, f := range findings {
		commits[f.Commit.SHA] = true
		if f.Keyword != "" {
			if s.ByKeyword == nil {
				s.ByKeyword = make(map[string]int)
			}
			s.ByKeyword[f.Keyword]++
		}
	}
	s.Commits = len(commits)
	return s
}

// SortFindings orders findings by commit date, newest first, then path.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if !a.Commit.Date.Equal(b.Commit.Date) {
			return a.Commit.Date.After(b.Commit.Date)
		}
		return a.Path < b.Path
	})
}

func generateFindingID(f CommittedFile) string {
	h := sha256.Sum256([]byte(f.Key()))
	return fmt.Sprintf("%x", h[:8])
}

func generateRunID() string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return fmt.Sprintf("%x", h[:16])
}

var hunkHeader = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)`)

// newFileLine maps a byte offset in a unified patch to its line number in
// the new file. It returns 0 for offsets on removed lines, hunk headers, or
// outside the patch.
func newFileLine(patch string, offset int) int {
	if offset < 0 {
		return 0
	}
	line, pos := 0, 0
	for _, l := range strings.SplitAfter(patch, "\n") {
		end := pos + len(l)
		hit := offset >= pos && offset < end
		switch {
		case strings.HasPrefix(l, "@@"):
			if m := hunkHeader.FindStringSubmatch(l); m != nil {
				start, _ := strconv.Atoi(m[1])
				line = start - 1
			}
			if hit {
				return 0
			}
		case strings.HasPrefix(l, "-"), strings.HasPrefix(l, "\\"):
			if hit {
				return 0
			}
		default:
			line++
			if hit {
				return line
			}
		}
		pos = end
	}
	return 0
}
