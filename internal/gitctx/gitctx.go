package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/commitleak/internal/search"
)

// StagedSHA is the pseudo commit SHA of staged changes.
const StagedSHA = "STAGED"

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Name returns the base name of the repository root.
func (m RepoMeta) Name() string {
	if m.Root == "" {
		return ""
	}
	return filepath.Base(m.Root)
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Staged returns the index diff against HEAD as one pseudo commit, authored
// by the configured git user.
func Staged() (search.Commit, []search.FileDiff, error) {
	diff, err := gitOutput("diff", "--cached", "--no-color", "-U3", "--")
	if err != nil {
		return search.Commit{}, nil, fmt.Errorf("git diff --cached: %w", err)
	}
	name, _ := gitOutput("config", "user.name")
	email, _ := gitOutput("config", "user.email")
	commit := search.Commit{
		SHA: StagedSHA,
		Author: search.Signature{
			Name:  strings.TrimSpace(name),
			Email: strings.TrimSpace(email),
			Date:  time.Now(),
		},
	}
	return commit, ParseUnifiedDiff(diff), nil
}

// ParseUnifiedDiff splits a multi-file git diff into per-file patches. Each
// patch starts at the first hunk header; binary files get an empty patch.
func ParseUnifiedDiff(diff string) []search.FileDiff {
	var files []search.FileDiff
	for _, section := range splitDiffSections(diff) {
		path := extractPathFromSection(section)
		if path == "" {
			continue
		}
		files = append(files, search.FileDiff{
			Filename: path,
			Status:   sectionStatus(section),
			Patch:    hunks(section),
		})
	}
	return files
}

func splitDiffSections(diff string) []string {
	var sections []string
	lines := strings.Split(diff, "\n")
	var current strings.Builder
	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if strings.TrimSpace(current.String()) != "" {
		sections = append(sections, current.String())
	}
	return sections
}

// extractPathFromSection prefers the new path and falls back to the old one
// for deletions.
func extractPathFromSection(section string) string {
	var old string
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
		if strings.HasPrefix(line, "--- a/") {
			old = strings.TrimPrefix(line, "--- a/")
		}
		if strings.HasPrefix(line, "@@") {
			break
		}
	}
	if old != "" {
		return old
	}
	// Binary sections have no ---/+++ lines.
	first, _, _ := strings.Cut(section, "\n")
	if _, b, ok := strings.Cut(first, " b/"); ok && strings.HasPrefix(first, "diff --git a/") {
		return b
	}
	return ""
}

func sectionStatus(section string) string {
	header, _, _ := strings.Cut(section, "\n@@")
	switch {
	case strings.Contains(header, "\nnew file mode"):
		return "added"
	case strings.Contains(header, "\ndeleted file mode"):
		return "removed"
	case strings.Contains(header, "\nrename from"):
		return "renamed"
	default:
		return "modified"
	}
}

func hunks(section string) string {
	if strings.HasPrefix(section, "@@") {
		return section
	}
	i := strings.Index(section, "\n@@")
	if i < 0 {
		return ""
	}
	return section[i+1:]
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
