package search

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/commitleak/internal/detect"
)

// Repo identifies the repository a Source reads from.
type Repo struct {
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name"`
}

func (r Repo) String() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// Signature is a commit author.
type Signature struct {
	Name  string
	Email string
	Date  time.Time
}

// Commit is a commit returned by a Source search.
type Commit struct {
	SHA     string
	Message string
	Author  Signature
}

// FileDiff is one changed file of a commit.
type FileDiff struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	RawURL   string `json:"raw_url"`
	Patch    string `json:"patch"`
}

// Source retrieves commits and their changed files.
type Source interface {
	// SearchCommitsByMessage returns commits whose message contains keyword.
	SearchCommitsByMessage(ctx context.Context, keyword string, repo Repo) ([]Commit, error)
	// CommitFiles returns the changed files of commit sha.
	CommitFiles(ctx context.Context, repo Repo, sha string) ([]FileDiff, error)
}

// Author is the author block of a CommittedFile.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CommitRef is the commit provenance of a CommittedFile.
type CommitRef struct {
	SHA    string    `json:"sha"`
	Date   time.Time `json:"date"`
	Author Author    `json:"author"`
}

// CommittedFile is a changed file whose patch contains a credential-like
// assignment.
type CommittedFile struct {
	Path    string    `json:"path"`
	Status  string    `json:"status"`
	RawURL  string    `json:"rawUrl"`
	Patch   string    `json:"patch"`
	Commit  CommitRef `json:"commit"`
	Keyword string    `json:"keyword,omitempty"`

	matches []*detect.Match
}

func newCommittedFile(f FileDiff, c Commit, keyword string, matches []*detect.Match) CommittedFile {
	return CommittedFile{
		Path:   f.Filename,
		Status: f.Status,
		RawURL: f.RawURL,
		Patch:  f.Patch,
		Commit: CommitRef{
			SHA:  c.SHA,
			Date: c.Author.Date,
			Author: Author{
				Name:  c.Author.Name,
				Email: c.Author.Email,
			},
		},
		Keyword: keyword,
		matches: matches,
	}
}

// Key identifies the file within its commit.
func (f CommittedFile) Key() string {
	return fmt.Sprintf("%s:%s", f.Commit.SHA, f.Path)
}

// Testers returns the names of the testers that matched.
func (f CommittedFile) Testers() []string {
	names := make([]string, 0, len(f.matches))
	for _, m := range f.matches {
		names = append(names, m.Tester.Name())
	}
	return names
}

// Candidates returns every matched assignment, tester by tester.
func (f CommittedFile) Candidates() []string {
	var out []string
	for _, m := range f.matches {
		out = append(out, m.Candidates...)
	}
	return out
}

// Reported returns the assignments to report, tester by tester. With
// suppress set, each tester's assignments paired with a local address are
// left out and counted in suppressed. Assignments with the same text are
// removed one for one.
func (f CommittedFile) Reported(suppress bool) (kept []detect.Assignment, suppressed int) {
	for _, m := range f.matches {
		var local map[string]int
		if suppress {
			for _, c := range m.ExcludeLocalPasswords() {
				if local == nil {
					local = make(map[string]int)
				}
				local[c]++
			}
		}
		for _, a := range m.Assignments {
			if local[a.Text] > 0 {
				local[a.Text]--
				suppressed++
				continue
			}
			kept = append(kept, a)
		}
	}
	return kept, suppressed
}

// LocalAssignments returns the matched assignments that sit next to a
// local address. It is computed on each call.
func (f CommittedFile) LocalAssignments() []string {
	var out []string
	for _, m := range f.matches {
		out = append(out, m.ExcludeLocalPasswords()...)
	}
	return out
}

// Suppressed reports whether every matched assignment is local-looking.
func (f CommittedFile) Suppressed() bool {
	if len(f.matches) == 0 {
		return false
	}
	for _, m := range f.matches {
		if len(m.ExcludeLocalPasswords()) < len(m.Candidates) {
			return false
		}
	}
	return true
}
