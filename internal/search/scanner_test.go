package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/commitleak/internal/detect"
	"github.com/dshills/commitleak/internal/redact"
)

type fakeSource struct {
	commits   map[string][]Commit
	files     map[string][]FileDiff
	searchErr error
	filesErr  error
}

func (f *fakeSource) SearchCommitsByMessage(_ context.Context, keyword string, _ Repo) ([]Commit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.commits[keyword], nil
}

func (f *fakeSource) CommitFiles(_ context.Context, _ Repo, sha string) ([]FileDiff, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return f.files[sha], nil
}

const (
	secretPatch = "@@ -0,0 +1,2 @@\n+package main\n+password := \"hunter2\"\n"
	localPatch  = "@@ -0,0 +1,2 @@\n+password = \"x\"\n+host = \"localhost\"\n"
)

var testRepo = Repo{Owner: "acme", Name: "widgets"}

func testCommit(sha string) Commit {
	return Commit{
		SHA:     sha,
		Message: "remove password",
		Author: Signature{
			Name:  "Dev",
			Email: "dev@example.org",
			Date:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func newTestScanner(src Source, opts Options) *Scanner {
	return New(detect.Default(), src, opts, zerolog.Nop())
}

func TestScanCommit_RealSecret(t *testing.T) {
	src := &fakeSource{files: map[string][]FileDiff{
		"abc": {
			{Filename: "main.go", Status: "added", RawURL: "https://example.org/raw/main.go", Patch: secretPatch},
			{Filename: "README.md", Status: "added", Patch: "+docs\n"},
		},
	}}
	s := newTestScanner(src, Options{})

	recs, err := s.ScanCommit(context.Background(), testRepo, testCommit("abc"))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, "main.go", r.Path)
	assert.Equal(t, "added", r.Status)
	assert.Equal(t, "https://example.org/raw/main.go", r.RawURL)
	assert.Equal(t, "abc", r.Commit.SHA)
	assert.Equal(t, "Dev", r.Commit.Author.Name)
	assert.Equal(t, "dev@example.org", r.Commit.Author.Email)
	assert.Equal(t, []string{"brace"}, r.Testers())
	assert.Equal(t, []string{`+password := "hunter2"`}, r.Candidates())
	assert.Empty(t, r.LocalAssignments())
	assert.False(t, r.Suppressed())
}

func TestScanFiles_Exclusions(t *testing.T) {
	files := []FileDiff{
		{Filename: "empty.go", Patch: ""},
		{Filename: "noext", Patch: secretPatch},
		{Filename: "src/test/Config.go", Patch: secretPatch},
		{Filename: "vendor/lib/conf.go", Patch: secretPatch},
		{Filename: "app/conf.go", Patch: secretPatch},
	}
	s := newTestScanner(nil, Options{Exclude: []string{"vendor/"}})

	recs := s.ScanFiles(testCommit("abc"), files, "")
	require.Len(t, recs, 1)
	assert.Equal(t, "app/conf.go", recs[0].Path)

	s = newTestScanner(nil, Options{Detect: detect.Options{IncludeTestResources: true}})
	recs = s.ScanFiles(testCommit("abc"), files, "")
	require.Len(t, recs, 3)
	assert.Equal(t, "src/test/Config.go", recs[0].Path)
}

func TestApplySuppression(t *testing.T) {
	src := &fakeSource{files: map[string][]FileDiff{
		"abc": {
			{Filename: "local.go", Patch: localPatch},
			{Filename: "real.go", Patch: secretPatch},
		},
	}}
	s := newTestScanner(src, Options{})

	recs, err := s.ScanCommit(context.Background(), testRepo, testCommit("abc"))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Suppressed())
	assert.Equal(t, []string{`+password = "x"`}, recs[0].LocalAssignments())

	kept, dropped := ApplySuppression(recs, zerolog.Nop())
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "real.go", kept[0].Path)
}

func TestReported_DropsPairedAssignments(t *testing.T) {
	patch := "@@ -0,0 +1,13 @@\n" +
		"+password = \"fixture\"\n" +
		"+host = \"localhost\"\n" +
		strings.Repeat("+x := 1\n", 10) +
		"+secret = \"R3alProdKey\"\n"
	s := newTestScanner(nil, Options{})
	recs := s.ScanFiles(testCommit("abc"), []FileDiff{{Filename: "main.go", Patch: patch}}, "")
	require.Len(t, recs, 1)
	require.False(t, recs[0].Suppressed())

	kept, suppressed := recs[0].Reported(true)
	assert.Equal(t, 1, suppressed)
	require.Len(t, kept, 1)
	assert.Equal(t, `+secret = "R3alProdKey"`, kept[0].Text)

	all, none := recs[0].Reported(false)
	assert.Len(t, all, 2)
	assert.Zero(t, none)

	report, err := Run(context.Background(), s, Request{
		Mode:     "files",
		Files:    []FileDiff{{Filename: "main.go", Patch: patch}},
		Suppress: true,
		Redact:   redact.NewPolicy(nil),
	})
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, []string{`+secret = "[REDACTED]"`}, f.Candidates)
	assert.Equal(t, 13, f.Line)
	assert.NotContains(t, f.Patch, "R3alProdKey")
	assert.Equal(t, 1, report.Summary.Suppressed)
}

func TestReported_SameTextCountedOnce(t *testing.T) {
	// Two identical assignments, only the first near a local address.
	patch := "+password = \"x\"\n+host = \"localhost\"\n" +
		strings.Repeat("+y := 2\n", 10) + "+password = \"x\"\n"
	s := newTestScanner(nil, Options{})
	recs := s.ScanFiles(testCommit("abc"), []FileDiff{{Filename: "main.go", Patch: patch}}, "")
	require.Len(t, recs, 1)

	kept, suppressed := recs[0].Reported(true)
	assert.Equal(t, 1, suppressed)
	assert.Len(t, kept, 1)
}

func TestSearchByCredentialKeywords_KeywordOrderNoDedupe(t *testing.T) {
	src := &fakeSource{
		commits: map[string][]Commit{
			"password": {testCommit("abc")},
			"secret":   {testCommit("abc"), testCommit("def")},
			"token":    nil,
		},
		files: map[string][]FileDiff{
			"abc": {{Filename: "a.go", Patch: secretPatch}},
			"def": {{Filename: "d.go", Patch: secretPatch}},
		},
	}
	s := newTestScanner(src, Options{Concurrency: 2})

	recs, err := s.SearchByCredentialKeywords(context.Background(), []string{"password", "secret", "token"}, testRepo)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "password", recs[0].Keyword)
	assert.Equal(t, "abc", recs[0].Commit.SHA)
	assert.Equal(t, "secret", recs[1].Keyword)
	assert.Equal(t, "abc", recs[1].Commit.SHA)
	assert.Equal(t, "def", recs[2].Commit.SHA)

	deduped := Dedupe(recs)
	require.Len(t, deduped, 2)
	assert.Equal(t, "abc:a.go", deduped[0].Key())
	assert.Equal(t, "def:d.go", deduped[1].Key())
}

func TestSearchByCredentialKeywords_PropagatesErrors(t *testing.T) {
	sentinel := errors.New("boom")

	s := newTestScanner(&fakeSource{searchErr: sentinel}, Options{})
	_, err := s.SearchByCredentialKeywords(context.Background(), []string{"password"}, testRepo)
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)

	s = newTestScanner(&fakeSource{
		commits:  map[string][]Commit{"password": {testCommit("abc")}},
		filesErr: sentinel,
	}, Options{})
	_, err = s.SearchByCredentialKeywords(context.Background(), []string{"password"}, testRepo)
	assert.ErrorIs(t, err, sentinel)
}

func TestScanCommit_NoSource(t *testing.T) {
	s := newTestScanner(nil, Options{})
	_, err := s.ScanCommit(context.Background(), testRepo, testCommit("abc"))
	assert.Error(t, err)
}

func TestRun_RedactsAndSummarizes(t *testing.T) {
	src := &fakeSource{
		commits: map[string][]Commit{"password": {testCommit("abc")}},
		files: map[string][]FileDiff{"abc": {
			{Filename: "real.go", Patch: secretPatch},
			{Filename: "local.go", Patch: localPatch},
		}},
	}
	s := newTestScanner(src, Options{})

	report, err := Run(context.Background(), s, Request{
		Mode:     "github",
		Repo:     testRepo,
		Keywords: []string{"password"},
		Suppress: true,
		Dedupe:   true,
		Redact:   redact.NewPolicy(nil),
		Version:  "test",
	})
	require.NoError(t, err)
	assert.Equal(t, "commitleak", report.Tool)
	assert.Equal(t, "acme/widgets", report.Repo.Name)
	require.Len(t, report.Findings, 1)

	f := report.Findings[0]
	assert.Equal(t, "real.go", f.Path)
	assert.NotContains(t, f.Patch, "hunter2")
	assert.Equal(t, []string{`+password := "[REDACTED]"`}, f.Candidates)

	assert.Equal(t, 1, report.Summary.Files)
	assert.Equal(t, 1, report.Summary.Commits)
	assert.Equal(t, 1, report.Summary.Suppressed)
	assert.Equal(t, map[string]int{"password": 1}, report.Summary.ByKeyword)
}

func TestRun_RedactsJSONPatch(t *testing.T) {
	s := newTestScanner(nil, Options{})
	report, err := Run(context.Background(), s, Request{
		Mode:   "files",
		Files:  []FileDiff{{Filename: "app.json", Patch: `{"apiKey":"abc123SECRET"}`}},
		Redact: redact.NewPolicy(nil),
	})
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, `{"apiKey":"[REDACTED]"}`, f.Patch)
	assert.Equal(t, []string{`apiKey": "[REDACTED]"`}, f.Candidates)
}

func TestRun_FixedFilesShowSecrets(t *testing.T) {
	s := newTestScanner(nil, Options{})
	report, err := Run(context.Background(), s, Request{
		Mode:        "staged",
		Files:       []FileDiff{{Filename: "real.go", Patch: secretPatch}},
		ShowSecrets: true,
	})
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Contains(t, report.Findings[0].Patch, "hunter2")
	assert.Empty(t, report.Inputs.Keywords)
	assert.Nil(t, report.Summary.ByKeyword)
}
