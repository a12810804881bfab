package search

import (
	"context"
	"time"

	"github.com/dshills/commitleak/internal/redact"
)

// Request describes one scan run.
type Request struct {
	Mode string
	Repo Repo
	// Keywords drive a commit message search. Ignored when Files is set.
	Keywords []string
	// Commit and Files scan a fixed set of changes instead of searching.
	Commit Commit
	Files  []FileDiff

	Suppress    bool
	Dedupe      bool
	ShowSecrets bool
	Redact      *redact.Policy
	Version     string
}

// Run executes a scan and assembles a report.
func Run(ctx context.Context, s *Scanner, req Request) (*Report, error) {
	startTime := time.Now()

	var records []CommittedFile
	if req.Files != nil {
		records = s.ScanFiles(req.Commit, req.Files, "")
	} else {
		found, err := s.SearchByCredentialKeywords(ctx, req.Keywords, req.Repo)
		if err != nil {
			return nil, err
		}
		records = found
	}
	sourceMs := time.Since(startTime).Milliseconds()

	suppressed := 0
	if req.Suppress {
		records, suppressed = ApplySuppression(records, s.logger)
	}
	if req.Dedupe {
		records = Dedupe(records)
	}

	findings := make([]Finding, 0, len(records))
	for _, r := range records {
		assignments, n := r.Reported(req.Suppress)
		suppressed += n
		if n > 0 {
			s.logger.Debug().Str("sha", r.Commit.SHA).Str("path", r.Path).Int("assignments", n).
				Str("reason", "local address nearby").Msg("Suppressing assignments")
		}
		f := NewFinding(r, assignments)
		if !req.ShowSecrets {
			f.Patch = req.Redact.Patch(f.Path, f.Patch, assignments)
			f.Candidates = req.Redact.Candidates(assignments)
		}
		findings = append(findings, f)
	}
	SortFindings(findings)

	var keywords []string
	if req.Files == nil {
		keywords = req.Keywords
	}

	return &Report{
		Tool:    "commitleak",
		Version: req.Version,
		RunID:   generateRunID(),
		Repo: RepoInfo{
			Name:   req.Repo.String(),
			Source: req.Mode,
		},
		Inputs: InputInfo{
			Mode:          req.Mode,
			Keywords:      keywords,
			PathsExcluded: s.opts.Exclude,
		},
		Summary:  ComputeSummary(findings, suppressed),
		Findings: findings,
		Timing: Timing{
			SourceMs: sourceMs,
			TotalMs:  time.Since(startTime).Milliseconds(),
		},
	}, nil
}
