package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/commitleak/internal/detect"
)

// defaultConcurrency limits parallel keyword searches.
const defaultConcurrency = 4

// Options controls a Scanner.
type Options struct {
	Detect detect.Options
	// Exclude holds gitignore-style patterns for paths never scanned.
	Exclude []string
	// Concurrency bounds parallel keyword searches. Zero means 4.
	Concurrency int
}

// Scanner runs the detect registry over commits from a Source.
type Scanner struct {
	registry    *detect.Registry
	source      Source
	opts        Options
	exclude     *ignore.GitIgnore
	concurrency int
	logger      zerolog.Logger
}

// New creates a Scanner. source may be nil when only ScanFiles is used.
func New(registry *detect.Registry, source Source, opts Options, logger zerolog.Logger) *Scanner {
	if registry == nil {
		registry = detect.Default()
	}
	s := &Scanner{
		registry:    registry,
		source:      source,
		opts:        opts,
		concurrency: opts.Concurrency,
		logger:      logger.With().Str("module", "search").Logger(),
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	if len(opts.Exclude) > 0 {
		s.exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}
	return s
}

// Registry returns the registry the scanner matches with.
func (s *Scanner) Registry() *detect.Registry { return s.registry }

// ScanFiles keeps the files of commit whose patch matches at least one
// applicable tester.
func (s *Scanner) ScanFiles(commit Commit, files []FileDiff, keyword string) []CommittedFile {
	var out []CommittedFile
	for _, f := range files {
		log := s.logger.With().Str("sha", commit.SHA).Str("path", f.Filename).Logger()
		if f.Patch == "" {
			log.Debug().Str("reason", "empty patch").Msg("Skipping file")
			continue
		}
		if s.exclude != nil && s.exclude.MatchesPath(f.Filename) {
			log.Debug().Str("reason", "exclude pattern").Msg("Skipping file")
			continue
		}
		if !s.opts.Detect.IncludeTestResources && detect.LooksLikeTestOrResource(f.Filename) {
			log.Debug().Str("reason", "test or resource path").Msg("Skipping file")
			continue
		}
		matches := s.registry.Scan(f.Filename, f.Patch, s.opts.Detect)
		if len(matches) == 0 {
			continue
		}
		log.Debug().Int("testers", len(matches)).Msg("Credential assignment found")
		out = append(out, newCommittedFile(f, commit, keyword, matches))
	}
	return out
}

// ScanCommit fetches the changed files of commit and scans them.
func (s *Scanner) ScanCommit(ctx context.Context, repo Repo, commit Commit) ([]CommittedFile, error) {
	return s.scanCommit(ctx, repo, commit, "")
}

func (s *Scanner) scanCommit(ctx context.Context, repo Repo, commit Commit, keyword string) ([]CommittedFile, error) {
	if s.source == nil {
		return nil, fmt.Errorf("scanner has no commit source")
	}
	files, err := s.source.CommitFiles(ctx, repo, commit.SHA)
	if err != nil {
		return nil, fmt.Errorf("fetching files of %s: %w", commit.SHA, err)
	}
	return s.ScanFiles(commit, files, keyword), nil
}

// SearchByCredentialKeywords searches commit messages for each keyword and
// scans every commit found. Results are in keyword order, then source
// order. The same file may appear once per keyword that found its commit.
func (s *Scanner) SearchByCredentialKeywords(ctx context.Context, keywords []string, repo Repo) ([]CommittedFile, error) {
	if s.source == nil {
		return nil, fmt.Errorf("scanner has no commit source")
	}
	perKeyword := make([][]CommittedFile, len(keywords))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, keyword := range keywords {
		g.Go(func() error {
			commits, err := s.source.SearchCommitsByMessage(gctx, keyword, repo)
			if err != nil {
				return fmt.Errorf("searching commits for %q: %w", keyword, err)
			}
			s.logger.Debug().Str("keyword", keyword).Int("commits", len(commits)).Msg("Commits found")
			var found []CommittedFile
			for _, c := range commits {
				recs, err := s.scanCommit(gctx, repo, c, keyword)
				if err != nil {
					return err
				}
				found = append(found, recs...)
			}
			perKeyword[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []CommittedFile
	for _, recs := range perKeyword {
		out = append(out, recs...)
	}
	return out, nil
}

// ApplySuppression drops records whose every assignment is paired with a
// local address. It returns the kept records and the number of assignments
// dropped with them.
func ApplySuppression(records []CommittedFile, logger zerolog.Logger) ([]CommittedFile, int) {
	kept := make([]CommittedFile, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.Suppressed() {
			logger.Debug().Str("sha", r.Commit.SHA).Str("path", r.Path).
				Str("reason", "local address nearby").Msg("Suppressing file")
			dropped += len(r.Candidates())
			continue
		}
		kept = append(kept, r)
	}
	return kept, dropped
}

// Dedupe keeps the first record for each (commit, path) pair.
func Dedupe(records []CommittedFile) []CommittedFile {
	seen := make(map[string]bool, len(records))
	out := make([]CommittedFile, 0, len(records))
	for _, r := range records {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	return out
}
