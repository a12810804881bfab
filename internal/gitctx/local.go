package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/rs/zerolog"

	"github.com/dshills/commitleak/internal/search"
)

var errStopIter = errors.New("stop iteration")

// Local reads commits from a local clone. It implements search.Source; the
// Repo argument of its methods is ignored.
type Local struct {
	repo   *git.Repository
	root   string
	limit  int
	logger zerolog.Logger
}

var _ search.Source = (*Local)(nil)

// OpenLocal opens the repository containing path. limit caps the commits a
// single search returns; zero means no cap.
func OpenLocal(path string, limit int, logger zerolog.Logger) (*Local, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Local{
		repo:   repo,
		root:   root,
		limit:  limit,
		logger: logger.With().Str("module", "gitctx").Logger(),
	}, nil
}

// Repo names the repository by its root directory.
func (l *Local) Repo() search.Repo {
	return search.Repo{Name: filepath.Base(l.root)}
}

// SearchCommitsByMessage returns commits reachable from any ref whose
// message contains keyword, ignoring case, newest first.
func (l *Local) SearchCommitsByMessage(ctx context.Context, keyword string, _ search.Repo) ([]search.Commit, error) {
	iter, err := l.repo.Log(&git.LogOptions{All: true, Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	needle := strings.ToLower(keyword)
	var commits []search.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(c.Message), needle) {
			return nil
		}
		commits = append(commits, search.Commit{
			SHA:     c.Hash.String(),
			Message: c.Message,
			Author: search.Signature{
				Name:  c.Author.Name,
				Email: c.Author.Email,
				Date:  c.Author.When,
			},
		})
		if l.limit > 0 && len(commits) >= l.limit {
			return errStopIter
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIter) {
		return nil, fmt.Errorf("walking log: %w", err)
	}
	l.logger.Debug().Str("keyword", keyword).Int("commits", len(commits)).Msg("Local commit search done")
	return commits, nil
}

// CommitFiles diffs commit sha against its first parent, or against the
// empty tree for a root commit. Binary files get an empty patch.
func (l *Local) CommitFiles(ctx context.Context, _ search.Repo, sha string) ([]search.FileDiff, error) {
	commit, err := l.repo.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("could not find commit %s: %w", sha, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("could not get tree for commit %s: %w", sha, err)
	}

	parentTree := &object.Tree{}
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("could not find parent of %s: %w", sha, err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("could not get tree for parent of %s: %w", sha, err)
		}
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diffing commit %s: %w", sha, err)
	}

	files := make([]search.FileDiff, 0, len(changes))
	for _, ch := range changes {
		fd, err := changeToFileDiff(ctx, ch)
		if err != nil {
			return nil, fmt.Errorf("commit %s: %w", sha, err)
		}
		files = append(files, fd)
	}
	return files, nil
}

func changeToFileDiff(ctx context.Context, ch *object.Change) (search.FileDiff, error) {
	fd := search.FileDiff{Filename: ch.To.Name}
	if fd.Filename == "" {
		fd.Filename = ch.From.Name
	}

	action, err := ch.Action()
	if err != nil {
		return fd, fmt.Errorf("classifying change to %s: %w", fd.Filename, err)
	}
	switch action {
	case merkletrie.Insert:
		fd.Status = "added"
	case merkletrie.Delete:
		fd.Status = "removed"
	default:
		fd.Status = "modified"
		if ch.From.Name != ch.To.Name {
			fd.Status = "renamed"
		}
	}

	patch, err := ch.PatchContext(ctx)
	if err != nil {
		return fd, fmt.Errorf("patch for %s: %w", fd.Filename, err)
	}
	for _, fp := range patch.FilePatches() {
		if fp.IsBinary() {
			return fd, nil
		}
	}

	var buf bytes.Buffer
	if err := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines).Encode(patch); err != nil {
		return fd, fmt.Errorf("encoding patch for %s: %w", fd.Filename, err)
	}
	fd.Patch = hunks(buf.String())
	return fd, nil
}
