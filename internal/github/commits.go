package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/dshills/commitleak/internal/cache"
	"github.com/dshills/commitleak/internal/search"
)

var errNotFound = errors.New("not found")

type searchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []searchItem `json:"items"`
}

type searchItem struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type commitResponse struct {
	SHA   string            `json:"sha"`
	Files []search.FileDiff `json:"files"`
}

// SearchCommitsByMessage returns commits of repo whose message contains
// keyword, following pagination up to the configured page limit.
func (c *Client) SearchCommitsByMessage(ctx context.Context, keyword string, repo search.Repo) ([]search.Commit, error) {
	var commits []search.Commit
	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{}
		q.Set("q", fmt.Sprintf("%s repo:%s", keyword, repo))
		q.Set("per_page", strconv.Itoa(c.perPage))
		q.Set("page", strconv.Itoa(page))

		var resp searchResponse
		if err := c.getJSON(ctx, "/search/commits", q, &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, fmt.Errorf("repository %s not found", repo)
			}
			return nil, fmt.Errorf("searching commits: %w", err)
		}
		for _, it := range resp.Items {
			commits = append(commits, search.Commit{
				SHA:     it.SHA,
				Message: it.Commit.Message,
				Author: search.Signature{
					Name:  it.Commit.Author.Name,
					Email: it.Commit.Author.Email,
					Date:  it.Commit.Author.Date,
				},
			})
		}
		if len(resp.Items) < c.perPage || len(commits) >= resp.TotalCount {
			break
		}
	}
	c.logger.Debug().Str("keyword", keyword).Str("repo", repo.String()).
		Int("commits", len(commits)).Msg("Commit search done")
	return commits, nil
}

// CommitFiles returns the changed files of commit sha. Results are
// memoized for the client's lifetime and persisted to the disk cache.
func (c *Client) CommitFiles(ctx context.Context, repo search.Repo, sha string) ([]search.FileDiff, error) {
	key := cache.CommitKey(c.apiURL, repo.String(), sha)

	var lerr error
	loader := ttlcache.LoaderFunc[string, []search.FileDiff](
		func(tc *ttlcache.Cache[string, []search.FileDiff], k string) *ttlcache.Item[string, []search.FileDiff] {
			var files []search.FileDiff
			files, lerr = c.loadCommitFiles(ctx, repo, sha, k)
			if lerr == nil {
				return tc.Set(k, files, c.memoTTL)
			}
			return nil
		},
	)

	item := c.memo.Get(key, ttlcache.WithLoader[string, []search.FileDiff](loader))
	if lerr != nil {
		return nil, lerr
	}
	if item == nil {
		return nil, nil
	}
	return item.Value(), nil
}

func (c *Client) loadCommitFiles(ctx context.Context, repo search.Repo, sha, key string) ([]search.FileDiff, error) {
	var files []search.FileDiff
	if c.disk.Get(key, &files) {
		c.logger.Debug().Str("sha", sha).Msg("Commit files cache hit")
		return files, nil
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/commits/%s", repo.Owner, repo.Name, sha)
	for page := 1; page <= c.maxPages; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(c.perPage))
		q.Set("page", strconv.Itoa(page))

		var resp commitResponse
		if err := c.getJSON(ctx, endpoint, q, &resp); err != nil {
			if errors.Is(err, errNotFound) {
				return nil, fmt.Errorf("commit %s not found in %s", sha, repo)
			}
			return nil, fmt.Errorf("fetching commit %s: %w", sha, err)
		}
		files = append(files, resp.Files...)
		if len(resp.Files) < c.perPage {
			break
		}
	}

	if err := c.disk.Put(key, files); err != nil {
		c.logger.Warn().Err(err).Str("sha", sha).Msg("Cannot cache commit files")
	}
	return files, nil
}
