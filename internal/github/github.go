package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog"

	"github.com/dshills/commitleak/internal/cache"
	"github.com/dshills/commitleak/internal/search"
)

const (
	defaultAPIURL     = "https://api.github.com"
	defaultPerPage    = 100
	defaultMaxPages   = 10
	defaultMaxRetries = 3
	defaultMemoTTL    = 10 * time.Minute
)

// Options configures a Client. Zero values take defaults.
type Options struct {
	// Token overrides GITHUB_TOKEN.
	Token string
	// APIURL overrides GITHUB_API_URL.
	APIURL     string
	PerPage    int
	MaxPages   int
	MaxRetries int
	MemoTTL    time.Duration
	// Cache persists commit file lists across runs. May be nil.
	Cache  *cache.Cache
	Logger zerolog.Logger
}

// Client provides access to the GitHub REST API. It implements
// search.Source.
type Client struct {
	token      string
	apiURL     string
	httpCli    *http.Client
	perPage    int
	maxPages   int
	maxRetries int
	memoTTL    time.Duration
	memo       *ttlcache.Cache[string, []search.FileDiff]
	disk       *cache.Cache
	logger     zerolog.Logger
}

var _ search.Source = (*Client)(nil)

// NewClient creates a new GitHub client. A token is required, either in
// opts or in the GITHUB_TOKEN env var.
func NewClient(opts Options) (*Client, error) {
	token := opts.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, &AuthError{Message: "GITHUB_TOKEN environment variable is not set"}
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = os.Getenv("GITHUB_API_URL")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	c := newClient(token, apiURL, &http.Client{Timeout: 60 * time.Second}, opts)
	return c, nil
}

func newClient(token, apiURL string, httpCli *http.Client, opts Options) *Client {
	c := &Client{
		token:      token,
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpCli:    httpCli,
		perPage:    opts.PerPage,
		maxPages:   opts.MaxPages,
		maxRetries: opts.MaxRetries,
		memoTTL:    opts.MemoTTL,
		disk:       opts.Cache,
		logger:     opts.Logger.With().Str("module", "github").Logger(),
		memo: ttlcache.New[string, []search.FileDiff](
			ttlcache.WithDisableTouchOnHit[string, []search.FileDiff](),
		),
	}
	if c.perPage <= 0 || c.perPage > 100 {
		c.perPage = defaultPerPage
	}
	if c.maxPages <= 0 {
		c.maxPages = defaultMaxPages
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	} else if c.maxRetries == 0 {
		c.maxRetries = defaultMaxRetries
	}
	if c.memoTTL <= 0 {
		c.memoTTL = defaultMemoTTL
	}
	return c
}

// APIURL returns the API base URL the client talks to.
func (c *Client) APIURL() string { return c.apiURL }

// getJSON issues a GET and decodes a 200 response into v, retrying rate
// limits.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	u := c.apiURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return retryWithBackoff(ctx, c.maxRetries, func() error {
		err := c.doGet(ctx, u, v)
		if IsRateLimitError(err) {
			c.logger.Warn().Err(err).Str("url", u).Msg("GitHub rate limit hit")
		}
		return err
	})
}

func (c *Client) doGet(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return rateLimitFrom(resp)
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return rateLimitFrom(resp)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Message: strings.TrimSpace(string(body))}
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("GitHub rejected query (422): %s", string(body))
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func rateLimitFrom(resp *http.Response) *RateLimitError {
	e := &RateLimitError{Status: resp.StatusCode}
	if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		e.Reset = time.Unix(reset, 0)
	}
	return e
}
