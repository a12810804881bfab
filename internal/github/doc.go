// Package github is a commit source backed by the GitHub REST API.
//
// Commits are found with the commit search endpoint (q=<keyword>+repo:<owner>/<repo>)
// and their changed files with the single-commit endpoint. Both are paginated.
// Rate-limited requests are retried with exponential backoff; authentication
// failures are returned as *AuthError and never retried.
//
// File lists are memoized in memory so a commit found by several keywords is
// fetched once per run, and optionally persisted through the cache package.
// The token comes from the GITHUB_TOKEN environment variable and the API base
// from GITHUB_API_URL (for GitHub Enterprise).
package github
