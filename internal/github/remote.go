package github

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/dshills/commitleak/internal/search"
)

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
	slugRe        = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// DetectRepo parses owner/repo from the git remote origin URL.
func DetectRepo() (search.Repo, error) {
	out, err := exec.Command("git", "remote", "get-url", "origin").Output()
	if err != nil {
		return search.Repo{}, fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	return ParseRemoteURL(strings.TrimSpace(string(out)))
}

// ParseRemoteURL extracts owner/repo from a git remote URL.
func ParseRemoteURL(url string) (search.Repo, error) {
	url = strings.TrimSuffix(url, ".git")

	if m := httpsRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return search.Repo{Owner: m[1], Name: m[2]}, nil
	}
	if m := sshRemoteRe.FindStringSubmatch(url); len(m) == 3 {
		return search.Repo{Owner: m[1], Name: m[2]}, nil
	}
	return search.Repo{}, fmt.Errorf("cannot parse owner/repo from remote URL: %s", url)
}

// ParseRepo parses an "owner/repo" argument.
func ParseRepo(s string) (search.Repo, error) {
	m := slugRe.FindStringSubmatch(strings.TrimSuffix(s, ".git"))
	if m == nil {
		return search.Repo{}, fmt.Errorf("invalid repository %q, want owner/repo", s)
	}
	return search.Repo{Owner: m[1], Name: m[2]}, nil
}
