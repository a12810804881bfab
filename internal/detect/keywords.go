package detect

import (
	"regexp"
	"strings"
)

// DefaultKeywords are the variable-name fragments that mark an assignment
// as credential-like. Matching is case-insensitive.
var DefaultKeywords = []string{
	"password",
	"passwd",
	"pwd",
	"secret",
	"apikey",
	"api_key",
	"accesskey",
	"access_key",
	"token",
	"credential",
}

// KeywordPattern joins keywords into one alternation group, e.g.
// "(password|secret)". Keywords are matched literally.
func KeywordPattern(keywords []string) string {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	return "(" + strings.Join(quoted, "|") + ")"
}
