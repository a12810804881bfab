package redact

import (
	"regexp"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/dshills/commitleak/internal/detect"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for well-known token shapes.
var secretPatterns = []*regexp.Regexp{
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	// AWS secret access keys
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	// Bearer tokens
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	// Private key blocks
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Slack tokens
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
}

// Secrets replaces well-known token shapes in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}

// Assignment masks the value of one matched assignment and keeps the rest
// of its text. An assignment whose value span is missing or does not line
// up with its text is masked whole.
func Assignment(a detect.Assignment) string {
	end := a.ValueOffset + len(a.Value)
	if a.Value == "" || a.ValueOffset < 0 || end > len(a.Text) || a.Text[a.ValueOffset:end] != a.Value {
		return placeholder
	}
	return a.Text[:a.ValueOffset] + placeholder + a.Text[end:]
}

// Value replaces every occurrence of value in text that is not part of a
// longer word.
func Value(text, value string) string {
	if value == "" {
		return text
	}
	var b strings.Builder
	last := 0
	for from := 0; from <= len(text)-len(value); {
		i := strings.Index(text[from:], value)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(value)
		if !wordByte(text, start-1) && !wordByte(text, end) {
			b.WriteString(text[last:start])
			b.WriteString(placeholder)
			last = end
			from = end
			continue
		}
		from = start + 1
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func wordByte(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// Policy masks patches and assignments for a report.
type Policy struct {
	paths *ignore.GitIgnore
}

// NewPolicy creates a Policy. Files matching any of paths have their whole
// patch withheld.
func NewPolicy(paths []string) *Policy {
	p := &Policy{}
	if len(paths) > 0 {
		p.paths = ignore.CompileIgnoreLines(paths...)
	}
	return p
}

// WithholdsPath reports whether the patch of path is withheld entirely.
func (p *Policy) WithholdsPath(path string) bool {
	return p != nil && p.paths != nil && p.paths.MatchesPath(path)
}

// Patch masks the value of every assignment in patch, then any remaining
// well-known token shapes. Values are masked wherever they stand alone, so
// a patch that differs from the matched text (normalized JSON) is covered.
func (p *Policy) Patch(path, patch string, assignments []detect.Assignment) string {
	if p.WithholdsPath(path) {
		return placeholder + " (patch withheld by path policy)\n"
	}
	result := patch
	for _, a := range assignments {
		if a.Text != "" {
			result = strings.ReplaceAll(result, a.Text, Assignment(a))
		}
		result = Value(result, a.Value)
	}
	return Secrets(result)
}

// Candidates returns the assignment texts with their values masked.
func (p *Policy) Candidates(assignments []detect.Assignment) []string {
	out := make([]string, len(assignments))
	for i, a := range assignments {
		out[i] = Assignment(a)
	}
	return out
}
