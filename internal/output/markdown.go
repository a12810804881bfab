package output

import (
	"io"
	"path"
	"strings"

	"github.com/dshills/commitleak/internal/search"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *search.Report) error {
	ew := &errWriter{w: w}

	ew.printf("## commitleak scan\n\n")

	ew.printf("| | Count |\n")
	ew.printf("|---|---|\n")
	ew.printf("| Files | %d |\n", report.Summary.Files)
	ew.printf("| Commits | %d |\n", report.Summary.Commits)
	ew.printf("| Suppressed | %d |\n\n", report.Summary.Suppressed)

	if len(report.Findings) == 0 {
		ew.println("No credential assignments found. :white_check_mark:")
		return ew.err
	}

	for _, g := range groupByCommit(report.Findings) {
		ew.printf("<details>\n<summary>:red_circle: <code>%s</code> %s (%d)</summary>\n\n",
			shortSHA(g.commit.SHA), mdEscape(g.commit.Author.Name), len(g.findings))

		for _, f := range g.findings {
			ew.printf("### `%s`\n\n", location(f))
			ew.printf("Testers: %s", strings.Join(f.Testers, ", "))
			if f.Keyword != "" {
				ew.printf(" | Keyword: `%s`", f.Keyword)
			}
			ew.printf("\n\n")

			ew.printf("```%s\n", inferLang(f.Path))
			for _, c := range f.Candidates {
				ew.printf("%s\n", strings.TrimSpace(c))
			}
			ew.printf("```\n\n")
			ew.printf("---\n\n")
		}

		ew.printf("</details>\n\n")
	}

	ew.printf("*Scanned in %dms*\n", report.Timing.TotalMs)
	return ew.err
}

func mdEscape(s string) string {
	r := strings.NewReplacer("<", "&lt;", ">", "&gt;", "|", "\\|")
	return r.Replace(s)
}

var langByExt = map[string]string{
	".go":         "go",
	".cs":         "csharp",
	".cpp":        "cpp",
	".java":       "java",
	".js":         "javascript",
	".py":         "python",
	".groovy":     "groovy",
	".rb":         "ruby",
	".php":        "php",
	".json":       "json",
	".xml":        "xml",
	".properties": "properties",
	".ini":        "ini",
}

func inferLang(p string) string {
	return langByExt[strings.ToLower(path.Ext(p))]
}
