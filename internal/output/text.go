package output

import (
	"io"
	"strings"

	"github.com/dshills/commitleak/internal/search"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *search.Report) error {
	ew := &errWriter{w: w}

	ew.printf("commitleak scan (%s mode)\n", report.Inputs.Mode)
	if report.Repo.Name != "" {
		ew.printf("Repository: %s\n", report.Repo.Name)
	}
	if len(report.Inputs.Keywords) > 0 {
		ew.printf("Keywords: %s\n", strings.Join(report.Inputs.Keywords, ", "))
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d files in %d commits", report.Summary.Files, report.Summary.Commits)
	if report.Summary.Suppressed > 0 {
		ew.printf(" (%d suppressed as local)", report.Summary.Suppressed)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if len(report.Findings) == 0 {
		ew.println("\nNo credential assignments found.")
		return ew.err
	}

	for _, g := range groupByCommit(report.Findings) {
		ew.printf("\n[!!] %s", shortSHA(g.commit.SHA))
		if !g.commit.Date.IsZero() {
			ew.printf("  %s", g.commit.Date.Format("2006-01-02"))
		}
		if g.commit.Author.Name != "" || g.commit.Author.Email != "" {
			ew.printf("  %s <%s>", g.commit.Author.Name, g.commit.Author.Email)
		}
		ew.println("")
		ew.println(strings.Repeat("─", 40))

		for _, f := range g.findings {
			ew.printf("\n  %s  [%s]", location(f), strings.Join(f.Testers, ", "))
			if f.Status != "" {
				ew.printf(" (%s)", f.Status)
			}
			ew.println("")
			for _, c := range f.Candidates {
				ew.printf("    %s\n", strings.TrimSpace(c))
			}
			if f.RawURL != "" {
				ew.printf("    %s\n", f.RawURL)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (source: %dms)\n", report.Timing.TotalMs, report.Timing.SourceMs)

	return ew.err
}
