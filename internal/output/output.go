package output

import (
	"fmt"
	"io"
	"os"

	"github.com/dshills/commitleak/internal/search"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *search.Report) error
}

// Formats lists the supported format names.
var Formats = []string{"text", "json", "markdown", "sarif"}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is empty.
func WriteReport(report *search.Report, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return writer.Write(w, report)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

// commitGroup is the findings of one commit, in report order.
type commitGroup struct {
	commit   search.CommitRef
	findings []search.Finding
}

func groupByCommit(findings []search.Finding) []commitGroup {
	var groups []commitGroup
	index := make(map[string]int)
	for _, f := range findings {
		i, ok := index[f.Commit.SHA]
		if !ok {
			i = len(groups)
			index[f.Commit.SHA] = i
			groups = append(groups, commitGroup{commit: f.Commit})
		}
		groups[i].findings = append(groups[i].findings, f)
	}
	return groups
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func location(f search.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.Path, f.Line)
	}
	return f.Path
}
