package detect

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// passwordChars is the alphabet a quoted credential literal may be built from.
const passwordChars = `[a-zA-Z0-9!@#$%^&*./+=-]`

// ExtensionClass is a named group of file extensions sharing one syntactic
// convention for variable assignment.
type ExtensionClass struct {
	Name       string
	Extensions []string
}

// Contains reports whether ext (without the dot) belongs to the class.
func (c ExtensionClass) Contains(ext string) bool {
	return slices.Contains(c.Extensions, ext)
}

// Occurrence is one match of a literal inside content.
type Occurrence struct {
	Literal string `json:"literal"`
	Text    string `json:"text"`
	Pos     int    `json:"pos"`
}

// Assignment is one credential-like assignment found in content. Value is
// the assigned literal and ValueOffset is its byte offset within Text.
type Assignment struct {
	Text        string `json:"text"`
	Value       string `json:"value"`
	ValueOffset int    `json:"valueOffset"`
}

// valueGroup names the capture group holding the assigned literal in every
// assignment pattern.
const valueGroup = "value"

type assignPattern struct {
	re    *regexp.Regexp
	value int
}

// Tester locates credential assignments and literal values for one
// extension class. A Tester is immutable after construction.
type Tester struct {
	class     ExtensionClass
	normalize func(string) string
	assign    []assignPattern
	literal   []string
	// local holds the literal patterns compiled for each LocalAddresses entry.
	local map[string][]*regexp.Regexp
}

// testerSpec is the uncompiled form of a Tester. Assignment templates use
// {K} for the keyword alternation and {P} for the password alphabet, and
// capture the literal in a group named "value". Literal templates use {V}
// for the quoted literal.
type testerSpec struct {
	class     ExtensionClass
	normalize func(string) string
	assign    []string
	literal   []string
}

func newTester(spec testerSpec, keywordAlt string) (*Tester, error) {
	if len(spec.class.Extensions) == 0 {
		return nil, fmt.Errorf("tester %q has no extensions", spec.class.Name)
	}
	if len(spec.assign) == 0 {
		return nil, fmt.Errorf("tester %q has no assignment patterns", spec.class.Name)
	}
	r := strings.NewReplacer("{K}", keywordAlt, "{P}", passwordChars)
	t := &Tester{
		class:     spec.class,
		normalize: spec.normalize,
		literal:   spec.literal,
		local:     make(map[string][]*regexp.Regexp, len(LocalAddresses)),
	}
	for _, tpl := range spec.assign {
		re, err := regexp.Compile("(?i)" + r.Replace(tpl))
		if err != nil {
			return nil, fmt.Errorf("compiling %s pattern: %w", spec.class.Name, err)
		}
		value := re.SubexpIndex(valueGroup)
		if value < 0 {
			return nil, fmt.Errorf("%s pattern %q has no %q group", spec.class.Name, tpl, valueGroup)
		}
		t.assign = append(t.assign, assignPattern{re: re, value: value})
	}
	if _, err := compileLiteral(spec.literal, "x"); err != nil {
		return nil, fmt.Errorf("compiling %s literal pattern: %w", spec.class.Name, err)
	}
	for _, addr := range LocalAddresses {
		res, err := compileLiteral(spec.literal, addr)
		if err != nil {
			return nil, fmt.Errorf("compiling %s literal pattern: %w", spec.class.Name, err)
		}
		t.local[addr] = res
	}
	return t, nil
}

// compileLiteral substitutes the quoted literal into each template.
func compileLiteral(templates []string, literal string) ([]*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(literal)
	res := make([]*regexp.Regexp, 0, len(templates))
	for _, tpl := range templates {
		re, err := regexp.Compile("(?i)" + strings.ReplaceAll(tpl, "{V}", quoted))
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

// Name returns the extension class name.
func (t *Tester) Name() string { return t.class.Name }

// Class returns the extension class the tester is bound to.
func (t *Tester) Class() ExtensionClass { return t.class }

// Applies reports whether the tester handles files with extension ext.
func (t *Tester) Applies(ext string) bool { return t.class.Contains(ext) }

// Normalize prepares content for matching. Testers without a normalize step
// return content unchanged.
func (t *Tester) Normalize(content string) string {
	if t.normalize == nil {
		return content
	}
	return t.normalize(content)
}

// FindAssignments returns the text of every credential-like assignment in
// content. It returns nil when no pattern matches.
func (t *Tester) FindAssignments(content string) []string {
	spans := t.FindAssignmentSpans(content)
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, len(spans))
	for i, a := range spans {
		out[i] = a.Text
	}
	return out
}

// FindAssignmentSpans returns every credential-like assignment in content
// together with the position of its value. The patterns are tried in order
// and the first one with any match wins.
func (t *Tester) FindAssignmentSpans(content string) []Assignment {
	for _, p := range t.assign {
		idx := p.re.FindAllStringSubmatchIndex(content, -1)
		if len(idx) == 0 {
			continue
		}
		out := make([]Assignment, 0, len(idx))
		for _, loc := range idx {
			a := Assignment{Text: content[loc[0]:loc[1]]}
			start, end := loc[2*p.value], loc[2*p.value+1]
			if start >= 0 {
				a.Value = content[start:end]
				a.ValueOffset = start - loc[0]
			}
			out = append(out, a)
		}
		return out
	}
	return nil
}

// FindLiteralOccurrences returns the occurrences of literal embedded in a
// value context (quotes, element text, attribute, right side of '=').
// It returns nil when the literal does not appear.
func (t *Tester) FindLiteralOccurrences(literal, content string) []Occurrence {
	res, ok := t.local[literal]
	if !ok {
		var err error
		// Templates are checked in newTester and a quoted literal cannot
		// make one invalid.
		if res, err = compileLiteral(t.literal, literal); err != nil {
			panic(err)
		}
	}
	for _, re := range res {
		idx := re.FindAllStringIndex(content, -1)
		if len(idx) == 0 {
			continue
		}
		occ := make([]Occurrence, 0, len(idx))
		for _, loc := range idx {
			occ = append(occ, Occurrence{
				Literal: literal,
				Text:    content[loc[0]:loc[1]],
				Pos:     loc[0],
			})
		}
		return occ
	}
	return nil
}

// Match is the result of running a Tester over one piece of content.
// Candidates holds the text of each entry of Assignments.
type Match struct {
	Tester      *Tester
	Content     string
	Candidates  []string
	Assignments []Assignment
}

// Test normalizes content and looks for assignments. It returns nil when
// nothing matches.
func (t *Tester) Test(content string) *Match {
	content = t.Normalize(content)
	if content == "" {
		return nil
	}
	spans := t.FindAssignmentSpans(content)
	if len(spans) == 0 {
		return nil
	}
	candidates := make([]string, len(spans))
	for i, a := range spans {
		candidates[i] = a.Text
	}
	return &Match{Tester: t, Content: content, Candidates: candidates, Assignments: spans}
}

// ExcludeLocalPasswords returns the candidates of m that sit close to a
// local address and should be dropped from findings.
func (m *Match) ExcludeLocalPasswords() []string {
	if m == nil {
		return nil
	}
	return ExcludeLocalPasswords(m.Candidates, m.Content, m.Tester)
}
