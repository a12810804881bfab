package detect

import (
	"errors"
	"strings"
)

// Options controls which files are eligible for scanning.
type Options struct {
	// IncludeTestResources scans paths that look like tests, examples,
	// vendored code or build output. Off by default.
	IncludeTestResources bool
}

// Registry is an ordered, immutable collection of testers built for one
// keyword set. It is safe for concurrent use.
type Registry struct {
	keywords []string
	testers  []*Tester
}

// NewRegistry compiles the default tester set for keywords.
func NewRegistry(keywords []string) (*Registry, error) {
	var kept []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kept = append(kept, k)
		}
	}
	if len(kept) == 0 {
		return nil, errors.New("at least one secret keyword is required")
	}
	alt := KeywordPattern(kept)
	r := &Registry{keywords: kept}
	for _, spec := range testerSpecs {
		t, err := newTester(spec, alt)
		if err != nil {
			return nil, err
		}
		r.testers = append(r.testers, t)
	}
	return r, nil
}

var defaultRegistry = func() *Registry {
	r, err := NewRegistry(DefaultKeywords)
	if err != nil {
		panic(err)
	}
	return r
}()

// Default returns the registry built from DefaultKeywords.
func Default() *Registry { return defaultRegistry }

// Keywords returns a copy of the keyword set the registry was built with.
func (r *Registry) Keywords() []string {
	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}

// Testers returns all testers in registry order.
func (r *Registry) Testers() []*Tester {
	out := make([]*Tester, len(r.testers))
	copy(out, r.testers)
	return out
}

// TestersFor returns the testers applicable to filename in registry order.
// Files without an extension, and test-looking paths unless
// opts.IncludeTestResources is set, get none.
func (r *Registry) TestersFor(filename string, opts Options) []*Tester {
	ext, ok := Extension(filename)
	if !ok {
		return nil
	}
	if !opts.IncludeTestResources && LooksLikeTestOrResource(filename) {
		return nil
	}
	var out []*Tester
	for _, t := range r.testers {
		if t.Applies(ext) {
			out = append(out, t)
		}
	}
	return out
}

// Scan runs every applicable tester over patch and returns the matches.
func (r *Registry) Scan(filename, patch string, opts Options) []*Match {
	if patch == "" {
		return nil
	}
	var matches []*Match
	for _, t := range r.TestersFor(filename, opts) {
		if m := t.Test(patch); m != nil {
			matches = append(matches, m)
		}
	}
	return matches
}
