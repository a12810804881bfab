package detect

import "strings"

// MaxLineDistance is the largest line distance at which a candidate is
// paired with a local address.
const MaxLineDistance = 5

// LocalAddresses are literals that indicate local, example or in-memory
// configuration rather than a deployed system.
var LocalAddresses = []string{
	"localhost",
	"127.0.0.1",
	"example",
	"h2",
}

// Pairing records the local address a candidate was paired with, if any.
type Pairing struct {
	Candidate string      `json:"candidate"`
	Position  int         `json:"position"`
	Local     *Occurrence `json:"local,omitempty"`
	Distance  int         `json:"distance,omitempty"`
}

// Paired reports whether the candidate claimed a local address.
func (p Pairing) Paired() bool { return p.Local != nil }

// LineDistance counts the newlines between offsets a and b of content.
// The order of a and b does not matter.
func LineDistance(content string, a, b int) int {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 0 {
		lo = 0
	}
	if hi > len(content) {
		hi = len(content)
	}
	return strings.Count(content[lo:hi], "\n")
}

// LocalOccurrences finds every local address in content using t's literal
// patterns, in LocalAddresses order.
func LocalOccurrences(content string, t *Tester) []Occurrence {
	var pool []Occurrence
	for _, addr := range LocalAddresses {
		pool = append(pool, t.FindLiteralOccurrences(addr, content)...)
	}
	return pool
}

// Pair assigns local addresses to candidates greedily. Candidates are
// processed in the given order; each takes the nearest remaining address
// (the first one found on ties) if it is within MaxLineDistance lines, and
// that address cannot be taken again. A candidate's position is the first
// occurrence of its text in content.
func Pair(candidates []string, content string, t *Tester) []Pairing {
	pool := LocalOccurrences(content, t)
	pairings := make([]Pairing, 0, len(candidates))
	for _, c := range candidates {
		p := Pairing{Candidate: c, Position: strings.Index(content, c)}
		if len(pool) == 0 || p.Position < 0 {
			pairings = append(pairings, p)
			continue
		}
		best, bestDist := -1, 0
		for i, occ := range pool {
			d := LineDistance(content, p.Position, occ.Pos)
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
		if bestDist <= MaxLineDistance {
			occ := pool[best]
			p.Local = &occ
			p.Distance = bestDist
			pool = append(pool[:best], pool[best+1:]...)
		}
		pairings = append(pairings, p)
	}
	return pairings
}

// ExcludeLocalPasswords returns the candidates paired with a nearby local
// address. Those are treated as fixtures and should be dropped.
func ExcludeLocalPasswords(candidates []string, content string, t *Tester) []string {
	var excluded []string
	for _, p := range Pair(candidates, content, t) {
		if p.Paired() {
			excluded = append(excluded, p.Candidate)
		}
	}
	return excluded
}
