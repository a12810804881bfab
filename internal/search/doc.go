// Package search finds commits that introduce hardcoded credentials.
//
// A [Source] supplies commits (GitHub, a local clone, the staged index) and
// the per-file patches of each commit. [Scanner.SearchByCredentialKeywords]
// asks the source for commits whose message mentions each secret keyword,
// runs the detect registry over every changed file and returns one
// [CommittedFile] per credential-bearing file.
//
// Keyword searches run in parallel with a bounded limit. Results come back
// in keyword order. Source errors are returned unchanged (wrapped).
//
// Local-address suppression and (commit, path) de-duplication are not
// applied by the scanner; use [ApplySuppression] and [Dedupe].
package search
