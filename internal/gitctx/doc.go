// Package gitctx turns local git state and plain files into commit sources
// for the scanner.
//
// [Local] reads the history of a clone with go-git and implements
// search.Source, so the same keyword search runs against a checkout without
// any network access. [Staged] splits the index diff into per-file patches
// for pre-commit use. [Snippet] and [Files] wrap raw content as added-file
// patches, optionally diffed against a base version.
package gitctx
