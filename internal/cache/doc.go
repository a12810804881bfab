// Package cache stores the changed-file lists of remote commits on disk so
// repeated scans of the same repository do not refetch them.
//
// Entries are JSON files named by the SHA-256 of the key (API URL, repository
// and commit SHA). Commits are immutable, so the TTL only bounds disk use.
// The default directory is $XDG_CACHE_HOME/commitleak or the OS equivalent.
package cache
