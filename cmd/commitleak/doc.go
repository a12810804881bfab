// Commitleak is a CLI that finds hardcoded credentials in commit history.
//
// It searches commit messages for credential keywords, scans the patches of
// matching commits with file-format-aware testers, drops assignments paired
// with a local address, and emits findings with deterministic exit codes
// suitable for CI gating and git hooks.
//
// Usage:
//
//	commitleak scan github owner/repo     # search a GitHub repository
//	commitleak scan local ./repo          # search a local clone's history
//	commitleak scan staged                # scan staged changes
//	commitleak scan patch --path app.ini  # scan content from stdin
//	commitleak scan files ./config        # scan files on disk
//	commitleak hook install               # block commits that add secrets
package main
