// Package cli wires together the Cobra command tree for the commitleak binary.
//
// It defines the root command and all subcommands (scan, testers, config,
// cache, hook, version), binds flags, reads configuration, builds the
// commit source for each scan mode, and returns deterministic exit codes for
// CI gating.
package cli
