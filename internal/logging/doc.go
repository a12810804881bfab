// Package logging builds the zerolog logger shared by all commands.
//
// Output goes to stderr, as human-readable console lines or JSON, and
// optionally to a size-rotated file managed by lumberjack. Stdout is left
// to reports.
package logging
