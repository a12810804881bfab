// Package redact masks credential values in report output.
//
// Assignments found by the detect package are masked in place: the quoted
// value, the element text, or the text after "=" is replaced with
// [REDACTED] while the variable name stays readable. Remaining patch text
// is also passed through regex heuristics for well-known token shapes (AWS
// keys, JWTs, private keys, GitHub and Slack tokens).
//
// Files whose paths match the configured gitignore-style patterns have
// their whole patch withheld.
package redact
