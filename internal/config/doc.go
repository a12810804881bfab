// Package config loads and merges commitleak configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (COMMITLEAK_KEYWORDS, COMMITLEAK_FORMAT, etc.)
//  3. Config file ($XDG_CONFIG_HOME/commitleak/config.yaml, or config.json)
//  4. Built-in defaults
//
// The file is decoded on top of the defaults, so keys it omits keep their
// default values. The merged result is checked with [Validate] before use.
// Use [Load] to obtain a merged [Config], [Save] to write one, and
// [SetField] to update a single key.
package config
