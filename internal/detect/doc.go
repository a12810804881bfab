// Package detect finds hardcoded credentials in file patches.
//
// A [Registry] holds an ordered list of [Tester] values, each bound to one
// class of file extensions (brace languages, scripting languages, JSON, XML,
// key/value config). [Registry.TestersFor] picks the testers that apply to a
// file name; [Tester.Test] runs them against a patch and returns the matched
// assignments.
//
// Matches paired with a nearby local or example address ("localhost",
// "127.0.0.1", ...) are presumed to be fixtures. [ExcludeLocalPasswords]
// computes that pairing greedily, in discovery order, and returns the
// candidates that should be dropped. Suppression is never applied
// implicitly; callers ask for it through [Match.ExcludeLocalPasswords].
//
// Everything in this package is pure: no I/O, no shared mutable state.
package detect
