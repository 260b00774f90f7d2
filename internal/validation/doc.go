// Package validation checks a completed Registry against the system-wide
// rules that code generation depends on, and reports violations as
// structured, suggestion-bearing diagnostics.
//
// Every rule family runs unconditionally and violations accumulate; the
// caller always sees the full picture rather than the first failure.
// Validation never mutates the registry and has no side effects beyond
// producing the diagnostic list. Whether a non-empty list is fatal is the
// caller's decision (the command-line driver treats it as one).
package validation
