// Package textutil provides small text helpers shared by the CLI and the
// packaging stages: filename sanitization, display title casing, and a
// generic conditional.
package textutil
