// Package functions is the external function registry FUNCTION expressions
// dispatch into (spec §4.4/§6): a name-keyed lookup of CONDITION,
// TRANSFORMER, and EFFECT entries, plus the built-ins the engine ships out
// of the box, one file per concern, the way the teacher ships
// internal/builtins.
//
// Built-ins lean on the same locale/text/JSON libraries the wider example
// corpus favours rather than hand-rolled string handling: golang.org/x/text
// for locale-aware comparison and casing, gjson/sjson for JSON-document
// navigation and patching, and maruel/natural for human-friendly ordering.
package functions
