// Package ast defines the canonical node shapes compiled from a journey's
// JSON document: structural nodes (JOURNEY, STEP, BLOCK), expression nodes
// (REFERENCE, PIPELINE, FORMAT, CONDITIONAL, ITERATE, VALIDATION, NEXT,
// FUNCTION), predicate nodes (TEST, AND, OR, XOR, NOT), transition nodes
// (ACCESS, ACTION, SUBMIT), and the pseudo nodes the compiler synthesizes to
// externalize request/field access (POST, QUERY, PARAMS, DATA,
// ANSWER_LOCAL, ANSWER_REMOTE).
//
// Every node carries an open property bag rather than fixed Go fields,
// mirroring the source format: a property's value is a primitive, a plain
// object, an array, or another Node. Handlers (package handlers) dispatch on
// Kind/SubKind rather than Go type, the same visitor-by-tag discipline the
// teacher's AST package uses for Pascal-family nodes.
package ast
