// Package lifecycle implements the request lifecycle controller (spec
// §4.6): the ordered transition stages a single GET or POST runs through
// — access, iterator expansion, answer pre-resolution, action, submission
// — and the render-context factory that turns the evaluator's cache into
// the shape a downstream renderer consumes.
//
// Controller is deliberately thin: every stage drives the same
// evaluator.Evaluator/Context pair the handlers already use, so the
// controller's own code never duplicates evaluation logic — it only
// sequences invoke calls and interprets their discriminated outcomes,
// mirroring the teacher's interp package's pattern of a small orchestrating
// type built entirely from calls into lower-level, independently-tested
// pieces.
package lifecycle
