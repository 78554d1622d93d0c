// Package formengine is the engine's public library surface (spec §6): the
// one import path an embedding application needs to compile a journey
// document, attach its own function registry and logger, and run the
// request lifecycle for a step. Everything under internal/ is the engine's
// own machinery; this package is the seam the teacher's pkg/dwscript
// occupied for the interpreter — a small facade over compiler.Compile,
// evaluator.WithRuntimeOverlay, and lifecycle.Controller, kept free of any
// framework-specific HTTP types so an embedder can bind it to whatever web
// stack they run.
package formengine
