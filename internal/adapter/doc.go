// Package adapter is a minimal in-memory implementation of the framework
// adapter interface (spec §6): toStepRequest/toStepResponse, redirect/
// render/getBaseUrl, and a tiny method+path router. It exists purely to
// exercise internal/lifecycle's Controller end-to-end in tests without
// pulling in a real HTTP stack — the engine's core never imports this
// package, and an embedder is expected to write their own adapter over
// whatever web framework they use, the way spec §6 frames the contract as
// something the core only consumes.
package adapter
