// Package registry implements the keyed lookup structures the compiled
// program is built from — NodeRegistry, MetadataRegistry, the generic
// handler registry used by package evaluator, and the dependency Graph —
// plus the overlay pattern that lets a per-request runtime extend any of
// them without mutating the compile-time original (spec §4.2).
//
// The generic Registry[V] is the one place identity-to-value lookup is
// implemented; every concrete registry embeds it and, where the spec calls
// for it, adds a linear-scan finder (FindByType, FindNodesWhere). Overlay[V]
// composes a pending Registry[V] in front of a shared main one: reads check
// pending first, writes always land in pending, and flushing moves pending
// into main in one pass. This mirrors the teacher's cache/environment
// layering (child scopes shadow parent scopes; only explicit flushing
// changes the parent) adapted from variable scoping to registry overlay.
package registry
