package evaluator

import "github.com/ministryofjustice/hmpps-form-engine/internal/registry"

// Artefact is the compile-time-shared half of a compiled program (spec
// §4.1): the main-layer node, metadata, and handler registries plus the
// dependency graph. One Artefact is shared by every step of a journey and
// by every request; WithRuntimeOverlay wraps each of its registries in a
// fresh, request-local overlay.
type Artefact struct {
	Nodes    *registry.NodeRegistry
	Metadata *registry.MetadataRegistry
	Handlers *registry.Registry[any]
	Graph    *registry.Graph
}

// NewArtefact creates an empty artefact. Used by the compiler while
// building a program, and by tests that want to register handlers by
// hand.
func NewArtefact() *Artefact {
	return &Artefact{
		Nodes:    registry.NewNodeRegistry(),
		Metadata: registry.NewMetadataRegistry(),
		Handlers: registry.NewRegistry[any](),
		Graph:    registry.NewGraph(),
	}
}
