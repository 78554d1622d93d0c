// Package compiler implements the compilation pipeline (spec §4.1): parse
// the builder's JSON document into the AST, register parent/property and
// step-descendant metadata, generate pseudo nodes, register handlers,
// wire the dependency graph, and compute each node's isAsync flag over
// that graph. One shared Program is produced per journey; Program.ForStep
// pairs it with a specific step identity as a CompiledForm.
//
// The pass-per-file layout mirrors the teacher's semantic package
// (internal/semantic/analyze_*.go): a single Compiler accumulates state
// and errors across passes that each own one file.
package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/compileerr"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
	"github.com/ministryofjustice/hmpps-form-engine/internal/handlers"
	"github.com/ministryofjustice/hmpps-form-engine/internal/wiring"
)

// Program is the compiled output: the shared artefact plus the journey's
// root identity and the identities of every STEP it contains.
type Program struct {
	Artefact  *evaluator.Artefact
	JourneyID ast.Identity
	StepIDs   []ast.Identity
}

// CompiledForm pairs Program's shared artefact with one specific step,
// mirroring spec §4.1's "{artefact, currentStepId}" — a compilation
// produces one Program; each step the caller wants to serve gets its own
// CompiledForm view over it.
type CompiledForm struct {
	Artefact      *evaluator.Artefact
	CurrentStepID ast.Identity
}

// ForStep builds the CompiledForm for one of Program's steps.
func (p *Program) ForStep(stepID ast.Identity) CompiledForm {
	return CompiledForm{Artefact: p.Artefact, CurrentStepID: stepID}
}

// compiler carries the mutable state threaded through the compilation
// passes: the growing artefact, the raw source text, and the accumulated
// violations. No pass reads source: violations are recorded by node
// identity, without a source position.
type compiler struct {
	artefact *evaluator.Artefact
	source   string
	errs     compileerr.Aggregate

	pseudoAlloc *ast.Allocator
	pseudos     map[pseudoKey]*ast.Pseudo
}

type pseudoKey struct {
	kind ast.PseudoKind
	key  string
}

// Compile runs the full pipeline over a JSON document (spec §4.1, the
// builder's finalized output) and returns the shared Program.
func Compile(raw json.RawMessage) (*Program, error) {
	c := &compiler{
		artefact:    evaluator.NewArtefact(),
		source:      string(raw),
		pseudoAlloc: ast.NewAllocator(ast.CompilePseudo),
		pseudos:     map[pseudoKey]*ast.Pseudo{},
	}

	alloc := ast.NewAllocator(ast.CompileAST)
	root, err := ast.Decode(raw, alloc)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	if root.Kind() != ast.Journey {
		c.errs.Addf(string(root.ID()), "root node must be JOURNEY, got %s", root.Kind())
		return nil, c.errs.AsError()
	}

	c.registerTree(root, "", "")
	c.markStepDescendants()
	c.generatePseudoNodes()
	c.registerHandlers()
	if c.errs.HasErrors() {
		return nil, c.errs.AsError()
	}
	c.wire()
	c.computeAsync()

	var stepIDs []ast.Identity
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind() == ast.Step {
			stepIDs = append(stepIDs, n.ID())
		}
	})

	if c.errs.HasErrors() {
		return nil, c.errs.AsError()
	}
	return &Program{Artefact: c.artefact, JourneyID: root.ID(), StepIDs: stepIDs}, nil
}

// registerHandlers implements spec §4.1 step 5: instantiate and register
// the handler bound to every node's kind. Duplicate registration (a node
// identity collision) surfaces as a compile error rather than a panic.
func (c *compiler) registerHandlers() {
	for id, n := range c.artefact.Nodes.GetAll() {
		handler, ok := handlers.HandlerFor(n)
		if !ok {
			c.errs.Addf(string(id), "no handler registered for node shape")
			continue
		}
		if err := c.artefact.Handlers.Register(id, handler); err != nil {
			c.errs.Addf(string(id), "%s", err)
		}
	}
}

func (c *compiler) wire() {
	w := wiring.New(c.artefact.Nodes, c.artefact.Metadata, c.artefact.Graph)
	w.WireAll()
}
