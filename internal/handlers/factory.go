package handlers

import "github.com/ministryofjustice/hmpps-form-engine/internal/ast"

// HandlerFor maps a node to its handler instance by (kind, subKind) —
// the table both the compiler's registration pass (spec §4.1 step 5) and
// a runtime overlay's per-item cloning (spec §4.5, ITERATE) use to wire a
// newly-created node into the handler registry without a caller-supplied
// switch of its own. Handlers are stateless singletons; every call with
// the same node shape returns an equal value.
func HandlerFor(node ast.AnyNode) (any, bool) {
	switch n := node.(type) {
	case *ast.Pseudo:
		return pseudoHandlerFor(n.Kind())
	case *ast.Node:
		return astHandlerFor(n)
	default:
		return nil, false
	}
}

func pseudoHandlerFor(kind ast.PseudoKind) (any, bool) {
	switch kind {
	case ast.Post:
		return postHandler{}, true
	case ast.Query:
		return queryHandler{}, true
	case ast.Params:
		return paramsHandler{}, true
	case ast.Data:
		return dataHandler{}, true
	case ast.AnswerLocal, ast.AnswerRemote:
		return answerHandler{}, true
	default:
		return nil, false
	}
}

func astHandlerFor(n *ast.Node) (any, bool) {
	switch n.Kind() {
	case ast.Journey, ast.Step, ast.Block:
		return structuralHandler{}, true
	case ast.Predicate:
		return predicateHandler{}, true
	case ast.Transition:
		return transitionHandler{}, true
	case ast.Expression:
		return expressionHandlerFor(n.SubKind())
	default:
		return nil, false
	}
}

func expressionHandlerFor(subKind string) (any, bool) {
	switch subKind {
	case ast.Reference:
		return referenceHandler{}, true
	case ast.Pipeline:
		return pipelineHandler{}, true
	case ast.Format:
		return formatHandler{}, true
	case ast.Conditional:
		return conditionalHandler{}, true
	case ast.Iterate:
		return iterateHandler{}, true
	case ast.Validation:
		return validationHandler{}, true
	case ast.Function:
		return functionHandler{}, true
	case ast.Next:
		return nextHandler{}, true
	default:
		return nil, false
	}
}
