package lifecycle

import (
	"fmt"
	"sort"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// structuralOnlyKeys are the step/journey properties render contexts never
// surface directly: transition lists (folded into lifecycle behaviour, not
// render), structural children (surfaced separately as blocks/navigation),
// and the data namespace (already folded into the top-level "data" key).
var structuralOnlyKeys = map[string]bool{
	"onAccess": true, "onAction": true, "onSubmission": true,
	"blocks": true, "steps": true, "children": true, "data": true,
}

// BuildRenderContext is the render-context factory (spec §4.6, "a separate
// factory that, given the evaluator's cache and metadata registry and a
// currentStepId, produces {step, ancestors, blocks, validationErrors,
// answers, data, navigation, showValidationFailures}"). It reads evaluated
// shapes out of the cache — evaluator.Evaluate must already have run —
// and never invokes anything itself.
func BuildRenderContext(ctx *evaluator.Context, currentStepID ast.Identity, showValidationFailures bool) (map[string]any, error) {
	stepShape, ok := evaluatedShape(ctx, currentStepID)
	if !ok {
		return nil, fmt.Errorf("render: no evaluated shape cached for step %s", currentStepID)
	}
	stepProps, _ := stepShape["properties"].(map[string]any)
	if stepProps == nil {
		stepProps = map[string]any{}
	}
	blocks, _ := stepProps["blocks"].([]any)
	if blocks == nil {
		blocks = []any{}
	}

	ancestorChain := lifecycleAncestors(ctx, currentStepID)
	activeIDs := make(map[ast.Identity]bool, len(ancestorChain))
	ancestors := []map[string]any{}
	for _, a := range ancestorChain {
		activeIDs[a.ID()] = true
		if a.Kind() != ast.Journey {
			continue
		}
		shape, ok := evaluatedShape(ctx, a.ID())
		if !ok {
			continue
		}
		props, _ := shape["properties"].(map[string]any)
		ancestors = append(ancestors, stripStructuralOnly(props))
	}

	validationErrors := []map[string]any{}
	if showValidationFailures {
		validationErrors = collectValidationErrors(ctx, currentStepID)
	}

	answers := make(map[string]any, len(ctx.Global.Answers))
	for code, state := range ctx.Global.Answers {
		answers[code] = state.Current
	}
	data := make(map[string]any, len(ctx.Global.Data))
	for k, v := range ctx.Global.Data {
		data[k] = v
	}

	return map[string]any{
		"step":                   stripStructuralOnly(stepProps),
		"ancestors":              ancestors,
		"blocks":                 blocks,
		"validationErrors":       validationErrors,
		"answers":                answers,
		"data":                   data,
		"navigation":             buildNavigation(ctx, activeIDs),
		"showValidationFailures": showValidationFailures,
	}, nil
}

func evaluatedShape(ctx *evaluator.Context, id ast.Identity) (map[string]any, bool) {
	res, ok := ctx.Cache.Get(id)
	if !ok || res.IsError() {
		return nil, false
	}
	v, _ := res.Get()
	m, ok := v.(map[string]any)
	return m, ok
}

func stripStructuralOnly(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if structuralOnlyKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// collectValidationErrors walks every FIELD block descendant of stepID,
// reading its already-evaluated "validate" results out of the cache and
// keeping the failures (spec §4.6 step 7, §4.4 "validate array... returns
// {passed, message, details?}").
func collectValidationErrors(ctx *evaluator.Context, stepID ast.Identity) []map[string]any {
	var out []map[string]any
	for _, b := range ctx.Nodes.FindByType(ast.Block) {
		if b.SubKind() != ast.Field {
			continue
		}
		if !isDescendantOfNode(ctx, b.ID(), stepID) {
			continue
		}
		shape, ok := evaluatedShape(ctx, b.ID())
		if !ok {
			continue
		}
		props, _ := shape["properties"].(map[string]any)
		if props == nil {
			continue
		}
		code, _ := props["code"].(string)
		validateRaw, _ := props["validate"].([]any)
		for _, v := range validateRaw {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			if passed, _ := m["passed"].(bool); passed {
				continue
			}
			entry := map[string]any{"passed": false, "message": m["message"], "blockCode": code}
			if details, ok := m["details"]; ok {
				entry["details"] = details
			}
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ci, _ := out[i]["blockCode"].(string)
		cj, _ := out[j]["blockCode"].(string)
		return ci < cj
	})
	return out
}

// buildNavigation walks the compiled structure (not the evaluated shapes —
// navigation needs no lazy evaluation) from the journey rooting
// activeIDs's deepest member down through steps and child journeys (spec
// §6, "navigation: Tree<{type, title?, path, active, hiddenFromNavigation?,
// children?}>").
func buildNavigation(ctx *evaluator.Context, activeIDs map[ast.Identity]bool) map[string]any {
	root := findRootJourney(ctx, activeIDs)
	if root == nil {
		return map[string]any{}
	}
	return navNode(root, activeIDs)
}

func findRootJourney(ctx *evaluator.Context, activeIDs map[ast.Identity]bool) *ast.Node {
	var leaf ast.Identity
	for id := range activeIDs {
		leaf = id
		break
	}
	var topJourney *ast.Node
	current := leaf
	for {
		n, ok := asNode(ctx, current)
		if !ok {
			break
		}
		if n.Kind() == ast.Journey {
			topJourney = n
		}
		parent, ok := parentOf(ctx, current)
		if !ok {
			break
		}
		current = parent
	}
	return topJourney
}

func navNode(n *ast.Node, activeIDs map[ast.Identity]bool) map[string]any {
	out := map[string]any{
		"type":   navType(n.Kind()),
		"active": activeIDs[n.ID()],
	}
	if path, ok := n.Properties().String("path"); ok {
		out["path"] = path
	}
	if title, ok := n.Properties().String("title"); ok {
		out["title"] = title
	}
	if meta, ok := n.Properties().Object("metadata"); ok {
		if hidden, _ := meta["hiddenFromNavigation"].(bool); hidden {
			out["hiddenFromNavigation"] = true
		}
	}

	var children []map[string]any
	for _, s := range nodesProp(n, "steps") {
		children = append(children, navNode(s, activeIDs))
	}
	for _, j := range nodesProp(n, "children") {
		children = append(children, navNode(j, activeIDs))
	}
	if children != nil {
		out["children"] = children
	}
	return out
}

func navType(kind ast.Type) string {
	if kind == ast.Journey {
		return "journey"
	}
	return "step"
}
