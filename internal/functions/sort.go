package functions

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// sortNatural: TRANSFORMER that orders a string array by natural sort
// ("step-2" before "step-10"), exposed as a general-purpose builtin so a
// journey's own TRANSFORMER pipelines (e.g. a dynamically generated list
// of codes for display) can use that rule. The render context's navigation
// tree does not use it. sortNatural(items).
func sortNatural(_ *evaluator.FunctionContext, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("sortNatural: expected exactly 1 argument, got %d", len(args))
	}
	raw, ok := args[0].([]any)
	if !ok {
		return nil, fmt.Errorf("sortNatural: argument must be an array, got %T", args[0])
	}
	items := make([]string, len(raw))
	for i, v := range raw {
		s, ok := toString(v)
		if !ok {
			return nil, fmt.Errorf("sortNatural: element %d is not a string", i)
		}
		items[i] = s
	}
	sort.Slice(items, func(i, j int) bool { return natural.Less(items[i], items[j]) })

	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out, nil
}

func registerSortBuiltins(r *Registry) {
	r.registerTransformer("sortNatural", sortNatural)
}
