package functions

import (
	"github.com/tidwall/gjson"

	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// jsonGet: navigates a raw JSON document by gjson path, for TRANSFORMER
// pipelines that need a value the REFERENCE handler's own raw-JSON
// stepping (spec §4.9) doesn't reach — e.g. a document nested inside an
// already-resolved pipeline value rather than directly under data/answers.
// jsonGet(document, path) returns Undefined when the document is invalid
// JSON or the path doesn't resolve.
func jsonGet(_ *evaluator.FunctionContext, args []any) (any, error) {
	doc, err := argString("jsonGet", args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString("jsonGet", args, 1)
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(doc) {
		return evaluator.Undefined{}, nil
	}
	result := gjson.Get(doc, path)
	if !result.Exists() {
		return evaluator.Undefined{}, nil
	}
	return resultToAny(result), nil
}

func resultToAny(r gjson.Result) any {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Num
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Null:
		return evaluator.Undefined{}
	default:
		return r.Raw
	}
}

func registerJSONBuiltins(r *Registry) {
	r.registerTransformer("jsonGet", jsonGet)
}
