package functions

import (
	"fmt"

	"github.com/tidwall/sjson"

	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// setAnswer: EFFECT that records a new current value for a field code and
// invalidates its ANSWER_LOCAL cache entry (spec §4.4's "EFFECT functions
// mutate global state through hooks"). setAnswer(fieldCode, value).
func setAnswer(fc *evaluator.FunctionContext, args []any) (any, error) {
	code, err := argString("setAnswer", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("setAnswer: expected 2 arguments, got %d", len(args))
	}
	fc.SetAnswer(code, args[1])
	return evaluator.Undefined{}, nil
}

// setData: EFFECT that shallow-merges a value into the data namespace at
// key and invalidates the corresponding DATA pseudo node. setData(key,
// value).
func setData(fc *evaluator.FunctionContext, args []any) (any, error) {
	key, err := argString("setData", args, 0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("setData: expected 2 arguments, got %d", len(args))
	}
	fc.SetData(key, args[1])
	return evaluator.Undefined{}, nil
}

// jsonSet: TRANSFORMER that patches one path in a raw JSON document and
// returns the patched document, preserving the original's key order (spec
// §4.9) — pairs with setData when the target namespace value is itself a
// raw JSON document an upstream system owns the shape of, so the engine
// never needs a full decode/re-encode round-trip to change one field.
// jsonSet(document, path, value).
func jsonSet(_ *evaluator.FunctionContext, args []any) (any, error) {
	doc, err := argString("jsonSet", args, 0)
	if err != nil {
		return nil, err
	}
	path, err := argString("jsonSet", args, 1)
	if err != nil {
		return nil, err
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("jsonSet: expected 3 arguments, got %d", len(args))
	}
	patched, err := sjson.Set(doc, path, args[2])
	if err != nil {
		return nil, fmt.Errorf("jsonSet: %w", err)
	}
	return patched, nil
}

func registerEffectBuiltins(r *Registry) {
	r.registerEffect("setAnswer", setAnswer)
	r.registerEffect("setData", setData)
	r.registerTransformer("jsonSet", jsonSet)
}
