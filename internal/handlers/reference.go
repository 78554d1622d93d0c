package handlers

import (
	"context"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

// referenceHandler backs every REFERENCE expression regardless of
// namespace (spec §4.4). It is hybrid: sync when its base pseudo node and
// every dynamic path segment are sync (almost always, since pseudo nodes
// are pure-sync seeds), async when a dynamic segment depends on something
// async.
//
// Compilation attaches the resolved pseudo node directly as the "base"
// property for the post/query/params/data/answers namespaces (so the
// existing "every AST-node-valued property has a graph edge" invariant
// covers it for free); @scope/@self/@value carry no base and instead
// resolve through the scope stack or the enclosing FIELD's own answer.
type referenceHandler struct{}

func (referenceHandler) ComputeIsAsync(deps []bool) bool {
	for _, d := range deps {
		if d {
			return true
		}
	}
	return false
}

func (referenceHandler) EvaluateSync(ctx *evaluator.Context, invoke evaluator.SyncInvoker, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	resolveDynamic := func(v any) (any, error) {
		n, ok := v.(ast.AnyNode)
		if !ok {
			return v, nil
		}
		res, err := invoke(ctx, n.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	}
	resolveBase := func(base ast.AnyNode) (any, error) {
		res, err := invoke(ctx, base.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	}
	return evaluateReference(ctx, node, resolveDynamic, resolveBase)
}

func (referenceHandler) Evaluate(goCtx context.Context, ctx *evaluator.Context, invoke evaluator.AsyncInvoker, hooks *evaluator.Hooks, anyNode ast.AnyNode) (evaluator.ThunkResult, error) {
	node, ok := anyNode.(*ast.Node)
	if !ok {
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
	resolveDynamic := func(v any) (any, error) {
		n, ok := v.(ast.AnyNode)
		if !ok {
			return v, nil
		}
		res, err := invoke(goCtx, ctx, n.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	}
	resolveBase := func(base ast.AnyNode) (any, error) {
		res, err := invoke(goCtx, ctx, base.ID())
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			return evaluator.Undefined{}, nil
		}
		val, _ := res.Get()
		return val, nil
	}
	return evaluateReference(ctx, node, resolveDynamic, resolveBase)
}

func evaluateReference(ctx *evaluator.Context, node *ast.Node, resolveDynamic func(any) (any, error), resolveBase func(ast.AnyNode) (any, error)) (evaluator.ThunkResult, error) {
	namespace, _ := node.Properties().String("namespace")
	path, _ := node.Properties().Array("path")

	switch ast.Namespace(namespace) {
	case ast.NamespacePost, ast.NamespaceQuery, ast.NamespaceParams, ast.NamespaceData, ast.NamespaceAnswers:
		base, hasBase := node.Properties().AnyNode("base")
		if !hasBase {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		value, err := resolveBase(base)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		// path[0] is the key the compiler already resolved into "base"
		// (spec §4.1 step 4); remaining segments navigate into its value.
		rest := path
		if len(rest) > 0 {
			rest = rest[1:]
		}
		return navigatePath(ctx, value, rest, resolveDynamic)

	case ast.NamespaceScope:
		if len(path) == 0 {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		level, ok := asInt(path[0])
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		frame, ok := ctx.Scope.IteratorFrameAt(level)
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		rest := path[1:]
		if len(rest) == 0 {
			return evaluator.Value(frame.Item, nil), nil
		}
		if s, ok := rest[0].(string); ok {
			switch s {
			case "@index":
				return evaluator.Value(float64(frame.Index), nil), nil
			case "@key":
				return evaluator.Value(frame.Key, nil), nil
			}
		}
		return navigatePath(ctx, frame.Item, rest, resolveDynamic)

	case ast.NamespaceSelf:
		fieldCode, ok := nearestFieldCode(ctx, node.ID())
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		state, ok := ctx.Global.Answers[fieldCode]
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		return navigatePath(ctx, state.Current, path, resolveDynamic)

	case ast.NamespaceValue:
		frame, ok := ctx.Scope.Top()
		if !ok || (frame.Type != evaluator.PipelineFrame && frame.Type != evaluator.PredicateFrame) {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		return navigatePath(ctx, frame.Value, path, resolveDynamic)

	default:
		return evaluator.Value(evaluator.Undefined{}, nil), nil
	}
}

// navigatePath walks segments into value, resolving any dynamic (AST
// node) segment first. Missing intermediate segments and non-string/
// non-number dynamic segments produce Undefined, unless strict-references
// mode is on, in which case the latter is a TYPE_MISMATCH error (spec
// §4.4: "non-string dynamic segment where string required ⇒ undefined" —
// strict mode is this engine's explicit, configurable tightening of that
// rule, spec §9's formatter-failure open question resolved analogously in
// DESIGN.md).
func navigatePath(ctx *evaluator.Context, value any, segments []any, resolveDynamic func(any) (any, error)) (evaluator.ThunkResult, error) {
	current := value
	for _, seg := range segments {
		key, err := resolveSegmentKey(ctx, seg, resolveDynamic)
		if err != nil {
			return evaluator.ThunkResult{}, err
		}
		if key == nil {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		next, ok := step(current, key)
		if !ok {
			return evaluator.Value(evaluator.Undefined{}, nil), nil
		}
		current = next
	}
	return evaluator.Value(current, nil), nil
}

func resolveSegmentKey(ctx *evaluator.Context, seg any, resolveDynamic func(any) (any, error)) (any, error) {
	if _, isNode := seg.(ast.AnyNode); isNode {
		v, err := resolveDynamic(seg)
		if err != nil {
			return nil, err
		}
		if s, ok := asString(v); ok {
			return s, nil
		}
		if ctx.Config.StrictReferences {
			return nil, &evaluator.ThunkError{Kind: evaluator.TypeMismatchKind, Message: "dynamic reference segment did not resolve to a string or number"}
		}
		return nil, nil
	}
	return seg, nil
}

func step(value any, key any) (any, bool) {
	switch container := value.(type) {
	case map[string]any:
		k, ok := asString(key)
		if !ok {
			return nil, false
		}
		v, ok := container[k]
		return v, ok
	case []any:
		idx, ok := asInt(key)
		if !ok || idx < 0 || idx >= len(container) {
			return nil, false
		}
		return container[idx], true
	case string:
		// A DATA/ANSWER value carried as a raw JSON document (e.g. an
		// upstream API response stored verbatim) navigates one segment at a
		// time via gjson rather than forcing a full unmarshal up front.
		return stepRawJSON(container, key)
	default:
		return nil, false
	}
}

func stepRawJSON(doc string, key any) (any, bool) {
	if !gjson.Valid(doc) {
		return nil, false
	}
	var path string
	switch k := key.(type) {
	case string:
		path = k
	default:
		idx, ok := asInt(key)
		if !ok {
			return nil, false
		}
		path = strconv.Itoa(idx)
	}
	result := gjson.Get(doc, path)
	if !result.Exists() {
		return nil, false
	}
	return gjsonToAny(result), true
}

func gjsonToAny(r gjson.Result) any {
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

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n := 0
		if t == "" {
			return 0, false
		}
		for _, r := range t {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		return n, true
	default:
		return 0, false
	}
}

// nearestFieldCode walks id's attachedToParentNode metadata chain looking
// for the nearest ancestor FIELD block, returning its "code" property.
// Backs the @self namespace (spec §4.4, "FIELD block additionally
// resolves value via an implicit Self() reference").
func nearestFieldCode(ctx *evaluator.Context, id ast.Identity) (string, bool) {
	current := id
	for {
		attrs, ok := ctx.Metadata.Get(current)
		if !ok {
			return "", false
		}
		parent, ok := attrs["attachedToParentNode"]
		if !ok {
			return "", false
		}
		parentID, ok := parent.(ast.Identity)
		if !ok {
			return "", false
		}
		node, ok := ctx.Nodes.Get(parentID)
		if ok {
			if n, ok := node.(*ast.Node); ok && n.Kind() == ast.Block && n.SubKind() == ast.Field {
				if code, ok := n.Properties().String("code"); ok {
					return code, true
				}
			}
		}
		current = parentID
	}
}
