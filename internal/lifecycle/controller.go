package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
	"github.com/ministryofjustice/hmpps-form-engine/internal/registry"
)

// Outcome discriminates how a lifecycle run ended (spec §4.6, §7 — "the
// controller translates error outcomes into HTTP errors").
type Outcome string

const (
	OutcomeRender   Outcome = "render"
	OutcomeRedirect Outcome = "redirect"
	OutcomeError    Outcome = "error"
)

// Result is Controller.Run's return value: exactly one of a render
// context, a redirect target, or an HTTP error.
type Result struct {
	Outcome Outcome

	Redirect string

	Status  int
	Message string

	Render map[string]any
}

// Controller runs the ordered transition stages for one request (spec
// §4.6): access, iterator expansion, answer pre-resolution, and — on POST
// — action and submission, before building a render context.
type Controller struct {
	Evaluator *evaluator.Evaluator
}

// New binds a Controller to e.
func New(e *evaluator.Evaluator) *Controller {
	return &Controller{Evaluator: e}
}

// Run executes the lifecycle against ctx for currentStepID. isPost
// distinguishes a GET (access, iterator expansion, answer pre-resolution,
// render) from a POST (also action and submission).
func (c *Controller) Run(goCtx context.Context, ctx *evaluator.Context, currentStepID ast.Identity, isPost bool) (Result, error) {
	step, ok := asNode(ctx, currentStepID)
	if !ok || step.Kind() != ast.Step {
		return Result{}, fmt.Errorf("lifecycle: %s is not a STEP node", currentStepID)
	}
	ctx.Metadata.Set(currentStepID, registry.IsCurrentStep, true)

	ancestors := lifecycleAncestors(ctx, currentStepID)

	for _, ancestor := range ancestors {
		mergeData(ctx, ancestor)
		if res, done, err := c.runAccessStage(goCtx, ctx, nodesProp(ancestor, "onAccess")); err != nil {
			return Result{}, err
		} else if done {
			return res, nil
		}
	}

	if err := c.expandIterators(goCtx, ctx, currentStepID); err != nil {
		return Result{}, err
	}

	if err := c.preResolveAnswers(goCtx, ctx); err != nil {
		return Result{}, err
	}

	validated := false
	if isPost {
		if _, res, done, err := c.runFirstMatchStage(goCtx, ctx, nodesProp(step, "onAction")); err != nil {
			return Result{}, err
		} else if done {
			return res, nil
		}

		out, res, done, err := c.runFirstMatchStage(goCtx, ctx, nodesProp(step, "onSubmission"))
		if err != nil {
			return Result{}, err
		}
		if done {
			return res, nil
		}
		if out != nil {
			validated, _ = out["validated"].(bool)
		}
	}

	render, err := c.render(goCtx, ctx, currentStepID, validated)
	if err != nil {
		return Result{}, err
	}
	return Result{Outcome: OutcomeRender, Render: render}, nil
}

// mergeData shallow-merges ancestor.properties.data into the context's
// global data namespace, later ancestors overriding earlier ones (spec
// §4.6 step 3a).
func mergeData(ctx *evaluator.Context, ancestor *ast.Node) {
	data, ok := ancestor.Properties().Object("data")
	if !ok {
		return
	}
	for k, v := range data {
		ctx.Global.Data[k] = v
	}
}

// runAccessStage invokes every transition in order, unconditionally (spec
// §4.6 step 3b): a redirect or error outcome ends the whole lifecycle
// immediately; continue (or executed=false) proceeds to the next
// transition.
func (c *Controller) runAccessStage(goCtx context.Context, ctx *evaluator.Context, transitions []*ast.Node) (Result, bool, error) {
	for _, t := range transitions {
		out, err := c.invokeTransition(goCtx, ctx, t)
		if err != nil {
			return Result{}, false, err
		}
		if res, done := outcomeResult(out); done {
			return res, true, nil
		}
	}
	return Result{}, false, nil
}

// runFirstMatchStage invokes transitions in order and stops at the first
// one with executed=true (spec §4.6 step 6, "first-match semantics"),
// returning that transition's own result alongside the stage outcome.
func (c *Controller) runFirstMatchStage(goCtx context.Context, ctx *evaluator.Context, transitions []*ast.Node) (map[string]any, Result, bool, error) {
	for _, t := range transitions {
		out, err := c.invokeTransition(goCtx, ctx, t)
		if err != nil {
			return nil, Result{}, false, err
		}
		executed, _ := out["executed"].(bool)
		if !executed {
			continue
		}
		if res, done := outcomeResult(out); done {
			return out, res, true, nil
		}
		return out, Result{}, false, nil
	}
	return nil, Result{}, false, nil
}

func (c *Controller) invokeTransition(goCtx context.Context, ctx *evaluator.Context, t *ast.Node) (map[string]any, error) {
	res, err := c.Evaluator.Invoke(goCtx, ctx, t.ID())
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		ctx.Logger.Warnw("lifecycle: transition evaluation failed", "node", string(t.ID()))
		return map[string]any{"executed": false, "outcome": "continue"}, nil
	}
	v, _ := res.Get()
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{"executed": false, "outcome": "continue"}, nil
	}
	return m, nil
}

// outcomeResult translates a transition's outcome property into a
// lifecycle-ending Result, when it is one (spec §4.6 step 3b, §7).
func outcomeResult(out map[string]any) (Result, bool) {
	outcome, _ := out["outcome"].(string)
	switch outcome {
	case "redirect":
		url, _ := asString(out["redirect"])
		return Result{Outcome: OutcomeRedirect, Redirect: url}, true
	case "error":
		status, _ := asInt(out["status"])
		message, _ := asString(out["message"])
		return Result{Outcome: OutcomeError, Status: status, Message: message}, true
	default:
		return Result{}, false
	}
}

// expandIterators finds every ITERATE node enclosed by currentStepID and
// invokes each unique topmost ancestor still under the step, cascading
// evaluation down to the iterator so its handler registers runtime nodes
// via hooks (spec §4.6 step 4).
func (c *Controller) expandIterators(goCtx context.Context, ctx *evaluator.Context, currentStepID ast.Identity) error {
	seen := map[ast.Identity]bool{}
	var targets []ast.Identity
	for _, n := range ctx.Nodes.FindByType(ast.Expression) {
		if n.SubKind() != ast.Iterate {
			continue
		}
		step, ok := enclosingStep(ctx, n.ID())
		if !ok || step != currentStepID {
			continue
		}
		top := topmostUnderStep(ctx, n.ID(), currentStepID)
		if seen[top] {
			continue
		}
		seen[top] = true
		targets = append(targets, top)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	for _, id := range targets {
		if _, err := c.Evaluator.Invoke(goCtx, ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// preResolveAnswers seeds the global answer namespace from the raw
// request and then invokes every ANSWER_LOCAL/ANSWER_REMOTE pseudo node,
// warming their cache entries so later stages see resolved values rather
// than reaching back into raw POST each time (spec §4.6 step 5).
func (c *Controller) preResolveAnswers(goCtx context.Context, ctx *evaluator.Context) error {
	seedAnswersFromRequest(ctx)

	var ids []ast.Identity
	for _, p := range ctx.Nodes.FindByPseudoType(ast.AnswerLocal) {
		ids = append(ids, p.ID())
	}
	for _, p := range ctx.Nodes.FindByPseudoType(ast.AnswerRemote) {
		ids = append(ids, p.ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if _, err := c.Evaluator.Invoke(goCtx, ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// seedAnswersFromRequest populates ctx.Global.Answers for every FIELD
// block's code that has no value yet: the raw POST value for a field
// (the ANSWER_LOCAL source, spec §4.4), falling back to the adapter's
// persisted session/state bag (the ANSWER_REMOTE source — a remote
// field's own step isn't part of this request, so its value must already
// have been carried over by the framework adapter). A code an EFFECT
// already mutated this request is left untouched.
func seedAnswersFromRequest(ctx *evaluator.Context) {
	for _, b := range ctx.Nodes.FindByType(ast.Block) {
		if b.SubKind() != ast.Field {
			continue
		}
		code, ok := b.Properties().String("code")
		if !ok || code == "" {
			continue
		}
		if _, already := ctx.Global.Answers[code]; already {
			continue
		}

		var value any = evaluator.Undefined{}
		if v, ok := ctx.Request.Post.First(code); ok {
			value = v
		} else if v, ok := ctx.Request.Session[code]; ok {
			value = v
		} else if v, ok := ctx.Request.State[code]; ok {
			value = v
		}
		ctx.Global.Answers[code] = &evaluator.AnswerState{Current: value}
	}
}

// render evaluates the whole journey (spec §4.6 step 7 — evaluator.evaluate
// reaches every step's blocks through the generic structural substitution,
// warming the cache entries render-context construction then reads back)
// and builds the render context for currentStepID.
func (c *Controller) render(goCtx context.Context, ctx *evaluator.Context, currentStepID ast.Identity, showValidationFailures bool) (map[string]any, error) {
	if _, err := c.Evaluator.Evaluate(goCtx, ctx); err != nil {
		return nil, err
	}
	return BuildRenderContext(ctx, currentStepID, showValidationFailures)
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case evaluator.Undefined:
		return "", false
	case string:
		return t, true
	default:
		return fmt.Sprint(t), true
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}
