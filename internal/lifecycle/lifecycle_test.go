package lifecycle

import (
	"context"
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
	"github.com/ministryofjustice/hmpps-form-engine/internal/compiler"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

func compileAndRun(t *testing.T, raw []byte, deps evaluator.InstanceDependencies, isPost bool) (Result, *evaluator.Context, ast.Identity) {
	t.Helper()
	program, err := compiler.Compile(raw)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	if len(program.StepIDs) == 0 {
		t.Fatalf("expected at least one compiled step")
	}
	stepID := program.StepIDs[0]

	ev, ctx, err := evaluator.WithRuntimeOverlay(program.Artefact, deps, nil)
	if err != nil {
		t.Fatalf("WithRuntimeOverlay() error: %v", err)
	}

	res, err := New(ev).Run(context.Background(), ctx, stepID, isPost)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return res, ctx, stepID
}

func TestControllerRunGetRendersStepAndSeedsUndefinedAnswer(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"blocks": [
							{"type": "BLOCK", "blockType": "FIELD", "properties": {"code": "name"}}
						]
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, false)
	if res.Outcome != OutcomeRender {
		t.Fatalf("Outcome = %v, want render", res.Outcome)
	}
	blocks, ok := res.Render["blocks"].([]any)
	if !ok || len(blocks) != 1 {
		t.Fatalf("blocks = %#v, want a single-element array", res.Render["blocks"])
	}
	block := blocks[0].(map[string]any)
	props := block["properties"].(map[string]any)
	if !evaluator.IsUndefined(props["value"]) {
		t.Errorf("value = %v, want Undefined with no answer seeded", props["value"])
	}
}

func TestControllerRunSeedsAnswerFromPostAndRendersIt(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"blocks": [
							{"type": "BLOCK", "blockType": "FIELD", "properties": {"code": "name"}}
						]
					}
				}
			]
		}
	}`)

	deps := evaluator.InstanceDependencies{
		Request: evaluator.RequestData{Post: evaluator.RequestValues{"name": {"Alice"}}},
	}
	res, ctx, _ := compileAndRun(t, raw, deps, false)
	if res.Outcome != OutcomeRender {
		t.Fatalf("Outcome = %v, want render", res.Outcome)
	}
	if ctx.Global.Answers["name"].Current != "Alice" {
		t.Errorf("Global.Answers[name] = %v, want Alice", ctx.Global.Answers["name"].Current)
	}
	blocks := res.Render["blocks"].([]any)
	props := blocks[0].(map[string]any)["properties"].(map[string]any)
	if props["value"] != "Alice" {
		t.Errorf("rendered value = %v, want Alice", props["value"])
	}
}

func TestControllerRunStepOnAccessRedirectEndsLifecycleImmediately(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"onAccess": [
							{
								"type": "TRANSITION", "transitionType": "ACCESS",
								"properties": {"outcome": "redirect", "redirect": "/blocked"}
							}
						],
						"blocks": []
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, false)
	if res.Outcome != OutcomeRedirect || res.Redirect != "/blocked" {
		t.Errorf("Result = %+v, want redirect to /blocked", res)
	}
}

func TestControllerRunJourneyLevelOnAccessRunsBeforeStepLevel(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"onAccess": [
				{
					"type": "TRANSITION", "transitionType": "ACCESS",
					"properties": {"outcome": "redirect", "redirect": "/journey-gate"}
				}
			],
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"onAccess": [
							{
								"type": "TRANSITION", "transitionType": "ACCESS",
								"properties": {"outcome": "redirect", "redirect": "/step-gate"}
							}
						],
						"blocks": []
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, false)
	if res.Outcome != OutcomeRedirect || res.Redirect != "/journey-gate" {
		t.Errorf("Result = %+v, want redirect to /journey-gate (journey ancestor runs first)", res)
	}
}

func TestControllerRunMergesAncestorDataIntoGlobalState(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"data": {"greeting": "hi"},
						"blocks": []
					}
				}
			]
		}
	}`)

	res, ctx, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, false)
	if ctx.Global.Data["greeting"] != "hi" {
		t.Errorf("Global.Data[greeting] = %v, want hi", ctx.Global.Data["greeting"])
	}
	data := res.Render["data"].(map[string]any)
	if data["greeting"] != "hi" {
		t.Errorf("rendered data.greeting = %v, want hi", data["greeting"])
	}
}

func TestControllerRunPostSubmitFailingValidationRendersValidationErrors(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"blocks": [
							{
								"type": "BLOCK", "blockType": "FIELD",
								"properties": {
									"code": "name",
									"validate": [
										{
											"type": "EXPRESSION", "expressionType": "VALIDATION",
											"properties": {
												"condition": {
													"type": "PREDICATE", "predicateType": "NOT",
													"properties": {"operand": true}
												},
												"message": "Required"
											}
										}
									]
								}
							}
						],
						"onSubmission": [
							{
								"type": "TRANSITION", "transitionType": "SUBMIT",
								"properties": {"validate": true}
							}
						]
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, true)
	if res.Outcome != OutcomeRender {
		t.Fatalf("Outcome = %v, want render (no onInvalid branch, outcome falls back to continue)", res.Outcome)
	}
	errs, ok := res.Render["validationErrors"].([]map[string]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("validationErrors = %#v, want one failure", res.Render["validationErrors"])
	}
	if errs[0]["message"] != "Required" || errs[0]["blockCode"] != "name" {
		t.Errorf("validationErrors[0] = %+v, want message=Required blockCode=name", errs[0])
	}
	if res.Render["showValidationFailures"] != true {
		t.Errorf("showValidationFailures = %v, want true", res.Render["showValidationFailures"])
	}
}

func TestControllerRunPostSubmitPassingValidationRedirectsToOnValidNext(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"blocks": [
							{"type": "BLOCK", "blockType": "FIELD", "properties": {"code": "name"}}
						],
						"onSubmission": [
							{
								"type": "TRANSITION", "transitionType": "SUBMIT",
								"properties": {
									"validate": true,
									"onValid": {
										"next": {
											"type": "EXPRESSION", "expressionType": "NEXT",
											"properties": {"to": "/done"}
										}
									}
								}
							}
						]
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, true)
	if res.Outcome != OutcomeRedirect || res.Redirect != "/done" {
		t.Errorf("Result = %+v, want redirect to /done", res)
	}
}

func TestControllerRunGetDoesNotRunSubmissionOrActionStages(t *testing.T) {
	raw := []byte(`{
		"type": "JOURNEY",
		"properties": {
			"steps": [
				{
					"type": "STEP",
					"properties": {
						"blocks": [],
						"onAction": [
							{
								"type": "TRANSITION", "transitionType": "ACTION",
								"properties": {"outcome": "redirect", "redirect": "/should-not-happen"}
							}
						]
					}
				}
			]
		}
	}`)

	res, _, _ := compileAndRun(t, raw, evaluator.InstanceDependencies{}, false)
	if res.Outcome != OutcomeRender {
		t.Errorf("Outcome = %v, want render (GET must not run onAction)", res.Outcome)
	}
}
