package functions

import (
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/config"
	"github.com/ministryofjustice/hmpps-form-engine/internal/evaluator"
)

func newTestContext() *evaluator.FunctionContext {
	return &evaluator.FunctionContext{
		Ctx: &evaluator.Context{
			Global: &evaluator.GlobalState{
				Answers: map[string]*evaluator.AnswerState{},
				Data:    map[string]any{},
			},
			Config: config.Default(),
		},
	}
}

func TestTextEquals(t *testing.T) {
	tests := []struct {
		name    string
		args    []any
		want    bool
		wantErr bool
	}{
		{name: "exact match", args: []any{"smith", "smith"}, want: true},
		{name: "case insensitive", args: []any{"Smith", "SMITH"}, want: true},
		{name: "mismatch", args: []any{"smith", "jones"}, want: false},
		{name: "too few args", args: []any{"smith"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := textEquals(newTestContext(), tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("textEquals() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextBefore(t *testing.T) {
	got, err := textBefore(newTestContext(), []any{"alice", "bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != true {
		t.Errorf("textBefore(alice, bob) = %v, want true", got)
	}
}

func TestNormalize(t *testing.T) {
	got, err := normalize(newTestContext(), []any{"café"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "café" {
		t.Errorf("normalize() = %q, want %q", got, "café")
	}
}

func TestTitleCase(t *testing.T) {
	got, err := titleCase(newTestContext(), []any{"hello world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Hello World" {
		t.Errorf("titleCase() = %q, want %q", got, "Hello World")
	}
}

func TestUpperCase(t *testing.T) {
	got, err := upperCase(newTestContext(), []any{"hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "HELLO" {
		t.Errorf("upperCase() = %q, want %q", got, "HELLO")
	}
}

func TestJSONGet(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want any
	}{
		{name: "nested string", args: []any{`{"applicant":{"name":"Jo"}}`, "applicant.name"}, want: "Jo"},
		{name: "array element", args: []any{`{"lines":["a","b"]}`, "lines.1"}, want: "b"},
		{name: "missing path", args: []any{`{"a":1}`, "b"}, want: evaluator.Undefined{}},
		{name: "invalid document", args: []any{"not json", "a"}, want: evaluator.Undefined{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jsonGet(newTestContext(), tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("jsonGet() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJSONSet(t *testing.T) {
	got, err := jsonSet(newTestContext(), []any{`{"a":1}`, "b", "two"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patched, ok := got.(string)
	if !ok {
		t.Fatalf("expected string result, got %T", got)
	}
	if jsonGetMust(t, patched, "a") != float64(1) || jsonGetMust(t, patched, "b") != "two" {
		t.Errorf("jsonSet() produced unexpected document: %s", patched)
	}
}

func jsonGetMust(t *testing.T, doc, path string) any {
	t.Helper()
	v, err := jsonGet(newTestContext(), []any{doc, path})
	if err != nil {
		t.Fatalf("jsonGet helper failed: %v", err)
	}
	return v
}

func TestSetAnswerEffect(t *testing.T) {
	fc := newTestContext()
	if _, err := setAnswer(fc, []any{"fullName", "Jo Bloggs"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, ok := fc.Ctx.Global.Answers["fullName"]
	if !ok || state.Current != "Jo Bloggs" {
		t.Errorf("setAnswer did not record value, got %+v", state)
	}
}

func TestSetDataEffect(t *testing.T) {
	fc := newTestContext()
	if _, err := setData(fc, []any{"caseRef", "X123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.Ctx.Global.Data["caseRef"] != "X123" {
		t.Errorf("setData did not record value, got %+v", fc.Ctx.Global.Data)
	}
}

func TestSortNatural(t *testing.T) {
	got, err := sortNatural(newTestContext(), []any{[]any{"step-10", "step-2", "step-1"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{"step-1", "step-2", "step-10"}
	gotSlice, ok := got.([]any)
	if !ok || len(gotSlice) != len(want) {
		t.Fatalf("sortNatural() = %v, want %v", got, want)
	}
	for i := range want {
		if gotSlice[i] != want[i] {
			t.Errorf("sortNatural()[%d] = %v, want %v", i, gotSlice[i], want[i])
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewWithBuiltins()
	for _, name := range []string{"textEquals", "textBefore", "normalize", "titleCase", "upperCase", "jsonGet", "jsonSet", "setAnswer", "setData", "sortNatural"} {
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("expected built-in %q to be registered", name)
		}
	}
	if _, ok := r.Lookup("doesNotExist"); ok {
		t.Errorf("unexpected lookup success for unregistered name")
	}
}
