package evaluator

import "testing"

func TestIsUndefined(t *testing.T) {
	if !IsUndefined(Undefined{}) {
		t.Errorf("expected IsUndefined(Undefined{}) to be true")
	}
	if IsUndefined("not undefined") {
		t.Errorf("expected IsUndefined(string) to be false")
	}
	if IsUndefined(nil) {
		t.Errorf("expected IsUndefined(nil) to be false")
	}
}

func TestValueResultShape(t *testing.T) {
	res := Value(42, map[string]any{"cached": false})
	if res.IsError() {
		t.Fatalf("expected a successful result")
	}
	v, ok := res.Get()
	if !ok || v != 42 {
		t.Errorf("Get() = %v, %v, want 42, true", v, ok)
	}
}

func TestErrorResultShape(t *testing.T) {
	res := Error(NewThunkError(LookupFailedKind, "no such path", nil), nil)
	if !res.IsError() {
		t.Fatalf("expected an error result")
	}
	if _, ok := res.Get(); ok {
		t.Errorf("expected Get() to report no value for an error result")
	}
	if res.Err().Kind != LookupFailedKind {
		t.Errorf("Err().Kind = %s, want %s", res.Err().Kind, LookupFailedKind)
	}
}

func TestWithMetadataAddsWithoutMutatingOriginal(t *testing.T) {
	base := Value("x", map[string]any{"a": 1})
	withCached := base.WithMetadata("cached", true)

	if _, ok := base.Metadata["cached"]; ok {
		t.Errorf("expected WithMetadata to not mutate the original's metadata map")
	}
	if withCached.Metadata["a"] != 1 || withCached.Metadata["cached"] != true {
		t.Errorf("expected the copy to carry both the original and new keys, got %+v", withCached.Metadata)
	}
}
