package evaluator

import (
	"testing"

	"github.com/ministryofjustice/hmpps-form-engine/internal/ast"
)

func TestCacheGetMissOnEmpty(t *testing.T) {
	c := NewCache()
	if _, ok := c.Get(ast.Identity("compile:1")); ok {
		t.Errorf("expected a miss on an empty cache")
	}
	if v := c.Version(ast.Identity("compile:1")); v != 0 {
		t.Errorf("Version() on an untouched id = %d, want 0", v)
	}
}

func TestCacheSetThenGet(t *testing.T) {
	c := NewCache()
	id := ast.Identity("compile:1")
	c.Set(id, Value("hello", nil))

	res, ok := c.Get(id)
	if !ok {
		t.Fatalf("expected a hit after Set")
	}
	v, _ := res.Get()
	if v != "hello" {
		t.Errorf("Get() value = %v, want hello", v)
	}
}

func TestCacheSetDoesNotBumpVersion(t *testing.T) {
	c := NewCache()
	id := ast.Identity("compile:1")
	before := c.Version(id)
	c.Set(id, Value(1, nil))
	if c.Version(id) != before {
		t.Errorf("expected Set to not change the version counter")
	}
}

func TestCacheDeleteClearsValueAndBumpsVersion(t *testing.T) {
	c := NewCache()
	id := ast.Identity("compile:1")
	c.Set(id, Value(1, nil))
	before := c.Version(id)

	c.Delete(id)

	if _, ok := c.Get(id); ok {
		t.Errorf("expected a miss after Delete")
	}
	if c.Version(id) != before+1 {
		t.Errorf("Version() after Delete = %d, want %d", c.Version(id), before+1)
	}
}
