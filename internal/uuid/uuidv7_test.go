package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	if v := googleuuid.MustParse(id).Version(); v != 7 {
		t.Errorf("expected version 7, got %d", v)
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("expected %q to sort after %q", next, prev)
		}
		prev = next
	}
}

func TestIsValid(t *testing.T) {
	if IsValid("not-a-uuid") {
		t.Error("expected invalid")
	}
}
