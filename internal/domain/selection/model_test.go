package selection

import (
	"reflect"
	"testing"
)

// TestToggle verifies add/remove flipping and that emptying is preserved.
func TestToggle(t *testing.T) {
	s := New()
	s.Toggle("e1")
	if !s.Contains("e1") || s.Len() != 1 {
		t.Fatalf("after first toggle: %v", s.IDs())
	}
	s.Toggle("e1")
	if s.Contains("e1") || !s.IsEmpty() {
		t.Fatalf("after second toggle: %v", s.IDs())
	}
	s.Toggle("")
	if !s.IsEmpty() {
		t.Fatalf("blank toggle should be ignored")
	}
}

// TestZeroValueUsable verifies the zero Set behaves as empty and accepts mutations.
func TestZeroValueUsable(t *testing.T) {
	var s Set
	if !s.IsEmpty() || s.Contains("x") || len(s.IDs()) != 0 {
		t.Fatalf("zero value should be empty")
	}
	s.Toggle("x")
	if !s.Contains("x") {
		t.Fatalf("toggle on zero value failed")
	}
	var c Set
	c.Clear()
	if !c.IsEmpty() {
		t.Fatalf("clear on zero value should leave it empty")
	}
}

// TestSelectAllReplaces verifies SelectAll drops prior members.
func TestSelectAllReplaces(t *testing.T) {
	s := New("old")
	s.SelectAll([]string{"b", "a", "b", ""})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("IDs() = %v, want [a b]", got)
	}
}

// TestClear verifies Clear empties the set.
func TestClear(t *testing.T) {
	s := New("a", "b")
	s.Clear()
	if !s.IsEmpty() {
		t.Errorf("expected empty after Clear, got %v", s.IDs())
	}
}

// TestClone verifies clones are independent.
func TestClone(t *testing.T) {
	s := New("a")
	c := s.Clone()
	c.Toggle("b")
	if s.Contains("b") {
		t.Errorf("mutation of clone leaked into original")
	}
}

// TestCopiesAreIndependent verifies plain assignment copies behave alike for New and zero sets.
func TestCopiesAreIndependent(t *testing.T) {
	tests := []struct {
		name string
		orig Set
	}{
		{"from New", New("a")},
		{"zero value", Set{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.orig
			want := a.IDs()

			b := a
			b.Toggle("x")
			if a.Contains("x") || !b.Contains("x") {
				t.Errorf("toggle on copy: a=%v b=%v", a.IDs(), b.IDs())
			}

			c := a
			c.Clear()
			if got := a.IDs(); !reflect.DeepEqual(got, want) {
				t.Errorf("clear on copy changed original to %v, want %v", got, want)
			}
		})
	}
}
