package graph

import (
	"strings"
	"testing"
)

func TestSelection(t *testing.T) {
	t.Run("Expand", func(t *testing.T) {
		s := NewSelection()
		if !s.Expand("a1") {
			t.Error("first expand should grow the set")
		}
		s.Expand("a2")
		if s.Expand("a1") {
			t.Error("re-expanding should not grow the set")
		}

		if got := strings.Join(s.Explored(), ","); got != "a1,a2" {
			t.Errorf("expected a1,a2, got %s", got)
		}
		if s.Focused() != "a1" {
			t.Errorf("re-selected artist should take focus, got %s", s.Focused())
		}
		if s.Expand("") {
			t.Error("empty id should be ignored")
		}
	})

	t.Run("Reset", func(t *testing.T) {
		s := NewSelection("a1", "a2", "a3")
		s.Reset("a9")

		if s.Len() != 1 || !s.Contains("a9") || s.Contains("a1") {
			t.Errorf("expected only a9 explored, got %v", s.Explored())
		}
		if s.Focused() != "a9" {
			t.Errorf("expected focus on a9, got %s", s.Focused())
		}
	})

	t.Run("Explored is a copy", func(t *testing.T) {
		s := NewSelection("a1")
		ids := s.Explored()
		ids[0] = "mutated"
		if s.Explored()[0] != "a1" {
			t.Error("mutating the returned slice should not affect the selection")
		}
	})
}
