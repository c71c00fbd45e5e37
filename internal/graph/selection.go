package graph

// Selection is the exploration set plus the focused artist.
//
// Within one exploration the set only grows. [Selection.Reset] starts a new exploration.
type Selection struct {
	explored []string
	members  map[string]bool
	focused  string
}

// NewSelection returns a selection exploring ids, focused on the last one.
func NewSelection(ids ...string) *Selection {
	s := &Selection{members: make(map[string]bool)}
	for _, id := range ids {
		s.Expand(id)
	}
	return s
}

// Expand adds id to the exploration set if absent and focuses it.
// It reports whether the set grew.
func (s *Selection) Expand(id string) bool {
	if id == "" {
		return false
	}
	s.focused = id
	if s.members[id] {
		return false
	}
	s.members[id] = true
	s.explored = append(s.explored, id)
	return true
}

// Reset replaces the exploration set with id alone and focuses it.
func (s *Selection) Reset(id string) {
	s.explored = s.explored[:0]
	clear(s.members)
	s.focused = ""
	s.Expand(id)
}

// Explored returns a copy of the exploration set in insertion order.
func (s *Selection) Explored() []string {
	return append([]string(nil), s.explored...)
}

// Focused returns the most recently selected artist, or "".
func (s *Selection) Focused() string {
	return s.focused
}

// Contains reports whether id is explored.
func (s *Selection) Contains(id string) bool {
	return s.members[id]
}

// Len returns the size of the exploration set.
func (s *Selection) Len() int {
	return len(s.explored)
}
