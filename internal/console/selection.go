package console

import appctx "osiedle/internal/core/context"

// Selection tracks the primary-key values checked for bulk operations in the
// active table. Every mutator is a no-op unless the session role is admin.
type Selection struct {
	role string
	ids  map[string]struct{}
}

// NewSelection creates an empty selection bound to a session role.
func NewSelection(role string) *Selection {
	return &Selection{role: role, ids: make(map[string]struct{})}
}

// Toggle adds id to the selection, or removes it when already present.
func (s *Selection) Toggle(id string) {
	if s.role != appctx.RoleAdmin {
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectAll selects every visible id. When the selection already equals the
// visible set it clears instead, acting as "deselect all".
func (s *Selection) SelectAll(visible []string) {
	if s.role != appctx.RoleAdmin {
		return
	}
	if len(s.ids) == len(visible) {
		all := true
		for _, id := range visible {
			if _, ok := s.ids[id]; !ok {
				all = false
				break
			}
		}
		if all {
			s.Clear()
			return
		}
	}
	s.ids = make(map[string]struct{}, len(visible))
	for _, id := range visible {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection. Called on view switch, search change, sort
// change and after every reload that follows a mutation.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in the order they appear in visible.
func (s *Selection) IDs(visible []string) []string {
	out := make([]string, 0, len(s.ids))
	for _, id := range visible {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	return len(s.ids)
}
