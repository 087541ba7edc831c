package knowledge

import "askliberia/internal/models"

// sourceSet is an ordered collection of citations unique by URI. The first
// appearance of a URI fixes both its position and its title; later
// re-insertions are no-ops, including ones carrying a different title.
type sourceSet struct {
	seen  map[string]struct{}
	items []models.Source
}

func newSourceSet() *sourceSet {
	return &sourceSet{seen: make(map[string]struct{})}
}

// Fold merges incoming citations into the set. Citations without a URI are
// dropped; the service occasionally emits grounding stubs with no web target.
func (s *sourceSet) Fold(citations []models.Source) {
	for _, c := range citations {
		if c.URI == "" {
			continue
		}
		if _, ok := s.seen[c.URI]; ok {
			continue
		}
		s.seen[c.URI] = struct{}{}
		s.items = append(s.items, c)
	}
}

// Items returns a copy so snapshots never alias the set's backing array.
func (s *sourceSet) Items() []models.Source {
	out := make([]models.Source, len(s.items))
	copy(out, s.items)
	return out
}

func (s *sourceSet) Len() int {
	return len(s.items)
}
