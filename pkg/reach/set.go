package reach

import "slices"

// Set is a set of plugin IDs
type Set map[string]struct{}

// Has reports whether id is in the set
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the IDs in lexical order
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s Set) add(id string) {
	s[id] = struct{}{}
}
