package equation

import (
	"maps"
	"slices"
)

// Set is an unordered set of names.
type Set map[string]struct{}

// NewSet returns a set holding names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s.Add(n)
	}
	return s
}

func (s Set) Add(name string)    { s[name] = struct{}{} }
func (s Set) Remove(name string) { delete(s, name) }

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s Set) Len() int { return len(s) }

// Minus returns the names of s that are not in other.
func (s Set) Minus(other Set) Set {
	out := NewSet()
	for n := range s {
		if !other.Contains(n) {
			out.Add(n)
		}
	}
	return out
}

// Sorted returns the names in lexical order. Ordering carries no meaning; it
// only makes output deterministic.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}
