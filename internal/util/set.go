package util

import "slices"

// A Set represents a set of strings that remembers the order in which its
// elements were first added.
// The zero value represents an empty set.
type Set struct {
	elems []string
	index map[string]struct{}
}

// NewSet returns a Set that contains all of elems
// but no other elements.
func NewSet(elems ...string) *Set {
	// We don't need defensive copying here because Add copies each element
	// into set's own backing slice.
	var set Set
	for _, e := range elems {
		set.Add(e)
	}
	return &set
}

// Add adds e to set, unless set already contains e.
// It reports whether set was modified.
func (set *Set) Add(e string) bool {
	if _, found := set.index[e]; found {
		return false
	}
	if set.index == nil {
		set.index = make(map[string]struct{})
	}
	set.index[e] = struct{}{}
	set.elems = append(set.elems, e)
	return true
}

// Remove removes e from set.
// It reports whether set was modified.
func (set *Set) Remove(e string) bool {
	if _, found := set.index[e]; !found {
		return false
	}
	delete(set.index, e)
	i := slices.Index(set.elems, e)
	set.elems = slices.Delete(set.elems, i, i+1)
	return true
}

// Contains reports whether e is an element of set.
func (set *Set) Contains(e string) bool {
	_, found := set.index[e]
	return found
}

// Size returns the cardinality of set.
func (set *Set) Size() int {
	return len(set.elems)
}

// ToSlice returns a slice of set's elements in insertion order.
// The result is never nil.
func (set *Set) ToSlice() []string {
	// We need defensive copying here because clients can mutate the result;
	// see (*envcors.Cors).Config.
	s := make([]string, len(set.elems))
	copy(s, set.elems)
	return s
}
