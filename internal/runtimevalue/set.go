package runtimevalue

import "fmt"

// Set is a structural-membership collection backed by the same HAMT the
// map uses; membership is just a map to a sentinel value.
type Set struct {
	entries *PersistentMap
}

var setMember = Bool{Value: true}

// EmptySet is the empty set.
func EmptySet() *Set { return &Set{entries: EmptyMap()} }

// SetFrom builds a Set from a slice of Values, later duplicates collapsing.
func SetFrom(items []Value) *Set {
	s := EmptySet()
	for _, item := range items {
		s = s.Conj(item)
	}
	return s
}

func (s *Set) Kind() Kind      { return KindSet }
func (s *Set) Inspect() string { return fmt.Sprintf("#{...%d items...}", s.entries.Len()) }
func (s *Set) Hash() uint32 {
	var h uint32 = 23
	for _, item := range s.Items() {
		h ^= item.Hash()
	}
	return h
}

func (s *Set) Len() int                  { return s.entries.Len() }
func (s *Set) Contains(v Value) bool     { return s.entries.Contains(v) }
func (s *Set) Items() []Value            { return s.entries.Keys() }
func (s *Set) Conj(v Value) *Set         { return &Set{entries: s.entries.Put(v, setMember)} }
func (s *Set) Remove(v Value) *Set       { return &Set{entries: s.entries.Remove(v)} }

// AsPredicate implements set-as-predicate: returns the matched element
// if v is a member, else nil.
func (s *Set) AsPredicate(v Value) Value {
	if s.Contains(v) {
		return v
	}
	return Nil{}
}
