package depgraph

// IDSet is an insertion-ordered set of node ids. Membership checks are
// backed by a map while iteration order follows insertion order, which is
// what dependency lists require: the order dependencies were listed in the
// artifact file is semantically significant (it drives both id assignment
// and the traversal order of the transitive reducer).
//
// The zero value is not usable - use NewIDSet.
type IDSet struct {
	ids     []int
	present map[int]bool
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{present: make(map[int]bool)}
}

// Add appends id to the set if it is not already present.
func (s *IDSet) Add(id int) {
	if s.present[id] {
		return
	}
	s.present[id] = true
	s.ids = append(s.ids, id)
}

// Remove deletes id from the set, preserving the order of the remaining
// elements. Removing an absent id is a no-op.
func (s *IDSet) Remove(id int) {
	if !s.present[id] {
		return
	}
	delete(s.present, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			return
		}
	}
}

// Has reports whether id is in the set.
func (s *IDSet) Has(id int) bool { return s.present[id] }

// Len returns the number of elements.
func (s *IDSet) Len() int { return len(s.ids) }

// Values returns the elements in insertion order. The returned slice is a
// copy; mutating it does not affect the set.
func (s *IDSet) Values() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}
