package dpll

// PSet is a persistent, reference-counted set of signed integers, implemented
// as an unbalanced binary search tree. A nil *PSet is the empty set.
//
// Insert mutates its receiver in place (the new leaf aside, no copying
// happens along the path); Remove is fully copy-on-write, rebuilding the
// ancestor chain down to the removed value while sharing every untouched
// subtree with the input via a bumped reference count. This mirrors the
// asymmetry in the original C implementation this type is ported from: sets
// are built once via Insert and then only ever shrunk via Remove, and it's
// the shrinking that must not disturb a sibling search branch's view of the
// same clause.
type PSet struct {
	left, right *PSet
	val         int
	size        int
	ref         int
}

// Size returns the number of elements in the set.
func (p *PSet) Size() int {
	if p == nil {
		return 0
	}
	return p.size
}

// Contains reports whether v is a member of the set.
func (p *PSet) Contains(v int) bool {
	if p == nil {
		return false
	}
	if p.val == v {
		return true
	}
	if v < p.val {
		return p.left.Contains(v)
	}
	return p.right.Contains(v)
}

// Only returns the sole element of a singleton set.
func (p *PSet) Only() (int, bool) {
	if p.Size() != 1 {
		return 0, false
	}
	return p.val, true
}

// ForEach calls fn for every member of the set in ascending order.
func (p *PSet) ForEach(fn func(int)) {
	if p == nil {
		return
	}
	p.left.ForEach(fn)
	fn(p.val)
	p.right.ForEach(fn)
}

// Values returns the set's members in ascending order.
func (p *PSet) Values() []int {
	vals := make([]int, 0, p.Size())
	p.ForEach(func(v int) { vals = append(vals, v) })
	return vals
}

// RefUp records a new holder of p. Every RefUp must be matched by a RefDown
// on every exit path: success, failure, conflict rewind, or shutdown.
func (p *PSet) RefUp() {
	if p == nil {
		return
	}
	if p.ref <= 0 {
		panic("pset: refup on node with non-positive refcount")
	}
	p.ref++
}

// RefDown releases a holder of p. When the count reaches zero, p releases
// its own holds on its children in turn.
func (p *PSet) RefDown() {
	if p == nil {
		return
	}
	if p.ref <= 0 {
		panic("pset: refdown on node with non-positive refcount")
	}
	p.ref--
	if p.ref == 0 {
		p.left.RefDown()
		p.right.RefDown()
	}
}

// Insert returns a set containing v in addition to the members of p. It
// panics if v is already present: callers are expected to guarantee
// uniqueness at insert sites (DIMACS clauses reject repeated literals before
// this is ever called). Unlike Remove, Insert mutates p in place along the
// path rather than copying it; this is safe because every set under
// construction via Insert is exclusively owned until the clause is
// finalized, before it is ever shared across clause versions.
func Insert(p *PSet, v int) *PSet {
	if p == nil {
		return &PSet{val: v, size: 1, ref: 1}
	}
	if v == p.val {
		panic("pset: insert of value already present")
	}
	p.size++
	if v < p.val {
		p.left = Insert(p.left, v)
	} else {
		p.right = Insert(p.right, v)
	}
	return p
}

func psetMax(p *PSet) int {
	if p.right == nil {
		return p.val
	}
	return psetMax(p.right)
}

func psetMin(p *PSet) int {
	if p.left == nil {
		return p.val
	}
	return psetMin(p.left)
}

// psetDelete removes the root of p (p itself), returning the replacement
// subtree. p's own reference is the caller's concern; this only rebuilds
// the structure below and at the deleted node.
func psetDelete(p *PSet) *PSet {
	if p.left == nil && p.right == nil {
		return nil
	}
	if p.left == nil || p.right == nil {
		child := p.left
		if child == nil {
			child = p.right
		}
		child.RefUp()
		return child
	}

	res := &PSet{ref: 1}
	if p.right.size < p.left.size {
		val := psetMax(p.left)
		res.left = Remove(p.left, val)
		res.right = p.right
		res.right.RefUp()
		res.size = p.size - 1
		res.val = val
	} else {
		val := psetMin(p.right)
		res.right = Remove(p.right, val)
		res.left = p.left
		res.left.RefUp()
		res.size = p.size - 1
		res.val = val
	}
	return res
}

// Remove returns a set containing the members of p except v; v must be a
// member of p. The input p is left completely intact: every node on the
// path from the root to v is freshly allocated, and every subtree hanging
// off that path is shared with p (reference-counted, not copied).
func Remove(p *PSet, v int) *PSet {
	if p == nil {
		panic("pset: remove of value not present")
	}
	if p.val == v {
		return psetDelete(p)
	}

	res := &PSet{ref: 1, size: p.size - 1}
	if v < p.val {
		res.right = p.right
		res.right.RefUp()
		res.left = Remove(p.left, v)
		res.val = p.val
	} else {
		res.left = p.left
		res.left.RefUp()
		res.right = Remove(p.right, v)
		res.val = p.val
	}
	return res
}
