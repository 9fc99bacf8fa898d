package dpll

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// TestPSetInsertIterate mirrors original_source/pset_test.c's scenario:
// insert a fixed sequence and check that iteration yields the sorted set.
func TestPSetInsertIterate(t *testing.T) {
	order := []int{5, 8, 6, 7, 2, 3, 1, 4}
	var p *PSet
	for _, v := range order {
		p = Insert(p, v)
	}
	want := []int{1, 2, 3, 4, 5, 6, 7, 8}
	if diff := cmp.Diff(want, p.Values()); diff != "" {
		t.Fatalf("Values() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, len(want), p.Size())
}

// TestPSetRemoveIsPersistent checks spec §8's persistence property: removing
// from a shared reference leaves the original set, and every node it still
// references, completely unaffected.
func TestPSetRemoveIsPersistent(t *testing.T) {
	var original *PSet
	for _, v := range []int{5, 8, 6, 7, 2, 3, 1, 4} {
		original = Insert(original, v)
	}

	derived := original
	for _, v := range []int{2, 4, 6, 8} {
		derived = Remove(derived, v)
	}

	require.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, original.Values())
	require.ElementsMatch(t, []int{1, 3, 5, 7}, derived.Values())
}

func TestPSetRemoveSizeAndMembership(t *testing.T) {
	var s *PSet
	for _, v := range []int{3, 1, 4} {
		s = Insert(s, v)
	}
	before := s.Values()
	removed := Remove(s, 4)
	require.Equal(t, s.Size()-1, removed.Size())
	require.False(t, removed.Contains(4))
	require.Equal(t, before, s.Values(), "remove must not mutate its input")
}

func TestPSetContains(t *testing.T) {
	var s *PSet
	for _, v := range []int{10, 20, 30} {
		s = Insert(s, v)
	}
	require.False(t, s.Contains(25))
	s2 := Insert(s, 25)
	require.True(t, s2.Contains(25))
}

// TestPSetRefcountsReachZero is spec §8's reference-count property: after
// every externally held root is refdown'd, no node should have a dangling
// positive refcount. We can't observe freed memory directly in Go, so the
// test builds a fresh tree whose only holder is the test itself, refdowns
// its root, and walks the tree asserting that every node ends at ref==0.
func TestPSetRefcountsReachZero(t *testing.T) {
	var s *PSet
	vals := []int{4, 2, 6, 1, 3, 5, 7}
	for _, v := range vals {
		s = Insert(s, v)
	}
	require.Equal(t, 1, s.ref)
	s.RefDown()
	require.Equal(t, 0, s.ref)
	var walk func(p *PSet)
	walk = func(p *PSet) {
		if p == nil {
			return
		}
		require.Equal(t, 0, p.ref, "node %d", p.val)
		walk(p.left)
		walk(p.right)
	}
	walk(s)
}

func TestPSetInsertDuplicatePanics(t *testing.T) {
	var s *PSet
	s = Insert(s, 1)
	require.Panics(t, func() { Insert(s, 1) })
}

func TestPSetRemoveMissingPanics(t *testing.T) {
	var s *PSet
	s = Insert(s, 1)
	require.Panics(t, func() { Remove(s, 2) })
}

func TestPSetRemoveTieBreak(t *testing.T) {
	// 4 as root, left subtree {1,2,3} (size 3), right subtree {5,6} (size 2):
	// right.size < left.size so psetDelete should promote max-of-left (3).
	var s *PSet
	for _, v := range []int{4, 2, 1, 3, 6, 5} {
		s = Insert(s, v)
	}
	removed := Remove(s, 4)
	require.Equal(t, 3, removed.val)
	require.ElementsMatch(t, []int{1, 2, 3, 5, 6}, removed.Values())
}

