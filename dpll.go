// Package dpll implements a DPLL SAT decision procedure over CNF formulas
// expressed in the DIMACS text format, extended with unit propagation and
// pure-literal elimination.
//
// The search state is built from two structures designed to make
// backtracking cheap: a persistent, reference-counted integer set (PSet) for
// each clause's residual literals, and a per-clause stack of versions keyed
// by a monotonically increasing mark. Undoing everything from a failed
// branch is a single pop-while-mark->=-threshold sweep per clause, plus one
// sweep each over the trail's true/false lists — no global undo log is kept.
package dpll

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// variable is the literal record from spec §3: one per DIMACS variable
// 1..N, carrying its clause-occurrence list (regardless of polarity) and
// the mark at which it was last moved out of Z. next links it into
// whichever of Z, T, or F it currently belongs to; the same node is reused
// across all three lists over the variable's lifetime, exactly as the
// original C source reuses a single intrusive list node.
type variable struct {
	name    int
	clauses []int
	mark    uint32
	next    *variable
}

// clauseVersion is one entry in a clause's version stack (spec §3, §4.2).
type clauseVersion struct {
	literals *PSet
	mark     uint32
	sat      bool
	prev     *clauseVersion
}

// clauseSlot holds a clause's current top version; the clause's fixed index
// is its position in Solver.clauses.
type clauseSlot struct {
	top *clauseVersion
}

// Solver holds all state for one DPLL search: the trail (Z/T/F), the
// clause-version stacks, and the variable records. It is single-use and
// single-threaded (spec §5): create one with New, call Solve once.
type Solver struct {
	vars    []*variable // vars[i] is variable i+1
	clauses []*clauseSlot

	z, t, f *variable

	logger hclog.Logger

	numDecisions    int64
	numPropagations int64
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger attaches a logger used for trace/debug output of decisions and
// propagation. The default is a null logger: production solves are silent
// unless a caller opts in, matching the corpus's hclog idiom.
func WithLogger(l hclog.Logger) Option {
	return func(s *Solver) {
		s.logger = l
	}
}

// New builds a Solver for the given CNF. See ParseDIMACS for how a CNF is
// produced from DIMACS text.
func New(cnf *CNF, opts ...Option) *Solver {
	s := &Solver{
		logger:  hclog.NewNullLogger(),
		vars:    make([]*variable, cnf.NumVars),
		clauses: make([]*clauseSlot, len(cnf.Clauses)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := range s.vars {
		s.vars[i] = &variable{name: i + 1}
	}

	for ci, lits := range cnf.Clauses {
		var set *PSet
		for _, l := range lits {
			set = Insert(set, l)
			v := s.vars[absInt(l)-1]
			v.clauses = append(v.clauses, ci)
		}
		s.clauses[ci] = &clauseSlot{top: &clauseVersion{literals: set, mark: 0, sat: false}}
	}

	// Build Z as a singly linked list, head first. Order only needs to be
	// deterministic (spec §4.5); building head-to-tail from variable 1
	// upward gives the natural "lowest-numbered unassigned variable first"
	// branch order that spec §4.6 asks for initially.
	for i := len(s.vars) - 1; i >= 0; i-- {
		s.vars[i].next = s.z
		s.z = s.vars[i]
	}

	return s
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Result is the outcome of a Solve call.
type Result struct {
	Satisfiable  bool
	True         []int
	False        []int
	DontCare     []int
	Decisions    int64
	Propagations int64
}

// Solve runs the DPLL search to completion.
func (s *Solver) Solve() *Result {
	ok := s.sat(1)
	r := &Result{
		Satisfiable:  ok,
		Decisions:    s.numDecisions,
		Propagations: s.numPropagations,
	}
	if !ok {
		return r
	}
	for v := s.t; v != nil; v = v.next {
		r.True = append(r.True, v.name)
	}
	for v := s.f; v != nil; v = v.next {
		r.False = append(r.False, v.name)
	}
	for v := s.z; v != nil; v = v.next {
		r.DontCare = append(r.DontCare, v.name)
	}
	return r
}

// allSatisfied reports whether every clause's top version is satisfied.
func (s *Solver) allSatisfied() bool {
	for _, c := range s.clauses {
		if !c.top.sat {
			return false
		}
	}
	return true
}

// trySet is spec §4.3: given a tentative literal l, walk every clause that
// mentions |l| (regardless of polarity) whose top version is unsatisfied,
// and either mark it satisfied (if l itself appears) or shrink it (if -l
// appears). It returns false the instant a clause would become empty,
// without touching any clause slot beyond the one that conflicted — the
// caller is responsible for popAbove to unwind whatever was already pushed
// in this call and any enclosing ones.
func (s *Solver) trySet(l int, mark uint32) bool {
	v := s.vars[absInt(l)-1]
	for _, ci := range v.clauses {
		c := s.clauses[ci]
		top := c.top
		if top.sat {
			continue
		}
		switch {
		case top.literals.Contains(l):
			top.literals.RefUp()
			c.top = &clauseVersion{literals: top.literals, mark: mark, sat: true, prev: top}
		case top.literals.Contains(-l):
			shrunk := Remove(top.literals, -l)
			if shrunk.Size() == 0 {
				return false
			}
			c.top = &clauseVersion{literals: shrunk, mark: mark, sat: false, prev: top}
		}
	}
	return true
}

// popAbove undoes every clause-version push and every trail move made at a
// mark >= threshold: one sweep per clause (spec §4.2's pop_above), plus one
// sweep each over T and F restoring their freed entries onto Z (spec §3's
// "one sweep per trail list"). This is the sole rewind path; propagation and
// pure-literal elimination share it for free because their pushes carry the
// same marks as the branch that eventually discards them.
func (s *Solver) popAbove(threshold uint32) {
	for _, c := range s.clauses {
		for c.top.mark >= threshold && c.top.prev != nil {
			old := c.top
			c.top = old.prev
			old.literals.RefDown()
		}
	}
	for s.t != nil && s.t.mark >= threshold {
		v := s.t
		s.t = v.next
		v.next = s.z
		s.z = v
	}
	for s.f != nil && s.f.mark >= threshold {
		v := s.f
		s.f = v.next
		v.next = s.z
		s.z = v
	}
}

// unitPropagate is spec §4.4: one sweep over every clause, forcing the
// assignment implied by any unsatisfied singleton clause. It reports a
// conflict if any forced assignment empties another clause, and otherwise
// whether at least one assignment was made.
func (s *Solver) unitPropagate(mark uint32) (conflict, progress bool) {
	for _, c := range s.clauses {
		top := c.top
		if top.sat || top.literals.Size() != 1 {
			continue
		}
		l, _ := top.literals.Only()
		if !s.trySet(l, mark) {
			return true, false
		}
		s.moveFromZ(l, mark)
		s.numPropagations++
		progress = true
	}
	return false, progress
}

// eliminatePureLiterals is spec §4.5: traverse Z once; for each variable,
// test positive polarity then negative; a literal is pure if every
// unsatisfied clause mentioning the variable mentions it with only that
// polarity. Traversal order is Z's current order, matching §4.5's
// determinism requirement.
func (s *Solver) eliminatePureLiterals(mark uint32) (conflict, progress bool) {
	// v is moved out of Z (and its next pointer repurposed into T/F) the
	// moment it's found pure, so the next node to visit must be captured
	// before that happens rather than read off v.next afterward.
	for v := s.z; v != nil; {
		next := v.next
		posSeen, negSeen := false, false
		for _, ci := range v.clauses {
			top := s.clauses[ci].top
			if top.sat {
				continue
			}
			if top.literals.Contains(v.name) {
				posSeen = true
			}
			if top.literals.Contains(-v.name) {
				negSeen = true
			}
			if posSeen && negSeen {
				break
			}
		}
		var pure int
		switch {
		case posSeen && !negSeen:
			pure = v.name
		case negSeen && !posSeen:
			pure = -v.name
		default:
			v = next
			continue
		}
		if !s.trySet(pure, mark) {
			return true, false
		}
		s.moveFromZ(pure, mark)
		s.numPropagations++
		progress = true
		v = next
	}
	return false, progress
}

// moveFromZ removes the variable named by l from Z and pushes it onto T or
// F (depending on l's sign) with the given mark. l's variable must
// currently be somewhere in Z (it panics otherwise); that invariant holds
// because unitPropagate and eliminatePureLiterals only ever force variables
// still in Z.
func (s *Solver) moveFromZ(l int, mark uint32) {
	name := absInt(l)
	s.logger.Trace("assign", "literal", l, "mark", mark)
	var prev *variable
	v := s.z
	for v != nil && v.name != name {
		prev = v
		v = v.next
	}
	if v == nil {
		panic(fmt.Sprintf("dpll: forced variable %d is not in Z", name))
	}
	if prev == nil {
		s.z = v.next
	} else {
		prev.next = v.next
	}
	v.mark = mark
	if l > 0 {
		v.next = s.t
		s.t = v
	} else {
		v.next = s.f
		s.f = v
	}
}

// sat is the recursive DPLL driver (spec §4.6).
func (s *Solver) sat(mark uint32) bool {
	if s.allSatisfied() {
		return true
	}
	if s.z == nil {
		return false
	}

	if conflict, progress := s.unitPropagate(mark); conflict {
		return false
	} else if progress {
		return s.sat(mark + 1)
	}

	if conflict, progress := s.eliminatePureLiterals(mark); conflict {
		return false
	} else if progress {
		return s.sat(mark + 1)
	}

	// Branch on the first variable in Z, positive polarity first.
	v := s.z
	s.z = v.next
	v.mark = mark
	v.next = s.t
	s.t = v
	s.numDecisions++
	s.logger.Trace("decision", "var", v.name, "polarity", true, "mark", mark)

	if s.trySet(v.name, mark) {
		if s.sat(mark + 1) {
			return true
		}
	}
	s.popAbove(mark)

	// popAbove put v back into Z, but F entries it restored may now sit ahead
	// of it, so v is looked up by name rather than taken from Z's head.
	s.moveFromZ(-v.name, mark)
	s.numDecisions++
	s.logger.Trace("decision", "var", v.name, "polarity", false, "mark", mark)

	if s.trySet(-v.name, mark) {
		if s.sat(mark + 1) {
			return true
		}
	}
	s.popAbove(mark)

	return false
}

// Solve parses nothing; it runs the DPLL search over an already-built CNF.
// It is the package-level convenience wrapper around New(cnf).Solve().
func Solve(cnf *CNF, opts ...Option) *Result {
	return New(cnf, opts...).Solve()
}
