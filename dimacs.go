package dpll

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CNF is the in-memory result of parsing a DIMACS CNF formula: the declared
// variable count and the clauses as lists of signed integers (spec §6.1).
type CNF struct {
	NumVars int
	Clauses [][]int
}

// ParseDIMACS parses text in the DIMACS CNF format (spec §6.1).
//
// Leading `c` lines are comments and may appear anywhere. The header line
// has the shape `p cnf <nvars> <nclauses>`. Clauses are whitespace-separated
// non-zero signed decimal integers, each terminated by a literal 0; exactly
// nclauses clauses must follow, and every variable in them must lie in
// 1..=nvars. A literal repeated (in either polarity) within one clause is a
// parse error.
func ParseDIMACS(r io.Reader) (*CNF, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var header struct {
		seen    bool
		nvars   int
		nclause int
	}
	clauses := [][]int{}
	var clause []int
	var seenInClause map[int]struct{}
	lineNo := 0

	for s.Scan() {
		lineNo++
		line := s.Text()
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line[0] == 'p' {
			if header.seen {
				return nil, errors.Errorf("dimacs: line %d: multiple problem lines", lineNo)
			}
			if len(clauses) > 0 || len(clause) > 0 {
				return nil, errors.Errorf("dimacs: line %d: problem line appears after clauses", lineNo)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, errors.Errorf("dimacs: line %d: malformed problem line %q", lineNo, line)
			}
			nvars, err := strconv.Atoi(fields[2])
			if err != nil || nvars < 0 {
				return nil, errors.Errorf("dimacs: line %d: malformed variable count %q", lineNo, fields[2])
			}
			nclause, err := strconv.Atoi(fields[3])
			if err != nil || nclause < 0 {
				return nil, errors.Errorf("dimacs: line %d: malformed clause count %q", lineNo, fields[3])
			}
			header.seen = true
			header.nvars = nvars
			header.nclause = nclause
			continue
		}

		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "dimacs: line %d: invalid literal %q", lineNo, field)
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
				seenInClause = nil
				continue
			}
			if seenInClause == nil {
				seenInClause = make(map[int]struct{}, 4)
			}
			if _, dup := seenInClause[n]; dup {
				return nil, errors.Errorf("dimacs: line %d: literal %d repeated within one clause", lineNo, n)
			}
			seenInClause[n] = struct{}{}
			clause = append(clause, n)
		}
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "dimacs: read error")
	}
	if !header.seen {
		return nil, errors.New("dimacs: missing problem line")
	}
	if len(clause) > 0 {
		return nil, errors.New("dimacs: trailing clause not terminated by 0")
	}
	if len(clauses) != header.nclause {
		return nil, errors.Errorf("dimacs: problem line specifies %d clauses, but %d were found", header.nclause, len(clauses))
	}
	for _, cls := range clauses {
		for _, v := range cls {
			if v < 0 {
				v = -v
			}
			if v < 1 || v > header.nvars {
				return nil, errors.Errorf("dimacs: variable %d outside declared range 1..%d", v, header.nvars)
			}
		}
	}

	return &CNF{NumVars: header.nvars, Clauses: clauses}, nil
}
