package dpll

import (
	"fmt"
	"strings"
)

func ExampleSolve() {
	// Problem: (¬x ∨ y) ∧ (¬y ∨ z) ∧ (x ∨ ¬z ∨ y) ∧ y
	cnf, err := ParseDIMACS(strings.NewReader(`
p cnf 3 4
-1 2 0
-2 3 0
1 -3 2 0
2 0
`))
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}

	r := Solve(cnf)
	if !r.Satisfiable {
		fmt.Println("not satisfiable")
		return
	}
	fmt.Println("true:", r.True)
	fmt.Println("false:", r.False)
	fmt.Println("don't care:", r.DontCare)
	// Output:
	// true: [3 2]
	// false: []
	// don't care: [1]
}
