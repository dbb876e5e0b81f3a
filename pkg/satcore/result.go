// Package satcore adapts the gini CDCL engine to the incremental
// interface the solver front-end needs: user-level scopes, checks under
// assumptions with optional soft weights, failed-assumption cores, model
// snapshots, and a weighted-CNF display surface.
package satcore

// Result is the three-valued answer of a satisfiability check. The
// numeric values match gini's Solve convention.
type Result int8

const (
	Unsat   Result = -1
	Unknown Result = 0
	Sat     Result = 1
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	}
	return "unknown"
}
