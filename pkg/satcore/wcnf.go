package satcore

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// DisplayWCNF writes the live clause set plus the given soft assumptions
// in DIMACS weighted-CNF form: hard clauses carry the top weight, each
// soft assumption becomes a unit clause with its weight. Activation
// guards of live scopes are stripped, so the output describes the
// currently-enforced problem.
func (c *Core) DisplayWCNF(w io.Writer, asms []z.Lit, weights []uint64) error {
	if len(asms) != len(weights) {
		return errors.Errorf("satcore: %d assumptions with %d weights", len(asms), len(weights))
	}
	var top uint64 = 1
	for _, wt := range weights {
		top += wt
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p wcnf %d %d %d\n", int(c.maxVar), len(c.clauses)+len(asms), top)
	for _, clause := range c.clauses {
		fmt.Fprintf(bw, "%d", top)
		for _, m := range clause {
			fmt.Fprintf(bw, " %d", m.Dimacs())
		}
		fmt.Fprintf(bw, " 0\n")
	}
	for i, m := range asms {
		fmt.Fprintf(bw, "%d %d 0\n", weights[i], m.Dimacs())
	}
	return bw.Flush()
}
