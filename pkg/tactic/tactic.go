// Package tactic provides goal-rewriting tactics and their composition.
//
// A tactic consumes a goal and produces subgoals plus bookkeeping for
// lifting models back through the rewrite and for attributing
// unsatisfiability to tagged assertions. The preprocessing pipeline used
// by the incremental solver composes tactics with Then, which requires
// every stage to produce exactly one subgoal.
package tactic

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/terms"
)

// ModelConverter lifts a model produced for a rewritten goal back to the
// vocabulary the rewrite consumed. Converters compose left-to-right in
// construction order.
type ModelConverter interface {
	ApplyTo(md *terms.Model) error
}

type concatConverter struct {
	first, second ModelConverter
}

func (c concatConverter) ApplyTo(md *terms.Model) error {
	if err := c.first.ApplyTo(md); err != nil {
		return err
	}
	return c.second.ApplyTo(md)
}

// Concat composes two converters, either of which may be nil.
func Concat(a, b ModelConverter) ModelConverter {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return concatConverter{first: a, second: b}
}

// Result is the outcome of a tactic application.
type Result struct {
	// Subgoals holds the rewritten goals. The solver pipeline only
	// accepts results with exactly one subgoal.
	Subgoals []*goal.Goal
	// Converter lifts models of the subgoals back through the rewrite;
	// nil when the tactic supplies none. The bit-blast tactic leaves it
	// nil even though it introduces bit constants: their inverse is built
	// from the shared rewriter's Const2Bits table instead.
	Converter ModelConverter
	// DepCore lists dependencies the tactic already knows must
	// participate in any unsat core; nil when none.
	DepCore []*terms.Term
}

// Tactic rewrites a goal. Implementations return string-carrying errors
// and must not panic on malformed input.
type Tactic interface {
	Name() string
	Apply(g *goal.Goal) (*Result, error)
}

// ErrSplit is returned by Then when an inner tactic produces a subgoal
// count other than one.
var ErrSplit = errors.New("tactic did not produce exactly one subgoal")

type sequence struct {
	tactics []Tactic
}

// Then composes tactics sequentially over a single-subgoal chain.
func Then(ts ...Tactic) Tactic {
	return sequence{tactics: ts}
}

func (s sequence) Name() string { return "then" }

func (s sequence) Apply(g *goal.Goal) (*Result, error) {
	cur := g
	var conv ModelConverter
	var depCore []*terms.Term
	for _, t := range s.tactics {
		r, err := t.Apply(cur)
		if err != nil {
			return nil, errors.Wrapf(err, "tactic %s", t.Name())
		}
		if len(r.Subgoals) != 1 {
			return nil, errors.Wrapf(ErrSplit, "tactic %s produced %d subgoals", t.Name(), len(r.Subgoals))
		}
		cur = r.Subgoals[0]
		conv = Concat(conv, r.Converter)
		depCore = append(depCore, r.DepCore...)
	}
	return &Result{Subgoals: []*goal.Goal{cur}, Converter: conv, DepCore: depCore}, nil
}

// singleSubgoal wraps a rewritten goal in the shape Apply must return.
func singleSubgoal(g *goal.Goal) []*goal.Goal {
	return []*goal.Goal{g}
}

// checkLimit converts a tripped resource limit into a tactic error.
func checkLimit(name string, l *terms.Limit) error {
	if l.Cancelled() {
		return fmt.Errorf("%s: resource limit exceeded", name)
	}
	return nil
}
