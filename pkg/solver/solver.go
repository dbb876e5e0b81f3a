// Package solver provides the incremental SAT-backed solver front-end.
//
// A Solver accepts Boolean combinations of bit-vector and cardinality
// constraints, preprocesses them down to propositional form, and decides
// satisfiability incrementally under per-call assumption terms. Asserted
// formulas are translated lazily; push/pop keep the pending formula
// list, the assumption list, the atom map, the bit-blast memo, and the
// SAT core's user level in lockstep.
package solver

import (
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/satkit/satkit/pkg/goal"
	"github.com/satkit/satkit/pkg/satcore"
	"github.com/satkit/satkit/pkg/tactic"
	"github.com/satkit/satkit/pkg/terms"
)

// ErrNonBaseTranslate is returned by Translate above base level.
var ErrNonBaseTranslate = errors.New("cannot translate solver at non-base level")

const noReason = "no reason given"

// Solver is the incremental driver. It is single-threaded and
// non-reentrant.
type Solver struct {
	m   *terms.Manager
	sat *satcore.Core
	log *logrus.Logger

	params        Params
	optimizeModel bool

	fmls  []*terms.Term
	asmsf []*terms.Term

	fmlsLim []int
	asmsLim []int
	headLim []int
	head    int

	numScopes int

	amap       *atomMap
	bb         *tactic.BitBlastRewriter
	preprocess tactic.Tactic

	core    []*terms.Term
	depCore []*terms.Term
	model   *terms.Model
	mc      tactic.ModelConverter

	asms    []z.Lit
	weights []float64

	reason string
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger installs the logger used for tactic failures and invariant
// diagnostics.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Solver) { s.log = log }
}

// WithParams applies initial parameters.
func WithParams(p Params) Option {
	return func(s *Solver) { s.params = p.Clone() }
}

// New returns a solver over the given term manager.
func New(m *terms.Manager, options ...Option) *Solver {
	s := &Solver{
		m:      m,
		amap:   newAtomMap(),
		bb:     tactic.NewBitBlastRewriter(m),
		params: Params{},
		reason: noReason,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetLevel(logrus.WarnLevel)
	}
	s.sat = satcore.New(m.Limit(), s.log)
	s.UpdateParams(s.params)
	profile := tactic.DefaultProfile()
	s.preprocess = tactic.Then(
		tactic.Card2BV(m),
		tactic.Simplify(m, profile),
		tactic.MaxBVSharing(m),
		tactic.BitBlast(m, s.bb),
		tactic.Simplify(m, profile),
	)
	return s
}

// Manager returns the term manager the solver is bound to.
func (s *Solver) Manager() *terms.Manager { return s.m }

// UpdateParams applies parameters. elim_vars is forced false: the
// incremental translation requires stable variable identity across
// calls. The simplification profile keys are pinned and unknown keys are
// forwarded to the SAT core.
func (s *Solver) UpdateParams(p Params) {
	s.params = p.Clone()
	s.params["elim_vars"] = false
	s.optimizeModel = s.params.Bool("optimize_model", false)
	s.sat.UpdateParams(s.params)
}

// Assert appends a formula to the pending list. Translation happens on
// the next check or push.
func (s *Solver) Assert(f *terms.Term) {
	s.fmls = append(s.fmls, f)
}

// AssertLabeled records the label and asserts label ⇒ f. Passing the
// label as an assumption to CheckSat enforces f and makes the label
// eligible to appear in unsat cores.
func (s *Solver) AssertLabeled(f, label *terms.Term) {
	s.asmsf = append(s.asmsf, label)
	s.Assert(s.m.Implies(label, f))
}

// Push brings the SAT core up to date with the pending formulas, then
// checkpoints every stackable resource.
func (s *Solver) Push() {
	s.internalizeFormulas()
	s.sat.UserPush()
	s.numScopes++
	s.fmlsLim = append(s.fmlsLim, len(s.fmls))
	s.asmsLim = append(s.asmsLim, len(s.asmsf))
	s.headLim = append(s.headLim, s.head)
	s.bb.Push()
	s.amap.Push()
}

// Pop closes n scopes, restoring the pending list, the assumption list,
// the head index, the atom map, the bit-blast memo, and the SAT core's
// user level to their state at the matching pushes. n is clamped to the
// current depth so an enclosing controller may pop past this solver's
// base.
func (s *Solver) Pop(n int) {
	if n > s.numScopes {
		n = s.numScopes
	}
	if n <= 0 {
		return
	}
	s.bb.Pop(n)
	s.amap.Pop(n)
	s.sat.UserPop(n)
	s.numScopes -= n
	for ; n > 0; n-- {
		s.head = s.headLim[len(s.headLim)-1]
		s.fmls = s.fmls[:s.fmlsLim[len(s.fmlsLim)-1]]
		s.asmsf = s.asmsf[:s.asmsLim[len(s.asmsLim)-1]]
		s.fmlsLim = s.fmlsLim[:len(s.fmlsLim)-1]
		s.asmsLim = s.asmsLim[:len(s.asmsLim)-1]
		s.headLim = s.headLim[:len(s.headLim)-1]
	}
	s.model = nil
}

// ScopeLevel returns the current number of open scopes.
func (s *Solver) ScopeLevel() int { return s.numScopes }

// CheckSat decides the asserted formulas under the given assumptions.
func (s *Solver) CheckSat(assumptions ...*terms.Term) (satcore.Result, error) {
	return s.CheckSatWeighted(assumptions, nil, 0)
}

// CheckSatWeighted decides the asserted formulas under soft assumptions.
// weights, when non-nil, runs parallel to assumptions and maxWeight
// bounds the total weight the check may violate. A returned error
// indicates a broken solver invariant, not unsatisfiability.
func (s *Solver) CheckSatWeighted(assumptions []*terms.Term, weights []float64, maxWeight float64) (satcore.Result, error) {
	if weights != nil && len(weights) != len(assumptions) {
		return satcore.Unknown, errors.Errorf("solver: %d weights for %d assumptions", len(weights), len(assumptions))
	}
	s.weights = s.weights[:0]
	s.weights = append(s.weights, weights...)
	s.asms = s.asms[:0]
	s.sat.PopToBaseLevel()
	s.model = nil
	s.depCore = nil
	s.reason = noReason

	dep2lit := make(map[*terms.Term]z.Lit)
	if r := s.internalizeFormulas(); r != satcore.Sat {
		return r, nil
	}
	if r := s.internalizeAssumptions(assumptions, dep2lit); r != satcore.Sat {
		return r, nil
	}

	var w []float64
	if weights != nil {
		w = s.weights
	}
	r := s.sat.Check(s.asms, w, maxWeight)
	switch r {
	case satcore.Sat:
		if len(assumptions) > 0 && weights == nil {
			if err := s.checkAssumptions(dep2lit); err != nil {
				return satcore.Unknown, err
			}
		}
	case satcore.Unsat:
		if len(assumptions) > 0 {
			if err := s.extractCore(dep2lit); err != nil {
				return satcore.Unknown, err
			}
		} else {
			s.core = s.core[:0]
		}
	}
	return r, nil
}

// internalizeFormulas translates the not-yet-translated suffix of the
// pending list. The head index advances only after the pipeline and the
// translator both succeed, so a failed attempt is retried by the next
// call instead of silently desynchronizing the SAT core.
func (s *Solver) internalizeFormulas() satcore.Result {
	if s.head == len(s.fmls) {
		return satcore.Sat
	}
	g := goal.New(true, false)
	for _, f := range s.fmls[s.head:] {
		g.Assert(f)
	}
	dep2lit := make(map[*terms.Term]z.Lit)
	r := s.internalizeGoal(g, dep2lit)
	if r == satcore.Sat {
		s.head = len(s.fmls)
	}
	return r
}

// internalizeAssumptions preprocesses the assumption terms, each tagged
// with itself as leaf dependency, then projects them onto SAT literals
// in user order, compacting parallel weights.
func (s *Solver) internalizeAssumptions(assumptions []*terms.Term, dep2lit map[*terms.Term]z.Lit) satcore.Result {
	if len(assumptions) == 0 {
		return satcore.Sat
	}
	g := goal.New(true, true)
	for _, a := range assumptions {
		g.AssertWithDep(a, a)
	}
	if r := s.internalizeGoal(g, dep2lit); r != satcore.Sat {
		return r
	}
	s.extractAssumptions(assumptions, dep2lit)
	if len(s.asms) != len(dep2lit) {
		// Assumptions are single leaves whose dependency is the term
		// itself, so each map entry projects to exactly one literal.
		s.log.WithFields(logrus.Fields{
			"assumptions": len(s.asms),
			"mapped":      len(dep2lit),
		}).Debug("assumption projection mismatch; duplicate assumption terms?")
	}
	return satcore.Sat
}

// internalizeGoal runs the preprocessing pipeline and hands the single
// resulting subgoal to the translator. Every failure mode downgrades to
// Unknown and leaves the solver usable.
func (s *Solver) internalizeGoal(g *goal.Goal, dep2lit map[*terms.Term]z.Lit) satcore.Result {
	res, err := s.preprocess.Apply(g)
	if err != nil {
		s.log.WithError(err).Warn("exception in tactic")
		s.reason = err.Error()
		return satcore.Unknown
	}
	if len(res.Subgoals) != 1 {
		s.log.WithField("subgoals", len(res.Subgoals)).Warn("preprocessing did not produce a single subgoal")
		s.reason = "preprocessing split the goal"
		return satcore.Unknown
	}
	s.mc = tactic.Concat(s.mc, res.Converter)
	s.depCore = append(s.depCore, res.DepCore...)
	tr := &goal2SAT{core: s.sat, amap: s.amap}
	if err := tr.Translate(res.Subgoals[0], dep2lit); err != nil {
		s.log.WithError(err).Warn("translation failed")
		s.reason = err.Error()
		return satcore.Unknown
	}
	return satcore.Sat
}

// extractAssumptions projects the user assumption list onto SAT
// literals, keeping the surviving weights aligned with their literals.
func (s *Solver) extractAssumptions(assumptions []*terms.Term, dep2lit map[*terms.Term]z.Lit) {
	j := 0
	for i, a := range assumptions {
		m, ok := dep2lit[a]
		if !ok {
			continue
		}
		s.asms = append(s.asms, m)
		if i != j && len(s.weights) > 0 {
			s.weights[j] = s.weights[i]
		}
		j++
	}
	if len(s.weights) > j {
		s.weights = s.weights[:j]
	}
}

// extractCore maps the SAT core's failed literals back to the original
// assumption terms and unions in the dependency core the preprocessing
// pipeline computed.
func (s *Solver) extractCore(dep2lit map[*terms.Term]z.Lit) error {
	inv := make(map[z.Lit]*terms.Term, len(dep2lit))
	for dep, m := range dep2lit {
		inv[m] = dep
	}
	s.core = s.core[:0]
	for _, m := range s.sat.Core() {
		dep, ok := inv[m]
		if !ok {
			return errors.Errorf("solver: core literal %s has no dependency", m)
		}
		s.core = append(s.core, dep)
	}
	seen := make(map[*terms.Term]bool, len(s.core))
	for _, dep := range s.core {
		seen[dep] = true
	}
	for _, dep := range s.depCore {
		if !seen[dep] {
			seen[dep] = true
			s.core = append(s.core, dep)
		}
	}
	return nil
}

// checkAssumptions verifies that every projected assumption literal
// holds in the SAT model; a violation means preprocessing or translation
// is broken.
func (s *Solver) checkAssumptions(dep2lit map[*terms.Term]z.Lit) error {
	for dep, m := range dep2lit {
		if !s.sat.ModelValue(m) {
			s.log.WithFields(logrus.Fields{
				"assumption": dep.String(),
				"literal":    m.String(),
			}).Error("assumption does not evaluate to true under the SAT model")
			return errors.New("solver: assumption violated by model")
		}
	}
	return nil
}

// UnsatCore returns the assumption terms of the last Unsat answer.
func (s *Solver) UnsatCore() []*terms.Term {
	out := make([]*terms.Term, len(s.core))
	copy(out, s.core)
	return out
}

// ReasonUnknown describes the last Unknown answer.
func (s *Solver) ReasonUnknown() string { return s.reason }

// Translate returns a fresh solver over dst with the pending formulas
// and labeled assumptions carried across managers. Translation is only
// supported at base level.
func (s *Solver) Translate(dst *terms.Manager) (*Solver, error) {
	if s.numScopes > 0 {
		return nil, ErrNonBaseTranslate
	}
	out := New(dst, WithLogger(s.log), WithParams(s.params))
	tr := terms.NewTranslator(dst)
	for _, f := range s.fmls {
		out.fmls = append(out.fmls, tr.Translate(f))
	}
	for _, a := range s.asmsf {
		out.asmsf = append(out.asmsf, tr.Translate(a))
	}
	return out, nil
}

// NumAssertions returns the pending formula count.
func (s *Solver) NumAssertions() int { return len(s.fmls) }

// Assertion returns the i-th pending formula.
func (s *Solver) Assertion(i int) *terms.Term { return s.fmls[i] }

// NumAssumptions returns the recorded label count.
func (s *Solver) NumAssumptions() int { return len(s.asmsf) }

// Assumption returns the i-th recorded label.
func (s *Solver) Assumption(i int) *terms.Term { return s.asmsf[i] }

// Statistics is a snapshot of solver counters.
type Statistics struct {
	Sat        satcore.Statistics
	Atoms      int
	Assertions int
	ScopeLevel int
}

// CollectStatistics returns a snapshot of the solver and SAT core
// counters.
func (s *Solver) CollectStatistics() Statistics {
	return Statistics{
		Sat:        s.sat.Statistics(),
		Atoms:      s.amap.Len(),
		Assertions: len(s.fmls),
		ScopeLevel: s.numScopes,
	}
}
