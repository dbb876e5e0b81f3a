package satcore

import (
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/sirupsen/logrus"

	"github.com/satkit/satkit/pkg/terms"
)

const pollInterval = 20 * time.Millisecond

// Core is an incremental SAT engine with user-level scopes.
//
// Scopes are realized with activation literals: a clause added while n
// scopes are open carries the negated activation literal of the
// innermost scope, every check assumes the activation literals of all
// live scopes, and popping a scope permanently disables its clauses with
// a unit clause. This keeps variable identity stable across incremental
// calls, which the front-end requires.
type Core struct {
	g      *gini.Gini
	limit  *terms.Limit
	log    *logrus.Logger
	maxVar z.Var

	levels []z.Lit

	clauses [][]z.Lit
	scopes  []int

	model    []bool
	modelOK  bool
	lastCore []z.Lit

	stats Statistics
}

// Statistics is a snapshot of the core's counters.
type Statistics struct {
	Vars     int64
	Clauses  int64
	Checks   int64
	Sats     int64
	Unsats   int64
	Unknowns int64
	Scopes   int64
}

// New returns an empty core. The limit may be nil, in which case checks
// run to completion.
func New(limit *terms.Limit, log *logrus.Logger) *Core {
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}
	return &Core{g: gini.New(), limit: limit, log: log}
}

// UpdateParams accepts engine parameters. The underlying engine has no
// tunable knobs, so unknown keys are recorded at debug level and
// otherwise ignored.
func (c *Core) UpdateParams(kv map[string]interface{}) {
	for k := range kv {
		c.log.WithField("key", k).Debug("ignoring sat core parameter")
	}
}

// NewVar allocates a fresh variable and returns its positive literal.
// Variables are handed to the engine lazily via Add/Assume, so the
// adapter owns the numbering.
func (c *Core) NewVar() z.Lit {
	c.maxVar++
	return c.maxVar.Pos()
}

// MaxVar returns the highest allocated variable.
func (c *Core) MaxVar() z.Var { return c.maxVar }

// AddClause adds a clause at the current user level.
func (c *Core) AddClause(ms ...z.Lit) {
	clause := make([]z.Lit, len(ms))
	copy(clause, ms)
	c.clauses = append(c.clauses, clause)
	c.scopes = append(c.scopes, len(c.levels))
	for _, m := range ms {
		c.g.Add(m)
	}
	if n := len(c.levels); n > 0 {
		c.g.Add(c.levels[n-1].Not())
	}
	c.g.Add(z.LitNull)
	c.modelOK = false
	c.stats.Clauses++
}

// UserPush opens a user scope.
func (c *Core) UserPush() {
	c.levels = append(c.levels, c.NewVar())
	c.stats.Scopes++
}

// UserPop closes the innermost n user scopes, permanently disabling the
// clauses added inside them.
func (c *Core) UserPop(n int) {
	for ; n > 0 && len(c.levels) > 0; n-- {
		act := c.levels[len(c.levels)-1]
		c.levels = c.levels[:len(c.levels)-1]
		c.g.Add(act.Not())
		c.g.Add(z.LitNull)
	}
	depth := len(c.levels)
	var clauses [][]z.Lit
	var scopes []int
	for i, cl := range c.clauses {
		if c.scopes[i] <= depth {
			clauses = append(clauses, cl)
			scopes = append(scopes, c.scopes[i])
		}
	}
	c.clauses, c.scopes = clauses, scopes
	c.modelOK = false
}

// Level returns the number of open user scopes.
func (c *Core) Level() int { return len(c.levels) }

// PopToBaseLevel undoes any temporary assumption state left by a prior
// check. Assumptions in this engine are consumed per solve, so only the
// per-call caches need clearing.
func (c *Core) PopToBaseLevel() {
	c.lastCore = nil
}

func (c *Core) solve(asms []z.Lit) Result {
	c.g.Assume(asms...)
	if c.limit == nil {
		return Result(c.g.Solve())
	}
	run := c.g.GoSolve()
	for {
		if r := run.Try(pollInterval); r != 0 {
			return Result(r)
		}
		if c.limit.Cancelled() {
			run.Stop()
			return Unknown
		}
	}
}

// assumptions returns asms extended with the activation literals of all
// live scopes.
func (c *Core) assumptions(asms []z.Lit) []z.Lit {
	out := make([]z.Lit, 0, len(asms)+len(c.levels))
	out = append(out, asms...)
	out = append(out, c.levels...)
	return out
}

// Check decides the current clause set under the given assumptions.
//
// When weights is non-nil it must run parallel to asms; the check then
// treats the assumptions as soft and relaxes them core-guided, dropping
// the lightest member of each failure core. The answer is Sat once the
// remaining soft set is satisfiable, and Unsat if the hard clauses
// conflict on their own or the accumulated weight of dropped assumptions
// reaches maxWeight.
func (c *Core) Check(asms []z.Lit, weights []float64, maxWeight float64) Result {
	c.stats.Checks++
	c.modelOK = false
	c.lastCore = nil
	var r Result
	if weights == nil {
		r = c.checkHard(asms)
	} else {
		r = c.checkSoft(asms, weights, maxWeight)
	}
	switch r {
	case Sat:
		c.stats.Sats++
		c.snapshotModel()
	case Unsat:
		c.stats.Unsats++
	default:
		c.stats.Unknowns++
	}
	return r
}

func (c *Core) checkHard(asms []z.Lit) Result {
	r := c.solve(c.assumptions(asms))
	if r == Unsat {
		c.lastCore = c.failed(asms)
	}
	return r
}

func (c *Core) checkSoft(asms []z.Lit, weights []float64, maxWeight float64) Result {
	soft := make([]z.Lit, len(asms))
	copy(soft, asms)
	w := make(map[z.Lit]float64, len(asms))
	for i, m := range asms {
		w[m] = weights[i]
	}
	violated := 0.0
	for {
		r := c.solve(c.assumptions(soft))
		if r != Unsat {
			return r
		}
		core := c.failed(soft)
		if len(core) == 0 {
			// The hard clauses conflict on their own.
			c.lastCore = nil
			return Unsat
		}
		min := 0
		for i := 1; i < len(core); i++ {
			if w[core[i]] < w[core[min]] {
				min = i
			}
		}
		violated += w[core[min]]
		if violated >= maxWeight {
			c.lastCore = core
			return Unsat
		}
		dropped := core[min]
		out := soft[:0]
		for _, m := range soft {
			if m != dropped {
				out = append(out, m)
			}
		}
		soft = out
	}
}

// failed returns the subset of asms gini reports as the failure core,
// with activation literals filtered out.
func (c *Core) failed(asms []z.Lit) []z.Lit {
	why := c.g.Why(nil)
	requested := make(map[z.Lit]bool, len(asms))
	for _, m := range asms {
		requested[m] = true
	}
	var core []z.Lit
	for _, m := range why {
		if requested[m] {
			core = append(core, m)
		}
	}
	return core
}

// Core returns the failed assumptions from the last Unsat check.
func (c *Core) Core() []z.Lit { return c.lastCore }

func (c *Core) snapshotModel() {
	n := int(c.maxVar)
	if cap(c.model) < n+1 {
		c.model = make([]bool, n+1)
	}
	c.model = c.model[:n+1]
	for v := 1; v <= n; v++ {
		c.model[v] = c.g.Value(z.Var(v).Pos())
	}
	c.modelOK = true
}

// ModelIsCurrent reports whether a model from the last check is still
// valid (no clauses added since a Sat answer).
func (c *Core) ModelIsCurrent() bool { return c.modelOK }

// ModelValue returns the last model's value of a literal.
func (c *Core) ModelValue(m z.Lit) bool {
	v := int(m.Var())
	if v >= len(c.model) {
		return false
	}
	if m.IsPos() {
		return c.model[v]
	}
	return !c.model[v]
}

// Statistics returns a snapshot of the core's counters.
func (c *Core) Statistics() Statistics {
	st := c.stats
	st.Vars = int64(c.maxVar)
	return st
}
