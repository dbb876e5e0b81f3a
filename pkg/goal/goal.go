// Package goal provides the mutable assertion bag handed to tactics.
//
// A goal records whether rewrites must preserve enough information to
// reconstruct models and unsat cores. Proof tracking does not exist in
// this solver stack, so there is deliberately no flag for it.
package goal

import "github.com/satkit/satkit/pkg/terms"

// Goal is an ordered bag of Boolean assertions, each optionally tagged
// with a leaf dependency term that rides through preprocessing.
type Goal struct {
	assertions []*terms.Term
	deps       []*terms.Term
	models     bool
	cores      bool
}

// New returns an empty goal with the given tracking flags.
func New(models, cores bool) *Goal {
	return &Goal{models: models, cores: cores}
}

// Assert appends an untagged assertion.
func (g *Goal) Assert(t *terms.Term) {
	g.AssertWithDep(t, nil)
}

// AssertWithDep appends an assertion tagged with a leaf dependency.
func (g *Goal) AssertWithDep(t, dep *terms.Term) {
	g.assertions = append(g.assertions, t)
	g.deps = append(g.deps, dep)
}

// Len returns the number of assertions.
func (g *Goal) Len() int { return len(g.assertions) }

// Assertion returns the i-th assertion.
func (g *Goal) Assertion(i int) *terms.Term { return g.assertions[i] }

// Dep returns the dependency of the i-th assertion, or nil.
func (g *Goal) Dep(i int) *terms.Term { return g.deps[i] }

// Update replaces the i-th assertion in place, preserving its dependency.
func (g *Goal) Update(i int, t *terms.Term) {
	g.assertions[i] = t
}

// Remove drops the i-th assertion and its dependency.
func (g *Goal) Remove(i int) {
	g.assertions = append(g.assertions[:i], g.assertions[i+1:]...)
	g.deps = append(g.deps[:i], g.deps[i+1:]...)
}

// ModelsEnabled reports whether rewrites must stay model-convertible.
func (g *Goal) ModelsEnabled() bool { return g.models }

// CoresEnabled reports whether dependencies must be preserved.
func (g *Goal) CoresEnabled() bool { return g.cores }

// Clone returns a goal with the same flags and a copied assertion list.
func (g *Goal) Clone() *Goal {
	out := New(g.models, g.cores)
	out.assertions = append(out.assertions, g.assertions...)
	out.deps = append(out.deps, g.deps...)
	return out
}
