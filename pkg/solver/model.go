package solver

import (
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/satkit/satkit/pkg/tactic"
	"github.com/satkit/satkit/pkg/terms"
)

// Model lifts the SAT core's current assignment through the bit-blast
// memo and any recorded model converters, returning a model over the
// original symbols. It returns nil without error when the SAT core has
// no current model. The result is cached until the next check.
func (s *Solver) Model() (*terms.Model, error) {
	if s.model != nil {
		return s.model, nil
	}
	if err := s.extractModel(); err != nil {
		return nil, err
	}
	return s.model, nil
}

func (s *Solver) extractModel() error {
	if !s.sat.ModelIsCurrent() {
		s.model = nil
		return nil
	}
	md := terms.NewModel(s.m)
	s.amap.Range(func(t *terms.Term, m z.Lit) bool {
		if !t.IsLeaf() || !t.Sort().IsBool() {
			return true
		}
		if s.sat.ModelValue(m) {
			md.Set(t.Decl(), s.m.True())
		} else {
			md.Set(t.Decl(), s.m.False())
		}
		return true
	})

	mc := s.mc
	if len(s.bb.Const2Bits()) > 0 {
		mc = tactic.Concat(mc, tactic.NewBitBlastModelConverter(s.m, s.bb.Const2Bits()))
	}
	if mc != nil {
		if err := mc.ApplyTo(md); err != nil {
			return errors.Wrap(err, "solver: model conversion failed")
		}
	}
	s.model = md

	if s.optimizeModel || s.log.IsLevelEnabled(logrus.DebugLevel) {
		for _, f := range s.fmls {
			ok, err := md.EvalBool(f)
			if err != nil {
				return errors.Wrapf(err, "solver: evaluating %s under lifted model", f)
			}
			if !ok {
				s.log.WithField("formula", f.String()).Error("lifted model does not satisfy assertion")
				return errors.Errorf("solver: lifted model does not satisfy %s", f)
			}
		}
	}
	return nil
}
