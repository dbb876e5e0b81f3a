package solver

// Params carries solver configuration keys. Unknown keys are passed
// through to the SAT core.
type Params map[string]interface{}

// Bool reads a boolean key with a default.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Clone returns a shallow copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ParamDescr documents a recognized parameter.
type ParamDescr struct {
	Name    string
	Default interface{}
	Doc     string
}

// ParamDescrs lists the parameters the solver recognizes.
func (s *Solver) ParamDescrs() []ParamDescr { return ParamDescrs() }

// ParamDescrs lists the parameters solvers recognize. The
// simplification keys are forced to the pinned profile on every update;
// elim_vars is forced false because the incremental translation needs
// stable variable identity across calls.
func ParamDescrs() []ParamDescr {
	return []ParamDescr{
		{Name: "optimize_model", Default: false, Doc: "fully reconstruct models even when not strictly needed"},
		{Name: "elim_vars", Default: false, Doc: "forced false; variable elimination breaks incremental identity"},
		{Name: "som", Default: true, Doc: "simplifier: sum-of-monomials form (fixed)"},
		{Name: "pull_cheap_ite", Default: true, Doc: "simplifier: open cheap Boolean ites (fixed)"},
		{Name: "push_ite_bv", Default: false, Doc: "simplifier: push ites below bit-vector operators (fixed)"},
		{Name: "local_ctx", Default: true, Doc: "simplifier: local context simplification (fixed)"},
		{Name: "local_ctx_limit", Default: uint(10000000), Doc: "simplifier: local context step budget (fixed)"},
		{Name: "flat", Default: true, Doc: "simplifier: flatten nested connectives (fixed)"},
		{Name: "hoist_mul", Default: false, Doc: "simplifier: hoist multiplications (fixed)"},
		{Name: "elim_and", Default: true, Doc: "simplifier: eliminate conjunctions (fixed)"},
	}
}
