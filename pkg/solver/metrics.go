package solver

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes solver statistics as Prometheus metrics. Register it
// against any registry; it reads counters at scrape time and holds no
// state of its own.
type Collector struct {
	s *Solver

	checks     *prometheus.Desc
	sats       *prometheus.Desc
	unsats     *prometheus.Desc
	unknowns   *prometheus.Desc
	clauses    *prometheus.Desc
	vars       *prometheus.Desc
	atoms      *prometheus.Desc
	assertions *prometheus.Desc
	scopeLevel *prometheus.Desc
}

// NewCollector returns a collector over s.
func NewCollector(s *Solver) *Collector {
	return &Collector{
		s:          s,
		checks:     prometheus.NewDesc("satkit_checks_total", "Number of check-sat calls.", nil, nil),
		sats:       prometheus.NewDesc("satkit_sat_total", "Number of sat answers.", nil, nil),
		unsats:     prometheus.NewDesc("satkit_unsat_total", "Number of unsat answers.", nil, nil),
		unknowns:   prometheus.NewDesc("satkit_unknown_total", "Number of unknown answers.", nil, nil),
		clauses:    prometheus.NewDesc("satkit_clauses_total", "Number of clauses taught to the SAT core.", nil, nil),
		vars:       prometheus.NewDesc("satkit_variables", "Number of allocated SAT variables.", nil, nil),
		atoms:      prometheus.NewDesc("satkit_atoms", "Number of live atom map entries.", nil, nil),
		assertions: prometheus.NewDesc("satkit_assertions", "Number of pending assertions.", nil, nil),
		scopeLevel: prometheus.NewDesc("satkit_scope_level", "Current scope depth.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.checks
	ch <- c.sats
	ch <- c.unsats
	ch <- c.unknowns
	ch <- c.clauses
	ch <- c.vars
	ch <- c.atoms
	ch <- c.assertions
	ch <- c.scopeLevel
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.s.CollectStatistics()
	ch <- prometheus.MustNewConstMetric(c.checks, prometheus.CounterValue, float64(st.Sat.Checks))
	ch <- prometheus.MustNewConstMetric(c.sats, prometheus.CounterValue, float64(st.Sat.Sats))
	ch <- prometheus.MustNewConstMetric(c.unsats, prometheus.CounterValue, float64(st.Sat.Unsats))
	ch <- prometheus.MustNewConstMetric(c.unknowns, prometheus.CounterValue, float64(st.Sat.Unknowns))
	ch <- prometheus.MustNewConstMetric(c.clauses, prometheus.CounterValue, float64(st.Sat.Clauses))
	ch <- prometheus.MustNewConstMetric(c.vars, prometheus.GaugeValue, float64(st.Sat.Vars))
	ch <- prometheus.MustNewConstMetric(c.atoms, prometheus.GaugeValue, float64(st.Atoms))
	ch <- prometheus.MustNewConstMetric(c.assertions, prometheus.GaugeValue, float64(st.Assertions))
	ch <- prometheus.MustNewConstMetric(c.scopeLevel, prometheus.GaugeValue, float64(st.ScopeLevel))
}
