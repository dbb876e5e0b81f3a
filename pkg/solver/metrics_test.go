package solver

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satkit/satkit/pkg/terms"
)

func TestCollector(t *testing.T) {
	m := terms.NewManager()
	s := New(m)
	s.Assert(m.Bool("x"))
	_, err := s.CheckSat()
	require.NoError(t, err)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(s)))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	byName := make(map[string]float64)
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				byName[mf.GetName()] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				byName[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}
	assert.Equal(t, 1.0, byName["satkit_checks_total"])
	assert.Equal(t, 1.0, byName["satkit_sat_total"])
	assert.Equal(t, 1.0, byName["satkit_assertions"])
	assert.Greater(t, byName["satkit_clauses_total"], 0.0)
}
