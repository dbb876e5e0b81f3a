package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/satkit/satkit/pkg/terms"
)

// parseDimacs reads a DIMACS CNF problem and returns one Boolean term
// per clause. Variable i becomes the constant "x<i>".
func parseDimacs(m *terms.Manager, r io.Reader) ([]*terms.Term, error) {
	var clauses []*terms.Term
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") || strings.HasPrefix(line, "p") {
			continue
		}
		var lits []*terms.Term
		for _, field := range strings.Fields(line) {
			v, err := strconv.Atoi(field)
			if err != nil {
				return nil, errors.Wrapf(err, "bad literal %q", field)
			}
			if v == 0 {
				break
			}
			lit := m.Bool(fmt.Sprintf("x%d", abs(v)))
			if v < 0 {
				lit = m.Not(lit)
			}
			lits = append(lits, lit)
		}
		if len(lits) > 0 {
			clauses = append(clauses, m.Or(lits...))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return clauses, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// parseSoft parses --soft entries of the form lit=weight, e.g. "3=2.0"
// or "-1=5".
func parseSoft(m *terms.Manager, specs []string) ([]*terms.Term, []float64, error) {
	var asms []*terms.Term
	var weights []float64
	for _, spec := range specs {
		parts := strings.SplitN(spec, "=", 2)
		if len(parts) != 2 {
			return nil, nil, errors.Errorf("bad soft literal %q; want lit=weight", spec)
		}
		v, err := strconv.Atoi(parts[0])
		if err != nil || v == 0 {
			return nil, nil, errors.Errorf("bad soft literal %q", parts[0])
		}
		w, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bad weight %q", parts[1])
		}
		lit := m.Bool(fmt.Sprintf("x%d", abs(v)))
		if v < 0 {
			lit = m.Not(lit)
		}
		asms = append(asms, lit)
		weights = append(weights, w)
	}
	return asms, weights, nil
}
