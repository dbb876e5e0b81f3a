package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/satkit/satkit/pkg/satcore"
	"github.com/satkit/satkit/pkg/solver"
	"github.com/satkit/satkit/pkg/terms"
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Decide a DIMACS CNF problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			m := terms.NewManager()
			clauses, err := parseDimacs(m, f)
			if err != nil {
				return err
			}
			log.WithField("clauses", len(clauses)).Debug("parsed problem")

			s := solver.New(m)
			for _, clause := range clauses {
				s.Assert(clause)
			}
			r, err := s.CheckSat()
			if err != nil {
				return err
			}
			switch r {
			case satcore.Sat:
				fmt.Println("s SATISFIABLE")
				md, err := s.Model()
				if err != nil {
					return err
				}
				fmt.Println(modelLine(md))
			case satcore.Unsat:
				fmt.Println("s UNSATISFIABLE")
			default:
				fmt.Println("s UNKNOWN")
				fmt.Println("c", s.ReasonUnknown())
			}
			return nil
		},
	}
	return cmd
}

// modelLine renders a model in the DIMACS "v" convention, ordered by
// variable index.
func modelLine(md *terms.Model) string {
	type binding struct {
		idx int
		on  bool
	}
	var bs []binding
	for _, d := range md.Decls() {
		idx, err := strconv.Atoi(strings.TrimPrefix(d.Name(), "x"))
		if err != nil {
			continue
		}
		v := md.Value(d)
		bs = append(bs, binding{idx: idx, on: v != nil && v.Op() == terms.OpTrue})
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].idx < bs[j].idx })
	var sb strings.Builder
	sb.WriteString("v")
	for _, b := range bs {
		if b.on {
			fmt.Fprintf(&sb, " %d", b.idx)
		} else {
			fmt.Fprintf(&sb, " -%d", b.idx)
		}
	}
	sb.WriteString(" 0")
	return sb.String()
}
