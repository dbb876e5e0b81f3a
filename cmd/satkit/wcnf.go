package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/satkit/satkit/pkg/solver"
	"github.com/satkit/satkit/pkg/terms"
)

func newWCNFCmd() *cobra.Command {
	var soft []string
	cmd := &cobra.Command{
		Use:   "wcnf FILE",
		Short: "Emit a DIMACS CNF problem plus soft literals in weighted-CNF form",
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
			asms, weights, err := parseSoft(m, soft)
			if err != nil {
				return err
			}

			s := solver.New(m)
			for _, clause := range clauses {
				s.Assert(clause)
			}
			return s.DisplayWeighted(os.Stdout, asms, weights)
		},
	}
	cmd.Flags().StringArrayVar(&soft, "soft", nil, "soft literal as lit=weight; repeatable")
	return cmd
}
