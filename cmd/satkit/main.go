package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "satkit",
		Short: "satkit",
		Long:  `An incremental SAT-backed solver for CNF and weighted CNF problems.`,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newWCNFCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
