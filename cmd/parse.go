package cmd

import (
	"github.com/spf13/cobra"

	"steadybench/internal/runner"
)

var parseCmd = &cobra.Command{
	Use:   "parse [iterations]",
	Short: "Read and parse the JSON document",
	Long: `Reads and parses the JSON document the given number of times (default 1).
A document that is not valid JSON is logged as malformed input and handled
according to --on-malformed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := countArg(args, 0, "iterations", 1)
		if err != nil {
			return err
		}

		return withSession(func(s *session) error {
			w, err := s.workload("document-parse")
			if err != nil {
				return err
			}

			steps := []runner.Step{{Workload: w, Policy: runner.FixedIterations(n)}}
			results, runErr := s.execute(cmd, "Document parse", steps, false)
			return s.finish(cmd, args, results, runErr)
		})
	},
}

func init() {
	addReportFlags(parseCmd)
}
