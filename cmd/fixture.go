package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"steadybench/internal/fixture"
)

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Resize the JSON document used by the document workloads",
}

var fixtureGrowCmd = &cobra.Command{
	Use:   "grow [repetitions]",
	Short: "Append the document's array to itself (default once)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reps, err := countArg(args, 0, "repetitions", 1)
		if err != nil {
			return err
		}

		return withSession(func(s *session) error {
			path := s.settings.Document
			n, err := fixture.Grow(path, reps)
			if err != nil {
				return err
			}

			s.logger().Info("fixture grown", zap.String("path", path), zap.Int("repetitions", reps), zap.Int("items", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%s now holds %d items\n", path, n)
			return nil
		})
	},
}

var fixtureHalveCmd = &cobra.Command{
	Use:   "halve",
	Short: "Keep the second half of the document as newline-delimited JSON",
	Long: `Drops the first half of the document's array and rewrites the rest one
item per line. The result is no longer a single JSON value, so parse runs
against it report malformed input.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(s *session) error {
			path := s.settings.Document
			n, err := fixture.Halve(path)
			if err != nil {
				return err
			}

			s.logger().Info("fixture halved", zap.String("path", path), zap.Int("items", n))
			fmt.Fprintf(cmd.OutOrStdout(), "%s now holds %d items, one per line\n", path, n)
			return nil
		})
	},
}

func init() {
	fixtureCmd.AddCommand(fixtureGrowCmd, fixtureHalveCmd)
}
