package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"steadybench/internal/runner"
)

const defaultRunDuration = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run [duration]",
	Short: "Run cpu-mix for a duration, then read the document once",
	Long: `Runs the cpu-mix workload for the given duration (seconds, or a Go
duration such as 1m30s; default 10s), then times a single read of the JSON
document. The totals are printed as cpu_iterations= and memory_duration=.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := defaultRunDuration
		if len(args) == 1 {
			var err error
			if d, err = durationArg(args[0]); err != nil {
				return err
			}
		}

		return withSession(func(s *session) error {
			cpu, err := s.workload("cpu-mix")
			if err != nil {
				return err
			}
			doc, err := s.workload("document-read")
			if err != nil {
				return err
			}
			steps := []runner.Step{
				{Workload: cpu, Policy: runner.FixedDuration(d)},
				{Workload: doc, Policy: runner.FixedIterations(1)},
			}

			started := time.Now()
			s.logger().Info("benchmark started", zap.Time("at", started))

			results, runErr := s.execute(cmd, "CPU and memory benchmark", steps, false)

			total := time.Since(started)
			s.logger().Info("benchmark completed", zap.Duration("total", total))

			if err := s.finish(cmd, args, results, runErr); err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total benchmark time: %.2f seconds\n", total.Seconds())
			fmt.Fprintf(out, "cpu_iterations=%d\n", results[0].Iterations)
			fmt.Fprintf(out, "memory_duration=%g\n", results[1].ElapsedSeconds())
			return nil
		})
	},
}

func init() {
	addReportFlags(runCmd)
}
