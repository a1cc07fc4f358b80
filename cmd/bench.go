package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"steadybench/internal/runner"
	"steadybench/internal/workload"
)

var benchCmd = &cobra.Command{
	Use:   "bench <workload> [iterations]",
	Short: "Run any single workload",
	Long: fmt.Sprintf(`Runs one workload from the catalog, either a number of times (default 10)
or for --duration.

Workloads: %s`, strings.Join(workload.Names(), ", ")),
	Args: cobra.RangeArgs(1, 2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return workload.Names(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := benchPolicy(cmd, args)
		if err != nil {
			return err
		}
		useTUI, _ := cmd.Flags().GetBool("tui")

		return withSession(func(s *session) error {
			w, err := s.workload(args[0])
			if err != nil {
				return err
			}

			steps := []runner.Step{{Workload: w, Policy: policy}}
			results, runErr := s.execute(cmd, "Benchmark "+w.Name(), steps, useTUI)
			return s.finish(cmd, args, results, runErr)
		})
	},
}

func benchPolicy(cmd *cobra.Command, args []string) (runner.Policy, error) {
	raw, _ := cmd.Flags().GetString("duration")
	if raw == "" {
		n, err := countArg(args, 1, "iterations", 10)
		if err != nil {
			return runner.Policy{}, err
		}
		return runner.FixedIterations(n), nil
	}

	if len(args) > 1 {
		return runner.Policy{}, fmt.Errorf("give either iterations or --duration, not both")
	}
	d, err := durationArg(raw)
	if err != nil {
		return runner.Policy{}, err
	}
	return runner.FixedDuration(d), nil
}

func init() {
	addReportFlags(benchCmd)
	benchCmd.Flags().StringP("duration", "d", "", "run for this long instead of a fixed number of iterations")
	benchCmd.Flags().Bool("tui", false, "show the interactive progress view")
}
