package cmd

import (
	"github.com/spf13/cobra"

	"steadybench/internal/runner"
)

var suiteCmd = &cobra.Command{
	Use:   "suite [cpu] [io] [memory]",
	Short: "Run the CPU, file I/O and memory suite",
	Long: `Runs fibonacci-recursive cpu times, io-write and io-read io times each,
and alloc memory times (defaults 20, 10 and 20). The io workloads always remove
their scratch file when they finish.`,
	Args: cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuN, err := countArg(args, 0, "cpu", 20)
		if err != nil {
			return err
		}
		ioN, err := countArg(args, 1, "io", 10)
		if err != nil {
			return err
		}
		memN, err := countArg(args, 2, "memory", 20)
		if err != nil {
			return err
		}
		useTUI, _ := cmd.Flags().GetBool("tui")

		return withSession(func(s *session) error {
			plan := []struct {
				name string
				n    int
			}{
				{"fibonacci-recursive", cpuN},
				{"io-write", ioN},
				{"io-read", ioN},
				{"alloc", memN},
			}

			steps := make([]runner.Step, 0, len(plan))
			for _, p := range plan {
				w, err := s.workload(p.name)
				if err != nil {
					return err
				}
				steps = append(steps, runner.Step{Workload: w, Policy: runner.FixedIterations(p.n)})
			}

			results, runErr := s.execute(cmd, "Benchmark suite", steps, useTUI)
			return s.finish(cmd, args, results, runErr)
		})
	},
}

func init() {
	addReportFlags(suiteCmd)
	suiteCmd.Flags().Bool("tui", false, "show the interactive progress view")
}
