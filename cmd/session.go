package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"steadybench/internal/cli"
	"steadybench/internal/config"
	"steadybench/internal/logging"
	"steadybench/internal/metrics"
	"steadybench/internal/report"
	"steadybench/internal/runner"
	"steadybench/internal/storage"
	"steadybench/internal/tui"
	"steadybench/internal/workload"
)

// session holds what one command needs: resolved settings, the run log and
// the metrics registry. close flushes all of it.
type session struct {
	settings config.Settings
	sink     *logging.Sink
	registry *prometheus.Registry
}

func openSession() (*session, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	sink, err := logging.Open(logging.Config{
		Dir:     settings.LogDir,
		File:    settings.LogFile,
		Level:   settings.LogLevel,
		Console: settings.Verbose,
	})
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics.InitMetrics(registry)

	return &session{settings: settings, sink: sink, registry: registry}, nil
}

// withSession opens a session, runs fn and closes the session, keeping the
// first error.
func withSession(fn func(s *session) error) (err error) {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()
	return fn(s)
}

func (s *session) logger() *zap.Logger {
	return s.sink.Logger
}

func (s *session) close() error {
	var errs []error
	if path := s.settings.MetricsFile; path != "" {
		if err := metrics.WriteTextfile(path, s.registry); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, s.sink.Close())
	return errors.Join(errs...)
}

func (s *session) workload(name string) (workload.Workload, error) {
	return workload.New(name, s.settings.WorkloadOptions())
}

func (s *session) newRunner() *runner.Runner {
	return runner.NewRunner(runner.Config{OnMalformed: s.settings.MalformedPolicy()}, s.logger(), nil)
}

// execute runs steps with either the text progress line or the TUI. With
// JSON output the progress goes to stderr so stdout stays parseable.
func (s *session) execute(cmd *cobra.Command, title string, steps []runner.Step, useTUI bool) ([]runner.BenchmarkResult, error) {
	r := s.newRunner()
	if useTUI {
		return tui.Run(cmd.Context(), title, r, steps)
	}

	progress := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		progress = cmd.ErrOrStderr()
	}
	return cli.Start(cmd.Context(), progress, r, title, steps)
}

// finish reports, exports and records whatever completed, then returns
// runErr.
func (s *session) finish(cmd *cobra.Command, args []string, results []runner.BenchmarkResult, runErr error) error {
	if len(results) == 0 {
		return runErr
	}

	out := cmd.OutOrStdout()
	errs := []error{runErr}
	errs = append(errs, writeReport(cmd, out, results))

	if !s.settings.NoHistory {
		errs = append(errs, s.record(commandLine(cmd, args), results))
	}
	return errors.Join(errs...)
}

func writeReport(cmd *cobra.Command, out io.Writer, results []runner.BenchmarkResult) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	prefix, _ := cmd.Flags().GetString("out")

	var err error
	if asJSON {
		err = report.GenerateJSON(out, results)
	} else {
		err = report.Generate(out, results)
	}
	if err != nil {
		return err
	}

	if prefix != "" {
		if err := report.ExportCSV(results, prefix+".csv"); err != nil {
			return err
		}
		if err := report.ExportJSON(results, prefix+".json"); err != nil {
			return err
		}
		if !asJSON {
			fmt.Fprintf(out, "💾 Reports saved to %s.{csv,json}\n", prefix)
		}
	}
	return nil
}

func (s *session) record(command string, results []runner.BenchmarkResult) error {
	store, err := storage.Open(s.settings.History)
	if err != nil {
		return err
	}
	defer store.Close()

	item, err := storage.NewHistoryItem(command, results)
	if err != nil {
		return err
	}
	if err := store.Save(item); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	s.logger().Debug("run recorded", zap.String("id", item.ID), zap.String("command", command))
	return nil
}

func commandLine(cmd *cobra.Command, args []string) string {
	return strings.Join(append([]string{cmd.Name()}, args...), " ")
}

// addReportFlags adds the output flags shared by the commands that run
// workloads.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "print results as JSON instead of a table")
	cmd.Flags().StringP("out", "o", "", "also write results to <prefix>.csv and <prefix>.json")
}
