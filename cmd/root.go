package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"steadybench/internal/banner"
	"steadybench/internal/config"
	"steadybench/internal/workload"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "steadybench",
	Short: "steadybench - repeatable workload benchmarks",
	Long: `
steadybench repeats a workload under a stopping policy (a fixed number of
iterations or a fixed duration), times every call and reports the totals.

Every run is logged to benchmark_<go version>.log and stored in the local
run history unless --no-history is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		fmt.Println(banner.GetString())
		cmd.Usage()
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.steadybench.yaml)")
	pf.String("log-dir", "", "directory for the run log (default is the working directory)")
	pf.String("log-level", "debug", "minimum level written to the run log")
	pf.String("document", workload.DefaultDocument, "JSON document read by the document workloads")
	pf.String("scratch", workload.DefaultScratchFile, "scratch file used by the io workloads")
	pf.String("on-malformed", "abort", "what to do on malformed input: abort or skip")
	pf.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	pf.Bool("no-history", false, "do not record the run in the history database")
	pf.Int64("seed", 0, "seed for the random data of sort, cpu-mix and alloc")
	pf.BoolP("verbose", "v", false, "also print warnings and errors from the run log to stderr")

	bindFlags(pf, map[string]string{
		"log-dir":      config.KeyLogDir,
		"log-level":    config.KeyLogLevel,
		"document":     config.KeyDocument,
		"scratch":      config.KeyScratch,
		"on-malformed": config.KeyOnMalformed,
		"metrics-file": config.KeyMetricsFile,
		"no-history":   config.KeyNoHistory,
		"seed":         config.KeySeed,
		"verbose":      config.KeyVerbose,
	})

	rootCmd.AddCommand(runCmd, suiteCmd, parseCmd, benchCmd, fixtureCmd, historyCmd)
}

func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".steadybench")
		}
	}
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: reading config:", err)
		}
	}
}
