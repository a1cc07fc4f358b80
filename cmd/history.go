package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"steadybench/internal/config"
	"steadybench/internal/report"
	"steadybench/internal/storage"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		items, err := store.List(limit)
		if err != nil {
			return err
		}
		return report.GenerateHistory(cmd.OutOrStdout(), items)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the results of one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		item, err := store.Get(args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return report.GenerateJSON(cmd.OutOrStdout(), item.Results)
		}
		return report.Generate(cmd.OutOrStdout(), item.Results)
	},
}

func openHistory() (*storage.Store, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return storage.Open(settings.History)
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "show at most this many runs (0 for all)")
	historyShowCmd.Flags().Bool("json", false, "print results as JSON instead of a table")
	historyCmd.AddCommand(historyShowCmd)
}
