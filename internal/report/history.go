package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"steadybench/internal/storage"
	"steadybench/internal/tui/styles"
)

// GenerateHistory writes one row per stored run, newest first as given.
func GenerateHistory(w io.Writer, items []storage.HistoryItem) error {
	if len(items) == 0 {
		fmt.Fprintln(w, styles.Subtle.Render("No runs recorded yet."))
		return nil
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ID,
			item.Timestamp.Format(time.RFC822),
			item.Command,
			strconv.Itoa(len(item.Results)),
			strconv.Itoa(item.TotalIterations()),
			HumanDuration(item.TotalElapsed().Seconds()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.ColorBorder)).
		Headers("ID", "Time", "Command", "Steps", "Iterations", "Elapsed").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.Active.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	fmt.Fprintln(w, styles.Title.Render("🕘 Run History"))
	fmt.Fprintln(w, t.Render())
	return nil
}
