package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/output"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request counts and breakdowns",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Print the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}

func statsRun() error {
	agg, err := getAggregator()
	if err != nil {
		return err
	}

	summary, err := agg.Summarize(context.Background())
	if err != nil {
		return err
	}

	if statsJSON {
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Fprintf(ui.Out, "Total:        %d\n", summary.Total)
	fmt.Fprintf(ui.Out, "Pending:      %s\n", output.Yellow(strconv.Itoa(summary.Pending)))
	fmt.Fprintf(ui.Out, "In progress:  %s\n", output.Cyan(strconv.Itoa(summary.InProgress)))
	fmt.Fprintf(ui.Out, "Completed:    %s\n", output.Green(strconv.Itoa(summary.Completed)))
	if summary.Cancelled > 0 {
		fmt.Fprintf(ui.Out, "Cancelled:    %d\n", summary.Cancelled)
	}

	if summary.Total == 0 {
		return nil
	}

	fmt.Fprintln(ui.Out)
	table := ui.Table([]string{"Priority", "Count"})
	for _, p := range models.Priorities {
		if n, ok := summary.ByPriority[string(p)]; ok {
			_ = table.Append([]string{output.PriorityColor(string(p)), strconv.Itoa(n)})
		}
	}
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	table = ui.Table([]string{"Category", "Count"})
	for _, c := range models.Categories {
		if n, ok := summary.ByCategory[string(c)]; ok {
			_ = table.Append([]string{string(c), strconv.Itoa(n)})
		}
	}
	_ = table.Render()
	return nil
}
