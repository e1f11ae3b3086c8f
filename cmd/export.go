package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/service"
)

var (
	exportFormat   string
	exportStatus   string
	exportPriority string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export requests as JSON, CSV, or Markdown",
	Long:  "Export maintenance requests, newest first, optionally filtered by status and priority.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, markdown")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Filter by status (or all)")
	exportCmd.Flags().StringVar(&exportPriority, "priority", "", "Filter by priority (or all)")
	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	svc, err := getService()
	if err != nil {
		return err
	}

	requests, err := svc.List(context.Background(), service.Filter{Status: exportStatus, Priority: exportPriority})
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		if requests == nil {
			requests = []*models.MaintenanceRequest{}
		}
		enc := json.NewEncoder(ui.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(requests)
	case "csv":
		return exportCSV(requests)
	case "markdown", "md":
		return exportMarkdown(requests)
	default:
		return fmt.Errorf("unknown format: %s (use: json, csv, markdown)", exportFormat)
	}
}

func exportCSV(requests []*models.MaintenanceRequest) error {
	w := csv.NewWriter(ui.Out)
	_ = w.Write([]string{"ID", "Room", "Category", "Priority", "Status", "Description", "CreatedBy", "AssignedTo", "Notes", "Created", "Updated", "Resolved"})
	for _, r := range requests {
		resolved := ""
		if r.ResolvedAt != nil {
			resolved = r.ResolvedAt.Format(time.RFC3339)
		}
		_ = w.Write([]string{
			r.ID,
			r.RoomNumber,
			string(r.Category),
			string(r.Priority),
			string(r.Status),
			r.Description,
			r.CreatedBy,
			r.Assignee(),
			r.NotesText(),
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
			resolved,
		})
	}
	w.Flush()
	return w.Error()
}

func exportMarkdown(requests []*models.MaintenanceRequest) error {
	fmt.Fprintln(ui.Out, "# Maintenance Requests")
	fmt.Fprintln(ui.Out)
	fmt.Fprintln(ui.Out, "| Room | Category | Priority | Status | Assigned | Description | Reported |")
	fmt.Fprintln(ui.Out, "|------|----------|----------|--------|----------|-------------|----------|")
	for _, r := range requests {
		fmt.Fprintf(ui.Out, "| %s | %s | %s | %s | %s | %s | %s |\n",
			mdCell(r.RoomNumber), r.Category, r.Priority, r.Status,
			mdCell(r.Assignee()), mdCell(r.Description), r.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

// mdCell escapes pipes and newlines so a value stays inside one table cell.
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
