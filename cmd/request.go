package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/output"
	"github.com/joescharf/hotelops/internal/service"
)

var (
	reqRoom     string
	reqCategory string
	reqPriority string
	reqDesc     string
	reqBy       string
	reqNotes    string
	reqYes      bool

	listStatus   string
	listPriority string
	listCategory string
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Aliases: []string{"req", "r"},
	Short:   "Manage maintenance requests",
	Long:    "Report, list, assign, and resolve maintenance requests for hotel rooms.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestListRun()
	},
}

var requestAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Report a new maintenance request",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestAddRun()
	},
}

var requestListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List requests, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestListRun()
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show request details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestShowRun(args[0])
	},
}

var requestStatusCmd = &cobra.Command{
	Use:   "status <request-id> <status>",
	Short: "Move a request to a new status",
	Long:  "Move a request to pending, in-progress, completed, or cancelled. Any status can follow any other.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestStatusRun(args[0], args[1])
	},
}

var requestAssignCmd = &cobra.Command{
	Use:   "assign <request-id> [technician]",
	Short: "Assign a technician (omit the name to unassign)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tech string
		if len(args) > 1 {
			tech = args[1]
		}
		return requestAssignRun(args[0], tech)
	},
}

var requestNoteCmd = &cobra.Command{
	Use:   "note <request-id> [text]",
	Short: "Replace the notes on a request (omit the text to clear)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		if len(args) > 1 {
			text = args[1]
		}
		return requestNoteRun(args[0], text)
	},
}

var requestDeleteCmd = &cobra.Command{
	Use:     "delete <request-id>",
	Aliases: []string{"rm"},
	Short:   "Permanently delete a request",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestDeleteRun(args[0])
	},
}

var requestSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest a category and priority for a description",
	Long:  "Suggest triage for a free-text report. Uses Claude when an Anthropic API key is configured, keyword heuristics otherwise.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return requestSuggestRun()
	},
}

func init() {
	requestAddCmd.Flags().StringVar(&reqRoom, "room", "", "Room number (required)")
	requestAddCmd.Flags().StringVar(&reqCategory, "category", "", "Category: "+strings.Join(models.CategoryNames(), ", "))
	requestAddCmd.Flags().StringVar(&reqPriority, "priority", "medium", "Priority: "+strings.Join(models.PriorityNames(), ", "))
	requestAddCmd.Flags().StringVar(&reqDesc, "desc", "", "Description of the problem (required)")
	requestAddCmd.Flags().StringVar(&reqBy, "by", "", "Reporter (default from requests.default_reporter)")
	requestAddCmd.Flags().StringVar(&reqNotes, "notes", "", "Optional notes")
	_ = requestAddCmd.MarkFlagRequired("room")
	_ = requestAddCmd.MarkFlagRequired("category")
	_ = requestAddCmd.MarkFlagRequired("desc")

	requestListCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (or all)")
	requestListCmd.Flags().StringVar(&listPriority, "priority", "", "Filter by priority (or all)")
	requestListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by category (or all)")

	requestDeleteCmd.Flags().BoolVarP(&reqYes, "yes", "y", false, "Do not print the deleted request")

	requestSuggestCmd.Flags().StringVar(&reqDesc, "desc", "", "Description of the problem (required)")
	requestSuggestCmd.Flags().StringVar(&reqRoom, "room", "", "Room number")
	_ = requestSuggestCmd.MarkFlagRequired("desc")

	requestCmd.AddCommand(requestAddCmd)
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestStatusCmd)
	requestCmd.AddCommand(requestAssignCmd)
	requestCmd.AddCommand(requestNoteCmd)
	requestCmd.AddCommand(requestDeleteCmd)
	requestCmd.AddCommand(requestSuggestCmd)
	rootCmd.AddCommand(requestCmd)
}

func requestAddRun() error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	in := service.CreateInput{
		RoomNumber:  reqRoom,
		Category:    reqCategory,
		Priority:    reqPriority,
		Description: reqDesc,
		CreatedBy:   reqBy,
		Notes:       reqNotes,
	}

	if dryRun {
		if err := in.Validate(); err != nil {
			return err
		}
		ui.DryRunMsg("Would report room %s: %s [%s/%s]", in.RoomNumber, in.Description, in.Category, in.Priority)
		return nil
	}

	r, err := svc.Create(ctx, in)
	if err != nil {
		return err
	}

	ui.Success("Created request %s for room %s: %s", output.Cyan(shortID(r.ID)), r.RoomNumber, r.Description)
	return nil
}

func requestListRun() error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	requests, err := svc.List(ctx, service.Filter{
		Status:   listStatus,
		Priority: listPriority,
		Category: listCategory,
	})
	if err != nil {
		return err
	}

	if len(requests) == 0 {
		ui.Info("No requests found.")
		return nil
	}

	now := time.Now()
	table := ui.Table([]string{"ID", "Room", "Category", "Priority", "Status", "Assigned", "Description", "Reported"})
	for _, r := range requests {
		_ = table.Append([]string{
			shortID(r.ID),
			r.RoomNumber,
			string(r.Category),
			output.PriorityColor(string(r.Priority)),
			output.StatusColor(string(r.Status)),
			r.Assignee(),
			truncate(r.Description, 48),
			output.Since(r.CreatedAt, now),
		})
	}
	_ = table.Render()
	return nil
}

func requestShowRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}

	printRequest(r)
	return nil
}

func printRequest(r *models.MaintenanceRequest) {
	fmt.Fprintf(ui.Out, "%s  Room %s: %s\n", output.Cyan(shortID(r.ID)), r.RoomNumber, r.Description)
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(string(r.Status)))
	fmt.Fprintf(ui.Out, "  Priority:   %s\n", output.PriorityColor(string(r.Priority)))
	fmt.Fprintf(ui.Out, "  Category:   %s\n", r.Category)
	fmt.Fprintf(ui.Out, "  Reported by: %s\n", r.CreatedBy)
	if r.AssignedTo != nil {
		fmt.Fprintf(ui.Out, "  Assigned:   %s\n", *r.AssignedTo)
	}
	if r.Notes != nil {
		fmt.Fprintf(ui.Out, "  Notes:      %s\n", *r.Notes)
	}
	fmt.Fprintf(ui.Out, "  Created:    %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(ui.Out, "  Updated:    %s\n", r.UpdatedAt.Format(time.RFC3339))
	if r.ResolvedAt != nil {
		fmt.Fprintf(ui.Out, "  Resolved:   %s\n", r.ResolvedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", r.ID)
}

func requestStatusRun(id, status string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}

	next := models.ParseStatus(status)
	if dryRun {
		ui.DryRunMsg("Would move %s from %s to %s", shortID(r.ID), r.Status, next)
		return nil
	}

	updated, err := svc.UpdateStatus(ctx, r.ID, next)
	if err != nil {
		return err
	}
	ui.Success("Request %s: %s -> %s", output.Cyan(shortID(updated.ID)), r.Status, output.StatusColor(string(updated.Status)))
	return nil
}

func requestAssignRun(id, technician string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}

	technician = strings.TrimSpace(technician)
	if dryRun {
		if technician == "" {
			ui.DryRunMsg("Would unassign %s", shortID(r.ID))
		} else {
			ui.DryRunMsg("Would assign %s to %s", shortID(r.ID), technician)
		}
		return nil
	}

	updated, err := svc.Assign(ctx, r.ID, technician)
	if err != nil {
		return err
	}
	if updated.AssignedTo == nil {
		ui.Success("Request %s unassigned", output.Cyan(shortID(updated.ID)))
	} else {
		ui.Success("Request %s assigned to %s", output.Cyan(shortID(updated.ID)), *updated.AssignedTo)
	}
	return nil
}

func requestNoteRun(id, text string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would set notes on %s", shortID(r.ID))
		return nil
	}

	updated, err := svc.SetNotes(ctx, r.ID, text)
	if err != nil {
		return err
	}
	if updated.Notes == nil {
		ui.Success("Notes cleared on %s", output.Cyan(shortID(updated.ID)))
	} else {
		ui.Success("Notes updated on %s", output.Cyan(shortID(updated.ID)))
	}
	return nil
}

func requestDeleteRun(id string) error {
	svc, err := getService()
	if err != nil {
		return err
	}
	ctx := context.Background()

	r, err := svc.Resolve(ctx, id)
	if err != nil {
		return err
	}

	if dryRun {
		ui.DryRunMsg("Would delete request %s (room %s)", shortID(r.ID), r.RoomNumber)
		return nil
	}

	if err := svc.Delete(ctx, r.ID); err != nil {
		return err
	}
	if !reqYes {
		printRequest(r)
	}
	ui.Success("Deleted request %s", output.Cyan(shortID(r.ID)))
	return nil
}

func requestSuggestRun() error {
	desc := strings.TrimSpace(reqDesc)
	if desc == "" {
		return &service.ValidationError{Field: "description", Message: "is required"}
	}

	t, source := newTriager()
	ui.VerboseLog("Asking %s for a triage suggestion", output.Cyan(source))
	s, err := t.SuggestTriage(context.Background(), strings.TrimSpace(reqRoom), desc)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "  Category:  %s\n", s.Category)
	fmt.Fprintf(ui.Out, "  Priority:  %s\n", output.PriorityColor(string(s.Priority)))
	if s.Reason != "" {
		fmt.Fprintf(ui.Out, "  Reason:    %s\n", s.Reason)
	}
	fmt.Fprintf(ui.Out, "  Source:    %s\n", source)
	return nil
}

// shortID returns a truncated ULID for display (first 12 chars).
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
