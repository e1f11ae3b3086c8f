package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/hotelops/internal/models"
	"github.com/joescharf/hotelops/internal/service"
	"github.com/joescharf/hotelops/internal/stats"
)

// Server exposes the request service and statistics as MCP tools.
type Server struct {
	svc     *service.Service
	stats   *stats.Aggregator
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(svc *service.Service, agg *stats.Aggregator, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{svc: svc, stats: agg, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("hotelops", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.listRequestsTool())
	srv.AddTool(s.getRequestTool())
	srv.AddTool(s.createRequestTool())
	srv.AddTool(s.updateRequestTool())
	srv.AddTool(s.deleteRequestTool())
	srv.AddTool(s.statsTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// hotelops_list_requests
func (s *Server) listRequestsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_list_requests",
		mcp.WithDescription("List maintenance requests, newest first. Returns a JSON array."),
		mcp.WithString("status", mcp.Description("Filter by status: pending, in-progress, completed, cancelled, or all")),
		mcp.WithString("priority", mcp.Description("Filter by priority: low, medium, high, urgent, or all")),
		mcp.WithString("category", mcp.Description("Filter by category: "+strings.Join(models.CategoryNames(), ", ")+", or all")),
	)
	return tool, s.handleListRequests
}

func (s *Server) handleListRequests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	requests, err := s.svc.List(ctx, service.Filter{
		Status:   request.GetString("status", ""),
		Priority: request.GetString("priority", ""),
		Category: request.GetString("category", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list requests: %v", err)), nil
	}
	if requests == nil {
		requests = []*models.MaintenanceRequest{}
	}
	return jsonResult(requests)
}

// hotelops_get_request
func (s *Server) getRequestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_get_request",
		mcp.WithDescription("Get a single maintenance request by ID or unique ID prefix."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Request ID (full ULID or unique prefix)")),
	)
	return tool, s.handleGetRequest
}

func (s *Server) handleGetRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	r, err := s.svc.Resolve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(r)
}

// hotelops_create_request
func (s *Server) createRequestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_create_request",
		mcp.WithDescription("Report a new maintenance request. It starts as pending and unassigned. Returns the created request as JSON."),
		mcp.WithString("room_number", mcp.Required(), mcp.Description("Room number, e.g. 305")),
		mcp.WithString("category", mcp.Required(), mcp.Description("One of: "+strings.Join(models.CategoryNames(), ", "))),
		mcp.WithString("priority", mcp.Required(), mcp.Description("One of: "+strings.Join(models.PriorityNames(), ", "))),
		mcp.WithString("description", mcp.Required(), mcp.Description("What is wrong")),
		mcp.WithString("created_by", mcp.Description("Who reported it (defaults to the configured reporter)")),
		mcp.WithString("notes", mcp.Description("Optional free-form notes")),
	)
	return tool, s.handleCreateRequest
}

func (s *Server) handleCreateRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.svc.Create(ctx, service.CreateInput{
		RoomNumber:  request.GetString("room_number", ""),
		Category:    request.GetString("category", ""),
		Priority:    request.GetString("priority", ""),
		Description: request.GetString("description", ""),
		CreatedBy:   request.GetString("created_by", ""),
		Notes:       request.GetString("notes", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
	}
	return jsonResult(r)
}

// hotelops_update_request
func (s *Server) updateRequestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_update_request",
		mcp.WithDescription("Update status, assignee, or notes of a request. Provide at least one field. An empty assigned_to unassigns; empty notes clears them. Returns the updated request as JSON."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Request ID (full ULID or unique prefix)")),
		mcp.WithString("status", mcp.Description("New status: "+strings.Join(models.StatusNames(), ", "))),
		mcp.WithString("assigned_to", mcp.Description("Technician name, or empty to unassign")),
		mcp.WithString("notes", mcp.Description("Replacement notes, or empty to clear")),
	)
	return tool, s.handleUpdateRequest
}

func (s *Server) handleUpdateRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	existing, err := s.svc.Resolve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	var patch service.Patch
	if _, ok := args["status"]; ok {
		st := models.Status(request.GetString("status", ""))
		patch.Status = &st
	}
	if _, ok := args["assigned_to"]; ok {
		tech := request.GetString("assigned_to", "")
		patch.AssignedTo = &tech
	}
	if _, ok := args["notes"]; ok {
		notes := request.GetString("notes", "")
		patch.Notes = &notes
	}

	r, err := s.svc.Update(ctx, existing.ID, patch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update request: %v", err)), nil
	}
	return jsonResult(r)
}

// hotelops_delete_request
func (s *Server) deleteRequestTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_delete_request",
		mcp.WithDescription("Permanently delete a maintenance request."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Request ID (full ULID or unique prefix)")),
	)
	return tool, s.handleDeleteRequest
}

func (s *Server) handleDeleteRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	existing, err := s.svc.Resolve(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, existing.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete request: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted request %s (room %s)", existing.ID, existing.RoomNumber)), nil
}

// hotelops_stats
func (s *Server) statsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("hotelops_stats",
		mcp.WithDescription("Summary counts of maintenance requests: total, per status, and breakdowns by priority and category. Values with no requests are omitted from the breakdowns."),
	)
	return tool, s.handleStats
}

func (s *Server) handleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.stats.Summarize(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to compute stats: %v", err)), nil
	}
	return jsonResult(summary)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
