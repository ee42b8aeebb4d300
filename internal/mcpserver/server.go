// Package mcpserver exposes the reminder store as MCP tools so an
// assistant can manage reminders on a caregiver's behalf.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/reminder"
)

const (
	serverName    = "carereminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *reminder.Store
}

// New creates an MCP server backed by store.
func New(store *reminder.Store) *Server {
	s := &Server{store: store}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves the tools over stdin/stdout until the client hangs up.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Create a reminder for an elderly person. One-off reminders must be in the future."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Date as YYYY-MM-DD")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time as 24h HH:MM")),
			mcp.WithString("type", mcp.Description("medication, appointment, hydration or custom (default: custom)")),
			mcp.WithString("description", mcp.Description("Optional notification body")),
			mcp.WithBoolean("recurring", mcp.Description("Repeat every day at the given time")),
			mcp.WithString("frequency", mcp.Description("daily, weekly or monthly; required when recurring")),
			mcp.WithNumber("alarm_duration", mcp.Description("Alarm duration in seconds; 0 disables the alarm")),
			mcp.WithString("elderly_id", mcp.Description("Dependent id (default: first associated dependent)")),
			mcp.WithString("related_item_id", mcp.Description("Medication or appointment id this reminder refers to")),
		),
		s.handleAddReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders in one view: all, today, upcoming or missed"),
			mcp.WithString("view", mcp.Description("all, today, upcoming or missed (default: all)")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("complete_reminder",
			mcp.WithDescription("Mark a reminder as completed"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleCompleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder's title, description, date, time or alarm duration"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("title", mcp.Description("New title")),
			mcp.WithString("description", mcp.Description("New description")),
			mcp.WithString("date", mcp.Description("New date as YYYY-MM-DD")),
			mcp.WithString("time", mcp.Description("New time as HH:MM")),
			mcp.WithNumber("alarm_duration", mcp.Description("New alarm duration in seconds")),
		),
		s.handleUpdateReminder,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_medications",
			mcp.WithDescription("List medications with their dosage and intake schedule"),
		),
		s.handleListMedications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_appointments",
			mcp.WithDescription("List upcoming and past appointments"),
		),
		s.handleListAppointments,
	)
}

func jsonResult(v any) *mcp.CallToolResult {
	output, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(output))
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := model.ReminderInput{
		Type:          model.ReminderType(req.GetString("type", "")),
		Title:         req.GetString("title", ""),
		Description:   req.GetString("description", ""),
		Date:          req.GetString("date", ""),
		Time:          req.GetString("time", ""),
		Recurring:     req.GetBool("recurring", false),
		Frequency:     model.Frequency(req.GetString("frequency", "")),
		AlarmDuration: int(req.GetFloat("alarm_duration", 0)),
		ElderlyID:     req.GetString("elderly_id", ""),
		RelatedItemID: req.GetString("related_item_id", ""),
	}

	added, err := s.store.AddReminder(ctx, in)
	switch {
	case reminder.IsValidation(err):
		return mcp.NewToolResultError(err.Error()), nil
	case err != nil:
		return mcp.NewToolResultError(fmt.Sprintf("reminder %s was created but not saved: %v", added.ID, err)), nil
	}
	return jsonResult(added), nil
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.store.View(req.GetString("view", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}
	return jsonResult(reminders), nil
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if _, ok := s.store.Reminder(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %q not found", id)), nil
	}
	if err := s.store.MarkReminderComplete(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to complete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s marked as completed.", id)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if _, ok := s.store.Reminder(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %q not found", id)), nil
	}
	if err := s.store.DeleteReminder(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleUpdateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if _, ok := s.store.Reminder(id); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %q not found", id)), nil
	}

	var upd model.ReminderUpdate
	if v := req.GetString("title", ""); v != "" {
		upd.Title = &v
	}
	if v := req.GetString("description", ""); v != "" {
		upd.Description = &v
	}
	if v := req.GetString("date", ""); v != "" {
		upd.Date = &v
	}
	if v := req.GetString("time", ""); v != "" {
		upd.Time = &v
	}
	if v := req.GetFloat("alarm_duration", -1); v >= 0 {
		seconds := int(v)
		upd.AlarmDuration = &seconds
	}

	if err := s.store.UpdateReminder(ctx, id, upd); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}

	updated, _ := s.store.Reminder(id)
	return jsonResult(updated), nil
}

func (s *Server) handleListMedications(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meds := s.store.Medications()
	if len(meds) == 0 {
		return mcp.NewToolResultText("No medications found."), nil
	}
	return jsonResult(meds), nil
}

func (s *Server) handleListAppointments(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	appts := s.store.Appointments()
	if len(appts) == 0 {
		return mcp.NewToolResultText("No appointments found."), nil
	}
	return jsonResult(appts), nil
}
