package mcpserver

import (
	"github.com/mark3labs/eventwiz/internal/batch"
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard-status",
			mcp.WithDescription("Show the current step, field values, field errors and batches of the event wizard"),
		),
		s.handleStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-set",
			mcp.WithDescription("Set one event field by path (e.g. name, organizer.id, startDatetime, isFree) and validate it"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Field path")),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("Field value as text; dates as YYYY-MM-DD or YYYY-MM-DD HH:MM, booleans as true/false"),
			),
		),
		s.handleSet,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("batch-add",
			mcp.WithDescription("Append an empty registration batch and return its id"),
		),
		s.handleBatchAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("batch-update",
			mcp.WithDescription("Set one field of a batch"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Batch id returned by batch-add or wizard-status")),
			mcp.WithString("field", mcp.Required(),
				mcp.Description("Batch field"),
				mcp.Enum(batch.Fields...),
			),
			mcp.WithString("value", mcp.Required(), mcp.Description("Field value as text")),
		),
		s.handleBatchUpdate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("batch-remove",
			mcp.WithDescription("Remove a batch"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Batch id")),
		),
		s.handleBatchRemove,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-next",
			mcp.WithDescription("Validate the current step and move to the next one"),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-back",
			mcp.WithDescription("Go back one step without validating"),
		),
		s.handleBack,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard-submit",
			mcp.WithDescription("Validate every step and create or update the event. Only available on the last step"),
		),
		s.handleSubmit,
	)
}
