package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/export"
	"github.com/joescharf/crowdfund/internal/models"
	"github.com/joescharf/crowdfund/internal/submit"
)

// Exporter requests a document for the held draft.
type Exporter interface {
	Export(ctx context.Context, f export.Format) (export.Result, error)
}

// Server exposes a draft holder and its actions as MCP tools.
type Server struct {
	holder    *draft.Holder
	exporter  Exporter
	submitter submit.Submitter
	version   string
}

// NewServer creates the MCP server wrapper with all required dependencies.
func NewServer(h *draft.Holder, ex Exporter, sub submit.Submitter, version string) *Server {
	return &Server{
		holder:    h,
		exporter:  ex,
		submitter: sub,
		version:   version,
	}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("crowdfund", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.showDraftTool())
	srv.AddTool(s.setFieldTool())
	srv.AddTool(s.setListItemTool())
	srv.AddTool(s.addListItemTool())
	srv.AddTool(s.removeListItemTool())
	srv.AddTool(s.submitTool())
	srv.AddTool(s.exportTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

type draftOut struct {
	Draft  models.Draft  `json:"draft"`
	Issues []draft.Issue `json:"issues"`
}

func draftResult(d models.Draft) (*mcp.CallToolResult, error) {
	issues := draft.Validate(d)
	if issues == nil {
		issues = []draft.Issue{}
	}
	data, err := json.Marshal(draftOut{Draft: d, Issues: issues})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal draft: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// crowdfund_show_draft
func (s *Server) showDraftTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_show_draft",
		mcp.WithDescription("Show the current project draft and any validation issues (empty required fields, non-numeric funding goal)."),
	)
	return tool, s.handleShowDraft
}

func (s *Server) handleShowDraft(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return draftResult(s.holder.Snapshot())
}

// crowdfund_set_field
func (s *Server) setFieldTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_set_field",
		mcp.WithDescription("Set a scalar field of the draft. Returns the updated draft."),
		mcp.WithString("field", mcp.Required(), mcp.Enum("projectName", "description", "fundingGoal"),
			mcp.Description("Field to set")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value (funding goal is a number in USD)")),
	)
	return tool, s.handleSetField
}

func (s *Server) handleSetField(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: field"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: value"), nil
	}

	field, err := draft.ParseScalarField(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.holder.SetScalar(field, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set %s: %v", name, err)), nil
	}
	return draftResult(d)
}

// crowdfund_set_list_item
func (s *Server) setListItemTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_set_list_item",
		mcp.WithDescription("Replace one entry of a repeatable field by zero-based index. Returns the updated draft."),
		mcp.WithString("field", mcp.Required(), mcp.Enum("fundingMilestones", "releaseMilestones", "projectMembers"),
			mcp.Description("Repeatable field")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based entry index")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New entry text")),
	)
	return tool, s.handleSetListItem
}

func (s *Server) handleSetListItem(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, res := requireListField(request)
	if res != nil {
		return res, nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: index"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: value"), nil
	}

	d, err := s.holder.SetListItem(field, index, value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set entry: %v", err)), nil
	}
	return draftResult(d)
}

// crowdfund_add_list_item
func (s *Server) addListItemTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_add_list_item",
		mcp.WithDescription("Append an entry to a repeatable field. Without a value a blank entry is added, like the form's Add button."),
		mcp.WithString("field", mcp.Required(), mcp.Enum("fundingMilestones", "releaseMilestones", "projectMembers"),
			mcp.Description("Repeatable field")),
		mcp.WithString("value", mcp.Description("Text for the new entry")),
	)
	return tool, s.handleAddListItem
}

func (s *Server) handleAddListItem(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, res := requireListField(request)
	if res != nil {
		return res, nil
	}

	d, err := s.holder.AppendListItemValue(field, request.GetString("value", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add entry: %v", err)), nil
	}
	return draftResult(d)
}

// crowdfund_remove_list_item
func (s *Server) removeListItemTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_remove_list_item",
		mcp.WithDescription("Remove one entry of a repeatable field by zero-based index. The last entry is cleared rather than removed."),
		mcp.WithString("field", mcp.Required(), mcp.Enum("fundingMilestones", "releaseMilestones", "projectMembers"),
			mcp.Description("Repeatable field")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based entry index")),
	)
	return tool, s.handleRemoveListItem
}

func (s *Server) handleRemoveListItem(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, res := requireListField(request)
	if res != nil {
		return res, nil
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: index"), nil
	}

	d, err := s.holder.RemoveListItem(field, index)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove entry: %v", err)), nil
	}
	return draftResult(d)
}

func requireListField(request mcp.CallToolRequest) (models.ListField, *mcp.CallToolResult) {
	name, err := request.RequireString("field")
	if err != nil {
		return "", mcp.NewToolResultError("missing required parameter: field")
	}
	field, err := draft.ParseListField(name)
	if err != nil {
		return "", mcp.NewToolResultError(err.Error())
	}
	return field, nil
}

// crowdfund_submit
func (s *Server) submitTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_submit",
		mcp.WithDescription("Create the project from the current draft. Nothing is stored remotely; the draft is logged and confirmed."),
	)
	return tool, s.handleSubmit
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := s.submitter.Submit(ctx, s.holder.Snapshot())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
	}
	return mcp.NewToolResultText(r.Message), nil
}

// crowdfund_export
func (s *Server) exportTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("crowdfund_export",
		mcp.WithDescription("Generate a document for the current draft via the document service and save it locally. Returns the saved path."),
		mcp.WithString("format", mcp.Required(), mcp.Enum("PDF", "Excel"), mcp.Description("Document format")),
	)
	return tool, s.handleExport
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: format"), nil
	}
	f, err := export.ParseFormat(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.exporter.Export(ctx, f)
	if errors.Is(err, export.ErrInFlight) {
		return mcp.NewToolResultError("an export is already in progress; try again when it finishes"), nil
	}
	var verr *draft.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(fmt.Sprintf("draft is incomplete: %v", err)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download %s file: %v", f, err)), nil
	}

	data, err := json.Marshal(map[string]any{
		"format":   string(res.Format),
		"filename": res.Filename,
		"path":     res.Path,
		"bytes":    res.Bytes,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
