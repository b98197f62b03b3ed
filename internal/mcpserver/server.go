// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the BotUI panels as tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vdhoang/botui/internal/familytree"
	"github.com/vdhoang/botui/internal/lunar"
	"github.com/vdhoang/botui/internal/memories"
	"github.com/vdhoang/botui/internal/remote"
)

// Server wraps the MCP server with BotUI tools.
type Server struct {
	mcp    *server.MCPServer
	col    *memories.Collection
	remote *remote.Client
}

// New creates a new MCP server with all BotUI tools registered.
func New(col *memories.Collection, rc *remote.Client) *Server {
	s := &Server{col: col, remote: rc}

	s.mcp = server.NewMCPServer(
		"BotUI",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_memories",
		mcp.WithDescription("Refresh and list the memories journal (lightweight entries with date-distance labels)."),
	), s.listMemories)

	s.mcp.AddTool(mcp.NewTool("search_memories",
		mcp.WithDescription("Filter the loaded memories by a case-insensitive substring of the title or cached text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchMemories)

	s.mcp.AddTool(mcp.NewTool("read_memory",
		mcp.WithDescription("Read the full record of one memory, including its text and attachment flag."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
	), s.readMemory)

	s.mcp.AddTool(mcp.NewTool("save_memory",
		mcp.WithDescription("Create a memory (omit id) or update one (pass id). Title and event_date are required; event_date uses YYYY-MM-DD."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short display title")),
		mcp.WithString("event_date", mcp.Required(), mcp.Description("Event date, YYYY-MM-DD")),
		mcp.WithString("text", mcp.Description("Free-form description")),
		mcp.WithString("id", mcp.Description("Existing memory id when updating")),
	), s.saveMemory)

	s.mcp.AddTool(mcp.NewTool("delete_memory",
		mcp.WithDescription("Soft-delete a memory. The record stays on the server flagged as deleted."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Memory id")),
	), s.deleteMemory)

	s.mcp.AddTool(mcp.NewTool("upcoming_lunar_events",
		mcp.WithDescription("List the recurring lunar-calendar anniversaries with this year's solar dates and day distances."),
	), s.upcomingLunarEvents)

	s.mcp.AddTool(mcp.NewTool("render_family_tree",
		mcp.WithDescription("Render a person's family tree text block as a box-drawing tree."),
		mcp.WithString("person", mcp.Required(), mcp.Description("Family tree owner")),
	), s.renderFamilyTree)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.col.Refresh(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.col.Display(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchMemories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.col.Search(ctx, query); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(s.col.Display(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.col.RequestDetail(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if m == nil {
		return mcp.NewToolResultError("memory is still loading, retry shortly"), nil
	}
	out, _ := json.MarshalIndent(m, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eventDate, err := req.RequireString("event_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := memories.SaveInput{Title: title, EventDate: eventDate}
	if text, err := req.RequireString("text"); err == nil {
		in.Text = text
	}
	if raw, err := req.RequireString("id"); err == nil && raw != "" {
		id, convErr := strconv.ParseInt(raw, 10, 64)
		if convErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid id: %s", raw)), nil
		}
		in.ID = id
	}

	saved, err := s.col.Save(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %d", saved.ID)), nil
}

func (s *Server) deleteMemory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.col.Delete(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) upcomingLunarEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := s.remote.LoadText(ctx, "lunarEvents", "common")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	events := lunar.ParseEvents(content, time.Now())
	out, _ := json.MarshalIndent(events, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) renderFamilyTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	person, err := req.RequireString("person")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := s.remote.LoadText(ctx, "family", person)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if content == "" {
		return mcp.NewToolResultText("no family tree saved for " + person), nil
	}
	return mcp.NewToolResultText(familytree.Render(content)), nil
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	raw, err := req.RequireString("id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return id, nil
}
