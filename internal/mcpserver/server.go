// Package mcpserver exposes the vault to LLM clients over the Model
// Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oddrun/ansuz/internal/apperr"
	"github.com/oddrun/ansuz/internal/distill"
	"github.com/oddrun/ansuz/internal/noteservice"
	"github.com/oddrun/ansuz/internal/pack"
	"github.com/oddrun/ansuz/internal/scaffold"
)

// Server wraps the MCP server with the vault tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates an MCP server with all vault tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("pack_context",
		mcp.WithDescription("Assemble a context pack for a question: expands the link graph "+
			"from seed note ids, adds recently updated notes, scores everything against the "+
			"question keywords, and renders the top notes as one Markdown document under a "+
			"token budget."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to pack context for")),
		mcp.WithString("seeds", mcp.Description("Comma-separated seed note ids for link expansion")),
		mcp.WithNumber("hops", mcp.Description("Link expansion depth from the seeds (default 1)")),
		mcp.WithNumber("recent_days", mcp.Description("Include notes updated within this many days (default 30)")),
		mcp.WithNumber("topk", mcp.Description("Keyword-ranked candidate slots (default 10)")),
		mcp.WithNumber("max_tokens", mcp.Description("Approximate token budget for the document (default 8000)")),
	), s.packContext)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, bodies, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full raw content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path (e.g. topics/rag.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Markdown note at the given path. Content MUST follow "+
			"the canonical note format (YAML front matter with id, type, title; Markdown body). "+
			"Read the contract first via get_note_contract or the ansuz://note-format resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path for the new note (must end with .md)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown content following the note format contract")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("new_note",
		mcp.WithDescription("Scaffold a new note from the per-type template. Prefer this over "+
			"create_note when starting a fresh note: it fills in id, type, and dates."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Note type: "+strings.Join(scaffold.Types(), ", "))),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable note title")),
		mcp.WithString("slug", mcp.Description("Optional file slug; derived from the title when omitted")),
	), s.newNote)

	s.mcp.AddTool(mcp.NewTool("distill_log",
		mcp.WithDescription("Condense a working session into a dated log note. Only topic is "+
			"required; empty sections are omitted. Wikilinks in the text are auto-collected "+
			"into the note's links."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Short session topic")),
		mcp.WithString("context", mcp.Description("What the session was about")),
		mcp.WithString("decisions", mcp.Description("Decisions made")),
		mcp.WithString("knowledge", mcp.Description("New knowledge worth keeping")),
		mcp.WithString("tasks", mcp.Description("Follow-up tasks")),
		mcp.WithString("questions", mcp.Description("Open questions")),
		mcp.WithString("links", mcp.Description("Comma-separated note ids to link")),
	), s.distillLog)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List indexed notes with an optional tag filter."),
		mcp.WithString("tag", mcp.Description("Only notes carrying this tag")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the given note id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Target note id (e.g. topic.rag)")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical note format contract. Call this before "+
			"creating or updating notes."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource("ansuz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all vault notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

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

// optionalInt follows the RequireInt-or-default pattern for optional
// numeric arguments.
func optionalInt(req mcp.CallToolRequest, key string, def int) int {
	if v, err := req.RequireInt(key); err == nil {
		return v
	}
	return def
}

func splitIDs(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) packContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := pack.Params{
		Question:   question,
		Hops:       optionalInt(req, "hops", pack.DefaultHops),
		RecentDays: optionalInt(req, "recent_days", pack.DefaultRecentDays),
		TopK:       optionalInt(req, "topk", pack.DefaultTopK),
		MaxTokens:  optionalInt(req, "max_tokens", pack.DefaultMaxTokens),
	}
	if raw, sErr := req.RequireString("seeds"); sErr == nil {
		p.Seeds = splitIDs(raw)
	}

	res, err := s.svc.Pack(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(res.Document), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note.Body), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.CreateNote(ctx, path, []byte(content)); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", path)), nil
}

func (s *Server) newNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteType, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug := ""
	if v, sErr := req.RequireString("slug"); sErr == nil {
		slug = v
	}

	res, err := s.svc.ScaffoldNote(ctx, noteType, title, slug, time.Now(), false)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (id: %s)", res.Path, res.ID)), nil
}

func (s *Server) distillLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	optStr := func(key string) string {
		if v, sErr := req.RequireString(key); sErr == nil {
			return v
		}
		return ""
	}
	in := distill.Input{
		Topic:     topic,
		Context:   optStr("context"),
		Decisions: optStr("decisions"),
		Knowledge: optStr("knowledge"),
		Tasks:     optStr("tasks"),
		Questions: optStr("questions"),
		Links:     splitIDs(optStr("links")),
	}

	res, err := s.svc.DistillLog(ctx, in, time.Now(), false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (id: %s)", res.Path, res.ID)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}
	rows, _, err := s.svc.ListNotes(ctx, 200, 0, tag, "path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	for _, n := range rows {
		if n.NoteID != "" {
			fmt.Fprintf(&b, "%s\t%s\n", n.Path, n.NoteID)
		} else {
			fmt.Fprintln(&b, n.Path)
		}
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sources, err := s.svc.Backlinks(ctx, target)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(sources) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(sources, "\n")), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
