// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes dotlint checks for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dotlint/internal/service"
)

const formatURI = "dotlint://frontmatter-format"

// Server wraps the MCP server with dotlint tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all dotlint tools registered.
func New(svc *service.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"dotlint",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_path",
		mcp.WithDescription("Validate a file or directory of the repository and return the report as JSON. "+
			"An empty path validates the whole repository."),
		mcp.WithString("path", mcp.Description("Path relative to the repository root")),
	), s.validatePath)

	s.mcp.AddTool(mcp.NewTool("check_links",
		mcp.WithDescription("List broken internal links of a Markdown file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to a .md file")),
	), s.checkLinks)

	s.mcp.AddTool(mcp.NewTool("parse_frontmatter",
		mcp.WithDescription("Extract the metadata header of a Markdown file as key/value pairs."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to a .md file")),
	), s.parseFrontmatter)

	s.mcp.AddTool(mcp.NewTool("is_protected",
		mcp.WithDescription("Report whether a path is sensitive and must not be edited or shared."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Any path; it does not need to exist")),
	), s.isProtected)

	s.mcp.AddTool(mcp.NewTool("count_tokens",
		mcp.WithDescription("Count tokens and lines of a context file and compare them with its template budget."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the file")),
	), s.countTokens)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_format",
		mcp.WithDescription("Returns the accepted frontmatter grammar and the checks per file kind. "+
			"Call this before writing skill, agent, rule or command files."),
	), s.getFrontmatterFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Frontmatter Format",
			mcp.WithResourceDescription("Metadata header grammar and per-kind requirements."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) validatePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	rep, err := s.svc.Validate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep), nil
}

func (s *Server) checkLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	findings, err := s.svc.CheckLinks(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(findings) == 0 {
		return mcp.NewToolResultText("no broken links"), nil
	}
	return jsonResult(findings), nil
}

func (s *Server) parseFrontmatter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fm, err := s.svc.ParseFrontmatter(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(fm), nil
}

func (s *Server) isProtected(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.IsProtected(path)), nil
}

func (s *Server) countTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.CountTokens(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(a), nil
}

func (s *Server) getFrontmatterFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterFormat), nil
}

func (s *Server) readFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterFormat,
		},
	}, nil
}
