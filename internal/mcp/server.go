package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/models"
)

// Server exposes the analysis pipeline as MCP tools.
type Server struct {
	svc     *analysis.Service
	version string
}

// NewServer creates the MCP server wrapper.
func NewServer(svc *analysis.Service, version string) *Server {
	if version == "" {
		version = "dev"
	}
	return &Server{svc: svc, version: version}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("gitval", s.version, server.WithToolCapabilities(true))

	srv.AddTool(s.resolveRepositoryTool())
	srv.AddTool(s.fetchPullRequestsTool())
	srv.AddTool(s.analyzeRepositoryTool())
	srv.AddTool(s.scoreCommitsTool())
	srv.AddTool(s.demoAnalysisTool())
	srv.AddTool(s.listArchetypesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.MCPServer())
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func sortOption() mcp.ToolOption {
	return mcp.WithString("sort",
		mcp.Description("Developer order: gpa (highest first), risk (lowest GPA first) or commits"),
		mcp.Enum(models.SortByGPA, models.SortByRisk, models.SortByCommits),
	)
}

func analysisResult(res *models.AnalysisResult, err error, sortBy string) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(analysis.Message(err)), nil
	}
	models.SortDevelopers(res.Developers, sortBy)
	return jsonResult(res)
}

// gitval_resolve_repository
func (s *Server) resolveRepositoryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_resolve_repository",
		mcp.WithDescription("Parse a GitHub repository URL or owner/repo string. Returns {owner, repo, fullName}."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository URL or owner/repo")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleResolveRepository
}

func (s *Server) handleResolveRepository(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	ref, err := s.svc.ResolveRepository(input)
	if err != nil {
		return mcp.NewToolResultError(analysis.Message(err)), nil
	}
	return jsonResult(map[string]string{"owner": ref.Owner, "repo": ref.Repo, "fullName": ref.String()})
}

// gitval_fetch_pull_requests
func (s *Server) fetchPullRequestsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_fetch_pull_requests",
		mcp.WithDescription("Fetch the most recently merged pull requests of a GitHub repository as commit records (author, date, counts, truncated diff). Requires a GitHub token."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository URL or owner/repo")),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleFetchPullRequests
}

func (s *Server) handleFetchPullRequests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	res, err := s.svc.FetchPullRequests(ctx, repo)
	if err != nil {
		return mcp.NewToolResultError(res.Error), nil
	}
	return jsonResult(res)
}

// gitval_analyze_repository
func (s *Server) analyzeRepositoryTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_analyze_repository",
		mcp.WithDescription("Fetch merged pull requests of a GitHub repository, grade each author with the configured LLM, and return the ranked developer assessments with a team summary."),
		mcp.WithString("repo", mcp.Required(), mcp.Description("Repository URL or owner/repo")),
		sortOption(),
	)
	return tool, s.handleAnalyzeRepository
}

func (s *Server) handleAnalyzeRepository(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repo, err := request.RequireString("repo")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: repo"), nil
	}
	res, err := s.svc.Analyze(ctx, repo)
	return analysisResult(res, err, request.GetString("sort", models.SortByGPA))
}

// gitval_score_commits
func (s *Server) scoreCommitsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_score_commits",
		mcp.WithDescription("Grade the authors of caller-supplied commit records. Pass the commits as a JSON array in the shape returned by gitval_fetch_pull_requests."),
		mcp.WithString("commits", mcp.Required(), mcp.Description("JSON array of commit records")),
		sortOption(),
	)
	return tool, s.handleScoreCommits
}

func (s *Server) handleScoreCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("commits")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: commits"), nil
	}
	var commits []models.CommitRecord
	if err := json.Unmarshal([]byte(raw), &commits); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("commits must be a JSON array of commit records: %v", err)), nil
	}
	res, err := s.svc.ScoreDevelopers(ctx, commits)
	return analysisResult(res, err, request.GetString("sort", models.SortByGPA))
}

// gitval_demo_analysis
func (s *Server) demoAnalysisTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_demo_analysis",
		mcp.WithDescription("Return the built-in sample analysis of a fictional six-person team. Needs no credentials."),
		sortOption(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleDemoAnalysis
}

func (s *Server) handleDemoAnalysis(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Demo(ctx)
	return analysisResult(res, err, request.GetString("sort", models.SortByGPA))
}

// gitval_list_archetypes
func (s *Server) listArchetypesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("gitval_list_archetypes",
		mcp.WithDescription("List the developer archetypes the scoring model chooses from, with descriptions."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	return tool, s.handleListArchetypes
}

func (s *Server) handleListArchetypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all := archetype.All()
	out := make([]models.ArchetypeInfo, len(all))
	for i, a := range all {
		out[i] = a.Info()
	}
	return jsonResult(out)
}
