package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/demo"
	"github.com/joescharf/gitval/internal/git"
	"github.com/joescharf/gitval/internal/models"
	"github.com/joescharf/gitval/internal/scoring"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

type mockFetcher struct {
	result *git.FetchResult
	err    error
	inputs []string
}

func (m *mockFetcher) Fetch(_ context.Context, input string) (*git.FetchResult, error) {
	m.inputs = append(m.inputs, input)
	return m.result, m.err
}

type mockScorer struct {
	err      error
	received []models.CommitRecord
}

func (m *mockScorer) Score(_ context.Context, commits []models.CommitRecord) (*models.AnalysisResult, error) {
	m.received = commits
	if m.err != nil {
		return nil, m.err
	}
	return &models.AnalysisResult{
		Success:      true,
		TotalCommits: len(commits),
		Developers: []models.DeveloperAssessment{
			{Name: "high", ImpactGPA: 3.6, CommitCount: 1},
			{Name: "low", ImpactGPA: 1.2, CommitCount: 9},
		},
	}, nil
}

func newTestServer(t *testing.T) (*Server, *mockFetcher, *mockScorer) {
	t.Helper()
	f := &mockFetcher{result: &git.FetchResult{
		RepoName: "acme/widgets",
		Commits:  []models.CommitRecord{{SHA: "PR-1", Author: "high", AuthorEmail: "high@example.com"}},
	}}
	s := &mockScorer{}
	return NewServer(analysis.NewService(f, s, demo.New(0)), "test"), f, s
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcpgo.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

// resultJSON parses the text result as JSON into the provided target.
func resultJSON(t *testing.T, result *mcpgo.CallToolResult, target any) {
	t.Helper()
	text := resultText(t, result)
	require.NoError(t, json.Unmarshal([]byte(text), target), "failed to parse result JSON: %s", text)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestNewServer(t *testing.T) {
	srv, _, _ := newTestServer(t)
	require.NotNil(t, srv.MCPServer())
	assert.Equal(t, "dev", NewServer(nil, "").version)
}

func TestHandleResolveRepository(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleResolveRepository(ctx, callToolReq("gitval_resolve_repository", map[string]any{"repo": "git@github.com:acme/widgets.git"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	var got map[string]string
	resultJSON(t, result, &got)
	assert.Equal(t, "acme/widgets", got["fullName"])

	result, err = srv.handleResolveRepository(ctx, callToolReq("gitval_resolve_repository", map[string]any{"repo": "nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "owner/repo")

	result, err = srv.handleResolveRepository(ctx, callToolReq("gitval_resolve_repository", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "missing required parameter: repo")
}

func TestHandleFetchPullRequests(t *testing.T) {
	srv, f, _ := newTestServer(t)

	result, err := srv.handleFetchPullRequests(context.Background(), callToolReq("gitval_fetch_pull_requests", map[string]any{"repo": "acme/widgets"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	var got models.PullRequestsResult
	resultJSON(t, result, &got)
	assert.True(t, got.Success)
	assert.Len(t, got.Commits, 1)
	assert.Equal(t, []string{"acme/widgets"}, f.inputs)

	f.err = git.ErrMissingToken
	result, err = srv.handleFetchPullRequests(context.Background(), callToolReq("gitval_fetch_pull_requests", map[string]any{"repo": "acme/widgets"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, git.ErrMissingToken.Error(), resultText(t, result))
}

func TestHandleAnalyzeRepository(t *testing.T) {
	srv, _, _ := newTestServer(t)

	result, err := srv.handleAnalyzeRepository(context.Background(), callToolReq("gitval_analyze_repository", map[string]any{
		"repo": "https://github.com/acme/widgets",
		"sort": "risk",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var got models.AnalysisResult
	resultJSON(t, result, &got)
	assert.Equal(t, "acme/widgets", got.Repository)
	require.Len(t, got.Developers, 2)
	assert.Equal(t, "low", got.Developers[0].Name)
}

func TestHandleAnalyzeRepository_Errors(t *testing.T) {
	srv, f, _ := newTestServer(t)
	ctx := context.Background()

	f.err = git.ErrNoMergedPRs
	result, err := srv.handleAnalyzeRepository(ctx, callToolReq("gitval_analyze_repository", map[string]any{"repo": "acme/widgets"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "no merged pull requests found in this repository", resultText(t, result))

	f.err = assert.AnError
	result, err = srv.handleAnalyzeRepository(ctx, callToolReq("gitval_analyze_repository", map[string]any{"repo": "acme/widgets"}))
	require.NoError(t, err)
	assert.Equal(t, "unexpected error during analysis", resultText(t, result), "internal detail does not leak")
}

func TestHandleScoreCommits(t *testing.T) {
	srv, _, s := newTestServer(t)
	ctx := context.Background()

	commits := `[{"sha":"PR-7","author":"a","authorEmail":"a@x.io","additions":3},{"sha":"PR-8","author":"b"}]`
	result, err := srv.handleScoreCommits(ctx, callToolReq("gitval_score_commits", map[string]any{"commits": commits, "sort": "commits"}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))
	require.Len(t, s.received, 2)
	assert.Equal(t, 3, s.received[0].Additions)

	var got models.AnalysisResult
	resultJSON(t, result, &got)
	assert.Equal(t, "low", got.Developers[0].Name, "most commits first")

	result, err = srv.handleScoreCommits(ctx, callToolReq("gitval_score_commits", map[string]any{"commits": "{bad"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "JSON array")

	s.err = scoring.ErrMissingLLMCredential
	result, err = srv.handleScoreCommits(ctx, callToolReq("gitval_score_commits", map[string]any{"commits": commits}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "OPENAI_API_KEY")
}

func TestHandleDemoAnalysis(t *testing.T) {
	srv, f, _ := newTestServer(t)

	result, err := srv.handleDemoAnalysis(context.Background(), callToolReq("gitval_demo_analysis", nil))
	require.NoError(t, err)
	var got models.AnalysisResult
	resultJSON(t, result, &got)
	assert.Equal(t, demo.Repository, got.Repository)
	assert.Equal(t, "Sarah Chen", got.Developers[0].Name)
	assert.Empty(t, f.inputs)
}

func TestHandleListArchetypes(t *testing.T) {
	srv, _, _ := newTestServer(t)

	result, err := srv.handleListArchetypes(context.Background(), callToolReq("gitval_list_archetypes", nil))
	require.NoError(t, err)
	var got []models.ArchetypeInfo
	resultJSON(t, result, &got)
	require.Len(t, got, 8)
	assert.Equal(t, "Rising Star", got[7].Name)
}
