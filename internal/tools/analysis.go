package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/analysis"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/llm"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/storage"
)

// AnalysisTools holds references needed by the mission tool handlers.
type AnalysisTools struct {
	Service *analysis.Service
}

// --- Input types ---

type AnalyzeQueryInput struct {
	Query string `json:"query" jsonschema:"Natural-language question about the missions, e.g. 'Show mission launch years'"`
}

type AdvancedQueryInput struct {
	Query string `json:"query" jsonschema:"Free-form question forwarded to the language model"`
}

type QueryHistoryInput struct {
	Page    int `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	PerPage int `json:"per_page,omitempty" jsonschema:"Entries per page, at most 100 (default 10)"`
}

type ListMissionsInput struct{}

type SuggestionsInput struct{}

// --- Handlers ---

func (t *AnalysisTools) AnalyzeQuery(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeQueryInput) (*mcp.CallToolResult, any, error) {
	result, err := t.Service.Analyze(ctx, input.Query)
	if errors.Is(err, analysis.ErrEmptyQuery) {
		return toolError("Query is required"), nil, nil
	}
	if err != nil {
		return toolError("Failed to analyze query: %v", err), nil, nil
	}
	return toolJSON(result)
}

func (t *AnalysisTools) AdvancedQuery(ctx context.Context, _ *mcp.CallToolRequest, input AdvancedQueryInput) (*mcp.CallToolResult, any, error) {
	answer, err := t.Service.Advanced(ctx, input.Query)
	if errors.Is(err, analysis.ErrEmptyQuery) {
		return toolError("Query is required"), nil, nil
	}
	if err != nil {
		return toolError("Failed to run advanced query: %v", err), nil, nil
	}
	// Model failures arrive as text and are returned as such.
	return toolText(answer), nil, nil
}

func (t *AnalysisTools) QueryHistory(ctx context.Context, _ *mcp.CallToolRequest, input QueryHistoryInput) (*mcp.CallToolResult, any, error) {
	page, perPage := input.Page, input.PerPage
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = 10
	}
	perPage = min(perPage, 100)

	entries, err := t.Service.History(ctx, page, perPage)
	if errors.Is(err, storage.ErrInvalidPage) {
		return toolError("Invalid page: %v", err), nil, nil
	}
	if err != nil {
		return toolError("Failed to load history: %v", err), nil, nil
	}
	return toolJSON(entries)
}

func (t *AnalysisTools) ListMissions(_ context.Context, _ *mcp.CallToolRequest, _ ListMissionsInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.Service.Router().Table().Records())
}

func (t *AnalysisTools) Suggestions(_ context.Context, _ *mcp.CallToolRequest, _ SuggestionsInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(llm.Suggestions())
}

// --- Helpers ---

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
