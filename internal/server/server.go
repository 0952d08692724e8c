package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagneradl/mc-v1/mission-analyzer/internal/analysis"
	"github.com/wagneradl/mc-v1/mission-analyzer/internal/tools"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// New creates a fully configured MCP server with all tools registered.
func New(svc *analysis.Service) *mcp.Server {
	at := &tools.AnalysisTools{Service: svc}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "mission-analyzer",
		Version: Version,
	}, nil)

	// Standard path
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "analyze_query",
		Description: "Classify a question about NASA missions (mission names, launch years, statuses or all fields) and return the projected data with a chart description",
	}, at.AnalyzeQuery)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_missions",
		Description: "List every mission record in the dataset",
	}, at.ListMissions)

	// Advanced path
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "advanced_query",
		Description: "Answer a free-form space exploration question with the language model (returns a not-configured message when no API key is set)",
	}, at.AdvancedQuery)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "advanced_suggestions",
		Description: "Example questions for advanced_query",
	}, at.Suggestions)

	// History
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "query_history",
		Description: "List recorded queries and their results, newest first, with page/per_page pagination",
	}, at.QueryHistory)

	return srv
}
