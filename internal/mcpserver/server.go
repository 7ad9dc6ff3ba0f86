// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes AlphaDrop research tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/an0763229796-cpu/AlphaDrop/internal/models"
	"github.com/an0763229796-cpu/AlphaDrop/internal/research"
	"github.com/an0763229796-cpu/AlphaDrop/internal/tracker"
)

// Server wraps the MCP server with AlphaDrop tools.
type Server struct {
	mcp      *server.MCPServer
	research *research.Service
	tracker  *tracker.Service
}

// New creates a new MCP server with all AlphaDrop tools registered.
func New(res *research.Service, tr *tracker.Service) *Server {
	s := &Server{research: res, tracker: tr}

	s.mcp = server.NewMCPServer(
		"AlphaDrop",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("analyze_project",
		mcp.WithDescription("Run a full multi-segment deep-dive analysis of a crypto project: "+
			"overview, tech, funding, tokenomics, on-chain signals, and an airdrop verdict. "+
			"Results are cached; pass refresh=true to force a fresh run."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name, e.g. Monad")),
		mcp.WithString("refresh", mcp.Description("Pass \"true\" to bypass the cache")),
	), s.analyzeProject)

	s.mcp.AddTool(mcp.NewTool("quick_scan",
		mcp.WithDescription("Run a fast single-pass scan of a crypto project's airdrop potential. "+
			"Much cheaper than analyze_project; use it for triage."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name, e.g. Monad")),
		mcp.WithString("refresh", mcp.Description("Pass \"true\" to bypass the cache")),
	), s.quickScan)

	s.mcp.AddTool(mcp.NewTool("funding_report",
		mcp.WithDescription("Build a funding and investor report for a crypto project: "+
			"rounds, valuations, tokenomics, investor tiers, and an investment verdict. "+
			"Always fetched live."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name, e.g. Monad")),
	), s.fundingReport)

	s.mcp.AddTool(mcp.NewTool("evaluate_candidates",
		mcp.WithDescription("Screen a batch of candidate projects against the AZ9 airdrop checklist. "+
			"Takes a JSON array of {\"name\",\"context\"} objects and returns match/score/reason per candidate."),
		mcp.WithString("candidates", mcp.Required(),
			mcp.Description(`JSON array like [{"name":"Monad","context":"Parallel EVM L1, Paradigm-backed"}]`)),
	), s.evaluateCandidates)

	s.mcp.AddTool(mcp.NewTool("list_tracked_projects",
		mcp.WithDescription("List the projects the user is tracking, with status, tier, and tasks."),
	), s.listTrackedProjects)

	s.mcp.AddTool(mcp.NewTool("search_history",
		mcp.WithDescription("List the user's prior research queries, newest first."),
	), s.searchHistory)

	s.mcp.AddTool(mcp.NewTool("get_methodology",
		mcp.WithDescription("Returns the AZ9 research methodology used by all analysis tools. "+
			"Call this to understand how scores and tiers are produced."),
	), s.getMethodology)

	// Resource: research methodology.
	s.mcp.AddResource(
		mcp.NewResource("alphadrop://methodology", "AZ9 Research Methodology",
			mcp.WithResourceDescription("The scoring methodology behind every analysis, scan, and screening."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMethodologyResource,
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

func (s *Server) analyzeProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refresh := req.GetString("refresh", "") == "true"

	analysis, err := s.research.GetAnalysis(ctx, name, refresh)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.tracker.Record(ctx, analysis.ProjectName, analysis.Verdict.Score); err != nil {
		slog.Warn("record search failed", slog.String("error", err.Error()))
	}
	out, _ := json.MarshalIndent(analysis, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) quickScan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refresh := req.GetString("refresh", "") == "true"

	scan, err := s.research.QuickScan(ctx, name, refresh)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(scan, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) fundingReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.research.FundingReport(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) evaluateCandidates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("candidates")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var candidates []models.EvaluationCandidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("candidates must be a JSON array: %v", err)), nil
	}
	if len(candidates) == 0 {
		return mcp.NewToolResultError("candidates array is empty"), nil
	}

	results := s.research.BatchEvaluate(ctx, candidates)
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTrackedProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.tracker.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(projects) == 0 {
		return mcp.NewToolResultText("no tracked projects"), nil
	}
	out, _ := json.MarshalIndent(projects, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := s.tracker.History(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(history) == 0 {
		return mcp.NewToolResultText("no search history"), nil
	}
	out, _ := json.MarshalIndent(history, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getMethodology(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Methodology), nil
}

func (s *Server) readMethodologyResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "alphadrop://methodology",
			MIMEType: "text/markdown",
			Text:     Methodology,
		},
	}, nil
}
