// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the rubric MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.HistoryManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Rubric Scoring Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: verify_rubric ---
	s.AddTool(mcp.NewTool("verify_rubric",
		mcp.WithDescription("Check that a rubric file is consistent with its weight scheme."),
		mcp.WithString("form_path", mcp.Description("Path to the rubric YAML file."), mcp.Required()),
		mcp.WithString("weights_path", mcp.Description("Optional weight scheme file that replaces the rubric's inline weights.")),
	), h.handleVerifyRubric)

	// --- 2. Tool: snapshot_rubric ---
	s.AddTool(mcp.NewTool("snapshot_rubric",
		mcp.WithDescription("Freeze a rubric into a snapshot with fresh keys for every group and criterion."),
		mcp.WithString("form_path", mcp.Description("Path to the rubric YAML file."), mcp.Required()),
		mcp.WithString("weights_path", mcp.Description("Optional weight scheme file.")),
	), h.handleSnapshotRubric)

	// --- 3. Tool: score_answers ---
	s.AddTool(mcp.NewTool("score_answers",
		mcp.WithDescription("Score one or more answer files against a rubric and return each run's total."),
		mcp.WithString("form_path", mcp.Description("Path to the rubric YAML file."), mcp.Required()),
		mcp.WithArray("answer_paths", mcp.Description("Answer files, one run each."), mcp.Required(), mcp.WithStringItems()),
		mcp.WithString("weights_path", mcp.Description("Optional weight scheme file.")),
		mcp.WithBoolean("explain", mcp.Description("Include the per-node breakdown behind each total.")),
	), h.handleScoreAnswers)

	// --- 4. Tool: check_answers ---
	s.AddTool(mcp.NewTool("check_answers",
		mcp.WithDescription("Score answer files and report every run whose total is below a minimum."),
		mcp.WithString("form_path", mcp.Description("Path to the rubric YAML file."), mcp.Required()),
		mcp.WithArray("answer_paths", mcp.Description("Answer files, one run each."), mcp.Required(), mcp.WithStringItems()),
		mcp.WithNumber("min_total", mcp.Description("Lowest acceptable total on the 0-10 scale."), mcp.Required()),
		mcp.WithString("weights_path", mcp.Description("Optional weight scheme file.")),
	), h.handleCheckAnswers)

	return s
}

// StartMCPServer starts the rubric MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.HistoryManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
