package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/huangsam/rubric/core"
	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.HistoryManager
}

// verifySummary is the payload of a successful verify_rubric call.
type verifySummary struct {
	FormID   string            `json:"form_id"`
	Title    string            `json:"title"`
	Policy   schema.PolicyKind `json:"policy"`
	Criteria int               `json:"criteria"`
	Valid    bool              `json:"valid"`
}

// requestConfig clones the base config and applies the rubric arguments shared by every tool.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	formPath, err := request.RequireString("form_path")
	if err != nil {
		return nil, err
	}
	cfg := h.baseCfg.Clone()
	cfg.FormPath = formPath
	cfg.WeightsPath = request.GetString("weights_path", "")
	return cfg, nil
}

func (h *toolHandler) handleVerifyRubric(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rubric, err := core.LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load rubric: %v", err)), nil
	}
	if err := rubric.Definition.Verify(rubric.Form); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("verification failed: %v", err)), nil
	}
	return jsonResult(verifySummary{
		FormID:   rubric.Form.ID,
		Title:    rubric.Form.Title,
		Policy:   rubric.Definition.Kind(),
		Criteria: rubric.Form.CriterionCount(),
		Valid:    true,
	})
}

func (h *toolHandler) handleSnapshotRubric(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rubric, err := core.LoadRubric(cfg.FormPath, cfg.WeightsPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load rubric: %v", err)), nil
	}
	snap, err := core.Snapshot(rubric.Form, rubric.Definition)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot failed: %v", err)), nil
	}
	return jsonResult(snap)
}

func (h *toolHandler) handleScoreAnswers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.AnswerPaths = request.GetStringSlice("answer_paths", nil)
	cfg.Explain = request.GetBool("explain", false)

	results, err := core.GetScoreResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichRuns(results))
}

func (h *toolHandler) handleCheckAnswers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cfg.AnswerPaths = request.GetStringSlice("answer_paths", nil)
	minTotal, err := request.RequireFloat("min_total")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if math.IsNaN(minTotal) || minTotal < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("min_total must be a non-negative number (received %v)", minTotal)), nil
	}
	cfg.MinTotal = minTotal

	check, err := core.GetCheckResult(core.WithSuppressHeader(ctx), cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(check)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
