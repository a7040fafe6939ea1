package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/andyhoegh/RobotSampler-Sims/core"
	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/andyhoegh/RobotSampler-Sims/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// optionalNumber returns the argument formatted as a string, or "" when absent.
func optionalNumber(request mcp.CallToolRequest, key string) string {
	if _, ok := request.GetArguments()[key]; !ok {
		return ""
	}
	return strconv.FormatFloat(request.GetFloat(key, 0), 'g', -1, 64)
}

// applySimulationArgs copies the shared simulation arguments onto cfg.
func applySimulationArgs(cfg *contract.Config, request mcp.CallToolRequest) error {
	if n := request.GetInt("sims", 0); n != 0 {
		cfg.NumSims = n
	}
	if seed := request.GetInt("seed", -1); seed >= 0 {
		cfg.Seed = uint64(seed)
	}

	mode := request.GetString("detectability", "")
	volatility := request.GetString("volatility", "")
	phi, sigma := optionalNumber(request, "phi"), optionalNumber(request, "sigma")
	if mode == "" && (volatility != "" || phi != "" || sigma != "") {
		mode = string(cfg.Detectability.Mode)
	}
	if mode != "" {
		if volatility == "" {
			volatility = string(cfg.Volatility)
		}
		if err := contract.RevalidateDetectability(cfg, mode, volatility, phi, sigma); err != nil {
			return err
		}
	}
	return nil
}

func (h *toolHandler) handleRunConfiguration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applySimulationArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid simulation parameters: %v", err)), nil
	}
	if v := request.GetInt("horizon", 0); v != 0 {
		cfg.HorizonDays = v
	}
	if _, ok := request.GetArguments()["occupancy"]; ok {
		cfg.Occupancy = request.GetFloat("occupancy", cfg.Occupancy)
	}
	if _, ok := request.GetArguments()["detection"]; ok {
		cfg.Detection = request.GetFloat("detection", cfg.Detection)
	}
	if b := request.GetString("batching", ""); b != "" {
		cfg.Batching = schema.BatchingMode(b)
	}
	if err := contract.RevalidateSimulation(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid simulation parameters: %v", err)), nil
	}

	ctx = core.WithSuppressHeader(ctx)
	var result any
	if request.GetBool("compare", false) {
		comparison, _, err := core.GetCompareResults(ctx, cfg, h.mgr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("simulation failed: %v", err)), nil
		}
		result = comparison
	} else {
		rates, _, err := core.GetRunResults(ctx, cfg, h.mgr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("simulation failed: %v", err)), nil
		}
		result = rates
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunSweep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if err := applySimulationArgs(cfg, request); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid simulation parameters: %v", err)), nil
	}
	if err := contract.RevalidateSweep(cfg,
		request.GetString("horizons", ""),
		request.GetString("occupancies", ""),
		request.GetString("detections", ""),
		request.GetString("batchings", ""),
	); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sweep parameters: %v", err)), nil
	}

	result, _, err := core.GetSweepResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("sweep failed: %v", err)), nil
	}

	enriched := schema.EnrichRows(result.Rows())
	jsonData, _ := json.MarshalIndent(enriched, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
