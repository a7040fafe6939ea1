// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/andyhoegh/RobotSampler-Sims/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the robotsampler MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"RobotSampler Simulation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: run_configuration ---
	s.AddTool(mcp.NewTool("run_configuration",
		mcp.WithDescription("Simulate one configuration and return the probability of at least one detection under daily (high-frequency) and weekly (conventional) sampling."),
		withSimulationOptions(),
		mcp.WithNumber("horizon", mcp.Description("Time horizon T in days. Must be a positive multiple of 7.")),
		mcp.WithNumber("occupancy", mcp.Description("Occupancy probability psi within [0,1].")),
		mcp.WithNumber("detection", mcp.Description("Base detection probability p within (0,1).")),
		mcp.WithString("batching", mcp.Description("Conventional batching semantics."), mcp.Enum("subsample", "independent")),
		mcp.WithBoolean("compare", mcp.Description("Also return the paired high-frequency minus conventional contrast.")),
	), h.handleRunConfiguration)

	// --- 2. Tool: run_sweep ---
	s.AddTool(mcp.NewTool("run_sweep",
		mcp.WithDescription("Simulate the cross product of horizons, occupancies, detections and batching modes. Returns one row per sampling regime and grid point."),
		withSimulationOptions(),
		mcp.WithString("horizons", mcp.Description("Comma-separated horizons in days (e.g. '7,14,28,56').")),
		mcp.WithString("occupancies", mcp.Description("Comma-separated occupancy probabilities (e.g. '0.05,0.1').")),
		mcp.WithString("detections", mcp.Description("Comma-separated detection probabilities (e.g. '0.05,0.1').")),
		mcp.WithString("batchings", mcp.Description("Comma-separated batching modes (subsample, independent).")),
	), h.handleRunSweep)

	return s
}

// withSimulationOptions adds the options shared by every simulation tool.
func withSimulationOptions() mcp.ToolOption {
	return func(t *mcp.Tool) {
		for _, opt := range []mcp.ToolOption{
			mcp.WithNumber("sims", mcp.Description("Number of Monte Carlo trials per configuration.")),
			mcp.WithNumber("seed", mcp.Description("Run seed. The same seed reproduces the same result.")),
			mcp.WithString("detectability", mcp.Description("Detection-probability process."), mcp.Enum("constant", "time-varying")),
			mcp.WithString("volatility", mcp.Description("Preset for the time-varying process."), mcp.Enum("high", "low")),
			mcp.WithNumber("phi", mcp.Description("AR(1) coefficient of the time-varying process; overrides the preset.")),
			mcp.WithNumber("sigma", mcp.Description("Innovation scale of the time-varying process; overrides the preset.")),
		} {
			opt(t)
		}
	}
}

// StartMCPServer starts the robotsampler MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
