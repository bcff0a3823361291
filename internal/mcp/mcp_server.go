// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the rating MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, cat *catalog.Catalog, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Preference Rating Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		cat:     cat,
		mgr:     mgr,
	}

	// --- 1. Tool: rank_products ---
	s.AddTool(mcp.NewTool("rank_products",
		mcp.WithDescription("Rate every product of the catalog for one user and rank them, products without information first."),
		mcp.WithString("user_id", mcp.Description("Id of the user to rate products for."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleRankProducts)

	// --- 2. Tool: rate_product ---
	s.AddTool(mcp.NewTool("rate_product",
		mcp.WithDescription("Rate one product for one user, or for every user when no user is given."),
		mcp.WithNumber("product_id", mcp.Description("Id of the product to rate."), mcp.Required()),
		mcp.WithString("user_id", mcp.Description("Id of the user. Omit to rate the product for all users.")),
	), h.handleRateProduct)

	// --- 3. Tool: explain_rating ---
	s.AddTool(mcp.NewTool("explain_rating",
		mcp.WithDescription("Break a rating down into the contributions of preferences and product tags."),
		mcp.WithString("user_id", mcp.Description("Id of the user."), mcp.Required()),
		mcp.WithNumber("product_id", mcp.Description("Id of the product."), mcp.Required()),
	), h.handleExplainRating)

	// --- 4. Tool: list_users ---
	s.AddTool(mcp.NewTool("list_users",
		mcp.WithDescription("List the users of the catalog with the stance behind each scored preference."),
	), h.handleListUsers)

	return s
}

// StartMCPServer starts the rating MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, cat *catalog.Catalog, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, cat, mgr)
	return server.ServeStdio(s)
}
