package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/prefscore/core"
	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// errNoCatalog is reported by every tool when the server was started without a catalog.
var errNoCatalog = errors.New("no catalog loaded (start the server with --catalog)")

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	cat     *catalog.Catalog
	mgr     contract.StoreManager
}

// prepare clones the base config and resolves the configured algorithm.
func (h *toolHandler) prepare() (*contract.Config, algo.RatingAlgorithm, error) {
	if h.cat == nil {
		return nil, nil, errNoCatalog
	}
	cfg := h.baseCfg.Clone()
	algorithm, err := algo.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	return cfg, algorithm, nil
}

// productArg resolves the product_id argument. JSON numbers arrive as float64.
func (h *toolHandler) productArg(request mcp.CallToolRequest) (*schema.Product, error) {
	id, err := request.RequireFloat("product_id")
	if err != nil {
		return nil, err
	}
	return h.cat.Product(int64(id))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRankProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, algorithm, err := h.prepare()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}

	user, err := h.cat.User(request.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ranked, err := core.RateProducts(ctx, cfg, h.cat, algorithm, user, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rating failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichRatings(ranked, cfg.Rating, h.cat.ProductNames()))
}

func (h *toolHandler) handleRateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, algorithm, err := h.prepare()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	product, err := h.productArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var results []*schema.RatingResult
	if userID := request.GetString("user_id", ""); userID != "" {
		user, err := h.cat.User(userID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := core.RateProduct(ctx, cfg, h.cat, algorithm, user, product, h.mgr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rating failed: %v", err)), nil
		}
		results = []*schema.RatingResult{result}
	} else {
		results, err = core.RateUsers(ctx, cfg, h.cat, algorithm, product, h.mgr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rating failed: %v", err)), nil
		}
	}
	return jsonResult(schema.EnrichRatings(results, cfg.Rating, h.cat.ProductNames()))
}

func (h *toolHandler) handleExplainRating(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, algorithm, err := h.prepare()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	user, err := h.cat.User(request.GetString("user_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	product, err := h.productArg(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := algorithm.Rate(user, product, h.cat.Index, cfg.Rating)
	return jsonResult(core.BuildExplanation(result, h.cat, cfg.Rating))
}

func (h *toolHandler) handleListUsers(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, _, err := h.prepare()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(core.BuildUserSummaries(h.cat.UsersInOrder(), cfg.Rating))
}
