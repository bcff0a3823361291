// Package core has core logic for rating, ranking and explaining products.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/internal/outwriter"
	"github.com/huangsam/prefscore/schema"
)

// ErrMissingUser is returned when a command needs a user and none is configured.
var ErrMissingUser = errors.New("a user is required (use --user)")

// ErrMissingProduct is returned when a command needs a product and none is configured.
var ErrMissingProduct = errors.New("a product is required (use --product)")

// ExecutorFunc defines the function signature for executing commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteRank rates every product for the configured user and prints the ranking.
// It serves as the main entry point for the 'rank' command.
func ExecuteRank(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	cat, algorithm, err := LoadCatalogAndAlgorithm(cfg)
	if err != nil {
		return err
	}
	user, err := requireUser(cfg, cat)
	if err != nil {
		return err
	}
	ranked, err := RateProducts(ctx, cfg, cat, algorithm, user, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteRanking(ranked, cat, cfg, time.Since(start))
}

// ExecuteRate rates the configured product for the configured user. Without a user
// it rates the product for every user in the catalog.
func ExecuteRate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	cat, algorithm, err := LoadCatalogAndAlgorithm(cfg)
	if err != nil {
		return err
	}
	product, err := requireProduct(cfg, cat)
	if err != nil {
		return err
	}

	if cfg.UserID == "" {
		ranked, err := RateUsers(ctx, cfg, cat, algorithm, product, mgr)
		if err != nil {
			return err
		}
		return outwriter.WriteRanking(ranked, cat, cfg, time.Since(start))
	}

	user, err := requireUser(cfg, cat)
	if err != nil {
		return err
	}
	result, err := RateProduct(ctx, cfg, cat, algorithm, user, product, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteRanking([]*schema.RatingResult{result}, cat, cfg, time.Since(start))
}

// ExecuteExplain rates one product for one user and prints where the rating comes from.
func ExecuteExplain(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	cat, algorithm, err := LoadCatalogAndAlgorithm(cfg)
	if err != nil {
		return err
	}
	user, err := requireUser(cfg, cat)
	if err != nil {
		return err
	}
	product, err := requireProduct(cfg, cat)
	if err != nil {
		return err
	}
	result := algorithm.Rate(user, product, cat.Index, cfg.Rating)
	return outwriter.WriteExplanation(BuildExplanation(result, cat, cfg.Rating), cfg)
}

// ExecuteUsers lists the users of the catalog with the stance behind each preference.
func ExecuteUsers(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	cat, _, err := LoadCatalogAndAlgorithm(cfg)
	if err != nil {
		return err
	}
	return outwriter.WriteUsers(BuildUserSummaries(cat.UsersInOrder(), cfg.Rating), cfg)
}

// LoadCatalogAndAlgorithm loads the configured catalog and resolves the configured algorithm.
func LoadCatalogAndAlgorithm(cfg *contract.Config) (*catalog.Catalog, algo.RatingAlgorithm, error) {
	algorithm, err := algo.Lookup(cfg.Algorithm)
	if err != nil {
		return nil, nil, err
	}
	if cfg.CatalogPath == "" {
		return nil, nil, errors.New("a catalog is required (use --catalog)")
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}
	return cat, algorithm, nil
}

func requireUser(cfg *contract.Config, cat *catalog.Catalog) (*schema.User, error) {
	if cfg.UserID == "" {
		return nil, ErrMissingUser
	}
	return cat.User(cfg.UserID)
}

func requireProduct(cfg *contract.Config, cat *catalog.Catalog) (*schema.Product, error) {
	if !cfg.HasProduct {
		return nil, ErrMissingProduct
	}
	p, err := cat.Product(cfg.ProductID)
	if err != nil {
		return nil, fmt.Errorf("cannot rate: %w", err)
	}
	return p, nil
}
