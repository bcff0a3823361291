package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
)

// allUsers is the user id recorded for runs that rate one product for every user.
const allUsers = "*"

// rateTask is one (user, product) pair with the slot its result goes to.
type rateTask struct {
	slot    int
	user    *schema.User
	product *schema.Product
}

// RateProducts rates every product of the catalog for one user and returns the results
// ranked, truncated to cfg.ResultLimit.
func RateProducts(ctx context.Context, cfg *contract.Config, cat *catalog.Catalog, algorithm algo.RatingAlgorithm, user *schema.User, mgr contract.StoreManager) ([]*schema.RatingResult, error) {
	products := cat.ProductsInOrder()
	tasks := make([]rateTask, len(products))
	for i, p := range products {
		tasks[i] = rateTask{slot: i, user: user, product: p}
	}

	results, err := runRating(ctx, cfg, cat, algorithm, user.ID, tasks, mgr)
	if err != nil {
		return nil, err
	}
	return algo.RankResults(results, cfg.ResultLimit), nil
}

// RateProduct rates a single product for a single user as its own tracked run.
func RateProduct(ctx context.Context, cfg *contract.Config, cat *catalog.Catalog, algorithm algo.RatingAlgorithm, user *schema.User, product *schema.Product, mgr contract.StoreManager) (*schema.RatingResult, error) {
	results, err := runRating(ctx, cfg, cat, algorithm, user.ID, []rateTask{{user: user, product: product}}, mgr)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// RateUsers rates one product for every user of the catalog and returns the results
// ranked, truncated to cfg.ResultLimit.
func RateUsers(ctx context.Context, cfg *contract.Config, cat *catalog.Catalog, algorithm algo.RatingAlgorithm, product *schema.Product, mgr contract.StoreManager) ([]*schema.RatingResult, error) {
	users := cat.UsersInOrder()
	tasks := make([]rateTask, len(users))
	for i, u := range users {
		tasks[i] = rateTask{slot: i, user: u, product: product}
	}

	results, err := runRating(ctx, cfg, cat, algorithm, allUsers, tasks, mgr)
	if err != nil {
		return nil, err
	}
	return algo.RankResults(results, cfg.ResultLimit), nil
}

// runRating tracks a run around rateAll when a store is configured.
func runRating(ctx context.Context, cfg *contract.Config, cat *catalog.Catalog, algorithm algo.RatingAlgorithm, userID string, tasks []rateTask, mgr contract.StoreManager) ([]*schema.RatingResult, error) {
	log := contract.ComponentLogger("rater")
	ctx = contextWithStoreManager(ctx, mgr)

	// --- 0. Begin Run Tracking (if configured) ---
	store := recommendationStore(mgr)
	if store != nil {
		runID := uuid.NewString()
		configParams := map[string]any{
			"algorithm":               algorithm.Name(),
			"catalog":                 cfg.CatalogPath,
			"mean_user_preference":    cfg.Rating.MeanUserPreference,
			"max_allowed_association": cfg.Rating.MaxAllowedAssociation,
			"mean_product_rating":     cfg.Rating.MeanProductRating,
			"rating_scale":            cfg.Rating.RatingScale,
			"workers":                 cfg.Workers,
			"result_limit":            cfg.ResultLimit,
		}
		if err := store.BeginRun(runID, userID, algorithm.Name(), time.Now(), configParams); err != nil {
			contract.LogWarn("Run tracking initialization failed", err)
		} else {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Rating ---
	start := time.Now()
	results, err := rateAll(ctx, cfg, cat.Index, algorithm, tasks)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rated", len(results)).Dur("elapsed", time.Since(start)).Str("algorithm", algorithm.Name()).Msg("rating finished")

	// --- 2. Record and End Run Tracking ---
	if runID, ok := getRunID(ctx); ok {
		recordResults(ctx, runID, results)
		if err := store.EndRun(runID, time.Now(), len(results)); err != nil {
			contract.LogWarn("Failed to finalize run tracking", err)
		}
	}
	return results, nil
}

// rateAll rates all tasks in parallel using a worker pool.
// It spawns cfg.Workers goroutines and returns results in task order.
// Cancelling the context stops workers from taking new tasks.
func rateAll(ctx context.Context, cfg *contract.Config, index algo.AssociationLookup, algorithm algo.RatingAlgorithm, tasks []rateTask) ([]*schema.RatingResult, error) {
	taskCh := make(chan rateTask, len(tasks))
	results := make([]*schema.RatingResult, len(tasks))
	var wg sync.WaitGroup

	workers := max(cfg.Workers, 1)
	for range workers {
		wg.Go(func() {
			for t := range taskCh {
				if ctx.Err() != nil {
					continue
				}
				// Each worker writes a distinct slot
				results[t.slot] = algorithm.Rate(t.user, t.product, index, cfg.Rating)
			}
		})
	}

	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rating cancelled: %w", err)
	}
	return results, nil
}

// recordResults stores every rating of a run along with its contributions.
func recordResults(ctx context.Context, runID string, results []*schema.RatingResult) {
	store := recommendationStore(storeManagerFromContext(ctx))
	if store == nil {
		return
	}
	now := time.Now()
	for _, r := range results {
		if err := store.RecordRecommendation(ToRecommendationRecord(runID, r, now)); err != nil {
			logTrackingError("RecordRecommendation", r, err)
			continue
		}
		if rows := ToContributionRows(runID, r); len(rows) > 0 {
			if err := store.RecordContributions(rows); err != nil {
				logTrackingError("RecordContributions", r, err)
			}
		}
	}
}

// ToRecommendationRecord converts a result into a storable row. Non-finite values are
// stored as zero and flagged.
func ToRecommendationRecord(runID string, r *schema.RatingResult, ratedAt time.Time) schema.RecommendationRecord {
	rec := schema.RecommendationRecord{
		RunID:         runID,
		UserID:        r.UserID,
		ProductID:     r.ProductID,
		Defined:       !math.IsNaN(r.Rating),
		Contradiction: r.Contradiction,
		RatedAt:       ratedAt,
	}
	if rec.Defined {
		rec.Score = r.Rating
	}
	if !math.IsNaN(r.RawRating) && !math.IsInf(r.RawRating, 0) {
		rec.RawScore = r.RawRating
	}
	return rec
}

// ToContributionRows flattens the product tag contributions of a result into rows,
// one total row per tag followed by one row per preference.
func ToContributionRows(runID string, r *schema.RatingResult) []schema.ContributionRow {
	var rows []schema.ContributionRow
	for _, c := range algo.ProductTagContributions(r) {
		rec := r.ProductTagContributions[c.ID]
		rows = append(rows, contributionRow(runID, r, c.ID, schema.TotalPreferenceID, rec.Total))
		for _, pc := range algo.PreferenceContributionsForTag(rec) {
			rows = append(rows, contributionRow(runID, r, c.ID, pc.ID, pc.Value))
		}
	}
	return rows
}

func contributionRow(runID string, r *schema.RatingResult, tagID, prefID int64, value float64) schema.ContributionRow {
	row := schema.ContributionRow{RunID: runID, UserID: r.UserID, ProductID: r.ProductID, ProductTagID: tagID, PreferenceID: prefID}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		row.Vetoed = true
		return row
	}
	row.Value = value
	return row
}

func recommendationStore(mgr contract.StoreManager) contract.RecommendationStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetRecommendationStore()
}

// logTrackingError logs store errors without disrupting rating.
func logTrackingError(operation string, r *schema.RatingResult, err error) {
	contract.LogWarn(fmt.Sprintf("Run tracking failed for %s on user %s product %d", operation, r.UserID, r.ProductID), err)
}
