package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/internal/parquet"
)

// Suffixes of the files written by ExportStore.
const (
	runsExportSuffix            = ".runs.parquet"
	recommendationsExportSuffix = ".recommendations.parquet"
	contributionsExportSuffix   = ".contributions.parquet"
)

// ExportStore exports every table of the store to Parquet files named after outputPrefix
// and reports progress to w.
func ExportStore(w io.Writer, store contract.RecommendationStore, outputPrefix string) error {
	if outputPrefix == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("recommendation store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no rating runs found to export")
	}

	fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)
	fmt.Fprintf(w, "Total recommendations: %d\n", status.TotalRecommendations)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	runsFile := outputPrefix + runsExportSuffix
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	recs, err := store.GetAllRecommendations()
	if err != nil {
		return fmt.Errorf("failed to retrieve recommendations: %w", err)
	}
	recsFile := outputPrefix + recommendationsExportSuffix
	if err := parquet.WriteRecommendationsParquet(parquet.ConvertRecommendationRecords(recs), recsFile); err != nil {
		return fmt.Errorf("failed to write recommendations: %w", err)
	}
	fmt.Fprintf(w, "Exported %d recommendations to: %s\n", len(recs), recsFile)

	contributions, err := store.GetAllContributions()
	if err != nil {
		return fmt.Errorf("failed to retrieve contributions: %w", err)
	}
	contributionsFile := outputPrefix + contributionsExportSuffix
	if err := parquet.WriteContributionsParquet(parquet.ConvertContributionRows(contributions), contributionsFile); err != nil {
		return fmt.Errorf("failed to write contributions: %w", err)
	}
	fmt.Fprintf(w, "Exported %d contribution rows to: %s\n", len(contributions), contributionsFile)

	fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
