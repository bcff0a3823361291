package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/prefscore/core/algo"
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/internal/parquet"
	"github.com/huangsam/prefscore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// topNTags is how many product tags are named per ranked product.
const topNTags = 3

// rankedRow is a ranked rating with the product tags that drive it.
type rankedRow struct {
	schema.EnrichedRating
	TopTags []schema.ExplainedContribution `json:"top_tags"`
}

// WriteRanking outputs ranked ratings, dispatching based on the output format configured.
func WriteRanking(results []*schema.RatingResult, cat *catalog.Catalog, cfg *contract.Config, duration time.Duration) error {
	rows := buildRankedRows(results, cat, cfg.Rating)
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingCSV(w, rows, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		enriched := make([]schema.EnrichedRating, len(rows))
		for i, r := range rows {
			enriched[i] = r.EnrichedRating
		}
		if err := parquet.WriteRankedRatingsParquet(parquet.ConvertEnrichedRatings(enriched), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankingTable(w, rows, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
	return nil
}

// buildRankedRows enriches results with rank, label and the strongest product tags.
func buildRankedRows(results []*schema.RatingResult, cat *catalog.Catalog, cfg schema.RatingConfig) []rankedRow {
	enriched := schema.EnrichRatings(results, cfg, cat.ProductNames())
	rows := make([]rankedRow, len(results))
	for i, r := range results {
		rows[i] = rankedRow{EnrichedRating: enriched[i], TopTags: topProductTags(r, cat)}
	}
	return rows
}

// topProductTags returns the non-zero product tag contributions with the largest magnitude.
func topProductTags(r *schema.RatingResult, cat *catalog.Catalog) []schema.ExplainedContribution {
	var top []schema.ExplainedContribution
	for _, c := range algo.ProductTagContributions(r) {
		if c.Value == 0 {
			continue
		}
		top = append(top, schema.ExplainedContribution{
			ID:     c.ID,
			Name:   cat.ProductTagName(c.ID),
			Value:  schema.FiniteOrNil(c.Value),
			Vetoed: math.IsInf(c.Value, -1),
		})
		if len(top) == topNTags {
			break
		}
	}
	return top
}

// formatTopTags renders tag contributions as "name(+0.42) > name(-0.10)".
func formatTopTags(tags []schema.ExplainedContribution, precision int) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		if t.Vetoed {
			parts = append(parts, t.Name+"(vetoed)")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", t.Name, formatSigned(t.Value, precision)))
	}
	return joinOrNone(parts, " > ")
}

// hasManyUsers reports whether rows rate more than one user.
func hasManyUsers(rows []rankedRow) bool {
	for _, r := range rows {
		if r.UserID != rows[0].UserID {
			return true
		}
	}
	return false
}

// writeRankingTable generates and writes the human-readable table.
func writeRankingTable(w io.Writer, rows []rankedRow, cfg *contract.Config, fmtFloat func(*float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	manyUsers := hasManyUsers(rows)
	headers := []string{"Rank"}
	fixedWidth := 45 // Rank + Score + Label + Top Tags
	if manyUsers {
		headers = append(headers, "User")
		fixedWidth += 12
	}
	headers = append(headers, "Product", "Score", "Label", "Top Tags")
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg, fixedWidth)
	var undefined, vetoed int
	var data [][]string
	for _, r := range rows {
		row := []string{strconv.Itoa(r.Rank)}
		if manyUsers {
			row = append(row, r.UserID)
		}
		row = append(row,
			contract.TruncateText(productLabel(r.EnrichedRating), nameWidth),
			fmtFloat(r.Score),
			colorize(r.Label, cfg),
			formatTopTags(r.TopTags, cfg.Precision),
		)
		data = append(data, row)

		switch r.Label {
		case schema.UnknownLabel:
			undefined++
		case schema.VetoedLabel:
			vetoed++
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d ratings (%d without information, %d vetoed)\n", len(rows), undefined, vetoed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rating completed in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend); err != nil {
		return err
	}
	return nil
}

// productLabel names a product by name and id, or id alone when unnamed.
func productLabel(r schema.EnrichedRating) string {
	if r.ProductName == "" {
		return fmt.Sprintf("#%d", r.ProductID)
	}
	return fmt.Sprintf("%s (#%d)", r.ProductName, r.ProductID)
}

// writeRankingCSV writes ranked ratings in CSV format. Undefined scores are empty cells.
func writeRankingCSV(w io.Writer, rows []rankedRow, fmtFloat func(*float64) string) error {
	header := []string{
		"rank",
		"user",
		"product_id",
		"product",
		"score",
		"raw_score",
		"label",
		"contradiction",
		"top_tags",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			tags := make([]string, len(r.TopTags))
			for i, t := range r.TopTags {
				tags[i] = t.Name
			}
			rec := []string{
				strconv.Itoa(r.Rank),
				r.UserID,
				strconv.FormatInt(r.ProductID, 10),
				r.ProductName,
				csvFloat(r.Score, fmtFloat),
				csvFloat(r.RawScore, fmtFloat),
				r.Label,
				strconv.FormatBool(r.Contradiction),
				strings.Join(tags, "|"),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func csvFloat(v *float64, fmtFloat func(*float64) string) string {
	if v == nil {
		return ""
	}
	return fmtFloat(v)
}
