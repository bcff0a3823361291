package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Sections of the explanation CSV.
const (
	preferenceSection = "preference"
	productTagSection = "product_tag"
	breakdownSection  = "breakdown"
)

// WriteExplanation outputs the contribution breakdown of one rating.
func WriteExplanation(ex schema.Explanation, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ex)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExplanationCSV(w, ex, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for explanations")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExplanationText(w, ex, cfg, fmtFloat)
		}, "Wrote explanation")
	}
}

func writeExplanationText(w io.Writer, ex schema.Explanation, cfg *contract.Config, fmtFloat func(*float64) string) error {
	if _, err := fmt.Fprintf(w, "User: %s\nProduct: %s (#%d)\nAlgorithm: %s\n", ex.UserID, ex.ProductName, ex.ProductID, ex.Algorithm); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rating: %s [%s]\n", fmtFloat(ex.Rating), colorize(ex.Label, cfg)); err != nil {
		return err
	}

	switch {
	case ex.NoInformation:
		_, err := fmt.Fprintln(w, "No product tag carries information about the user's preferences.")
		return err
	case ex.Contradiction:
		if _, err := fmt.Fprintln(w, "Vetoed by:"); err != nil {
			return err
		}
		for _, c := range ex.Contradictions {
			if _, err := fmt.Fprintf(w, "  preference #%d: preference tag #%d vs product tag #%d (%s)\n",
				c.PreferenceID, c.PreferenceTagID, c.ProductTagID, fmtFloat(&c.Value)); err != nil {
				return err
			}
		}
	}

	if err := writeContributionTable(w, "Preference", ex.Preferences, cfg.Precision); err != nil {
		return err
	}
	if err := writeContributionTable(w, "Product Tag", ex.ProductTags, cfg.Precision); err != nil {
		return err
	}
	for _, b := range ex.ByPreference {
		if _, err := fmt.Fprintf(w, "Through %s:\n", b.Name); err != nil {
			return err
		}
		for _, c := range b.ProductTags {
			if _, err := fmt.Fprintf(w, "  %-24s %s %s\n", c.Name, contributionValue(c, cfg.Precision), formatShare(c.Share)); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeContributionTable renders one named contribution list as a table.
func writeContributionTable(w io.Writer, title string, list []schema.ExplainedContribution, precision int) error {
	if len(list) == 0 {
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header([]string{title, "Contribution", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, c := range list {
		data = append(data, []string{c.Name, contributionValue(c, precision), formatShare(c.Share)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func contributionValue(c schema.ExplainedContribution, precision int) string {
	if c.Vetoed {
		return "vetoed"
	}
	return formatSigned(c.Value, precision)
}

// writeExplanationCSV flattens the explanation to one row per contribution.
func writeExplanationCSV(w io.Writer, ex schema.Explanation, fmtFloat func(*float64) string) error {
	header := []string{"section", "preference_id", "preference", "product_tag_id", "product_tag", "value", "share", "vetoed"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		write := func(section string, prefID *int64, prefName string, tag *schema.ExplainedContribution) error {
			rec := []string{section, "", prefName, "", "", "", "", ""}
			if prefID != nil {
				rec[1] = strconv.FormatInt(*prefID, 10)
			}
			if tag != nil {
				if section != preferenceSection {
					rec[3] = strconv.FormatInt(tag.ID, 10)
					rec[4] = tag.Name
				}
				rec[5] = csvFloat(tag.Value, fmtFloat)
				rec[6] = csvFloat(tag.Share, fmtFloat)
				rec[7] = strconv.FormatBool(tag.Vetoed)
			}
			return cw.Write(rec)
		}
		for _, p := range ex.Preferences {
			if err := write(preferenceSection, &p.ID, p.Name, &p); err != nil {
				return err
			}
		}
		for _, t := range ex.ProductTags {
			if err := write(productTagSection, nil, "", &t); err != nil {
				return err
			}
		}
		for _, b := range ex.ByPreference {
			for _, t := range b.ProductTags {
				if err := write(breakdownSection, &b.PreferenceID, b.Name, &t); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
