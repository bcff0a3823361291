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

// WriteUsers outputs user summaries, dispatching based on the output format configured.
func WriteUsers(summaries []schema.UserSummary, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summaries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUsersCSV(w, summaries, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for users")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUsersTable(w, summaries, cfg, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

func writeUsersTable(w io.Writer, summaries []schema.UserSummary, cfg *contract.Config, fmtFloat func(*float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"User", "Name", "Pro", "Against", "Neutral", "Offset", "History"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg, 50)
	var data [][]string
	for _, s := range summaries {
		data = append(data, []string{
			s.ID,
			contract.TruncateText(s.Name, nameWidth),
			fmt.Sprintf(intFmt, s.Count(schema.ProStance)),
			fmt.Sprintf(intFmt, s.Count(schema.AgainstStance)),
			fmt.Sprintf(intFmt, s.Count(schema.NeutralStance)),
			fmtFloat(&s.TotalAbsoluteOffset),
			fmt.Sprintf(intFmt, s.HistorySize),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d users\n", len(summaries))
	return err
}

// writeUsersCSV writes one row per scored preference.
func writeUsersCSV(w io.Writer, summaries []schema.UserSummary, fmtFloat func(*float64) string) error {
	header := []string{"user", "name", "preference_id", "preference", "score", "stance"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range summaries {
			for _, p := range s.Preferences {
				rec := []string{
					s.ID,
					s.Name,
					strconv.FormatInt(p.ID, 10),
					p.Name,
					fmtFloat(&p.Score),
					string(p.Stance),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
