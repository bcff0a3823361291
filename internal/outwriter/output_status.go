package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/prefscore/internal/contract"
	"github.com/huangsam/prefscore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteStoreStatus prints recommendation store status information.
func WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusCSV(w, status)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for store status (use 'store export')")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatusText(w, status)
		}, "Wrote status")
	}
}

// sortedTables returns the table names of a status in lexical order.
func sortedTables(status schema.StoreStatus) []string {
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	return tables
}

func writeStatusText(w io.Writer, status schema.StoreStatus) error {
	fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return nil
	}
	fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Fprintf(w, "Last Run ID: %s\n", status.LastRunID)
		fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format(contract.DateTimeFormat))
		fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format(contract.DateTimeFormat))
		fmt.Fprintf(w, "Total Recommendations: %d\n", status.TotalRecommendations)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Table", "Rows"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight}
	})
	for _, name := range sortedTables(status) {
		if err := table.Append([]string{name, strconv.FormatInt(status.TableSizes[name], 10)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// writeStatusCSV writes the status as key/value rows.
func writeStatusCSV(w io.Writer, status schema.StoreStatus) error {
	return writeCSVWithHeader(w, []string{"key", "value"}, func(cw *csv.Writer) error {
		rows := [][]string{
			{"backend", status.Backend},
			{"connected", strconv.FormatBool(status.Connected)},
			{"total_runs", strconv.Itoa(status.TotalRuns)},
			{"last_run_id", status.LastRunID},
			{"total_recommendations", strconv.Itoa(status.TotalRecommendations)},
		}
		if status.TotalRuns > 0 {
			rows = append(rows,
				[]string{"last_run_time", status.LastRunTime.Format(contract.DateTimeFormat)},
				[]string{"oldest_run_time", status.OldestRunTime.Format(contract.DateTimeFormat)},
			)
		}
		for _, name := range sortedTables(status) {
			rows = append(rows, []string{"rows." + name, strconv.FormatInt(status.TableSizes[name], 10)})
		}
		return cw.WriteAll(rows)
	})
}
