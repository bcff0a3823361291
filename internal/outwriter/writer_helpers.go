// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/prefscore/internal/contract"
)

// notAvailable is shown for undefined or non-finite values.
const notAvailable = "-"

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatters creates the common formatter closures used across multiple output types.
// The float formatter renders nil as notAvailable so undefined ratings stay visible.
func createFormatters(precision int) (fmtFloat func(*float64) string, intFmt string) {
	numFmt := "%.*f"
	intFmt = "%d"
	fmtFloat = func(v *float64) string {
		if v == nil {
			return notAvailable
		}
		return fmt.Sprintf(numFmt, precision, *v)
	}
	return fmtFloat, intFmt
}

// formatSigned renders a contribution with an explicit sign.
func formatSigned(v *float64, precision int) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%+.*f", precision, *v)
}

// formatShare renders a share in [-1, 1] as a signed percentage.
func formatShare(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return fmt.Sprintf("%+.1f%%", *v*100)
}

// colorize applies the label colors when enabled.
func colorize(label string, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(label)
	}
	return label
}

// joinOrNone joins parts for a table cell.
func joinOrNone(parts []string, sep string) string {
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, sep)
}
