package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/prefscore/schema"
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold)
	GoodColor      = color.New(color.FgCyan)
	NeutralColor   = color.New(color.FgWhite)
	PoorColor      = color.New(color.FgYellow)
	VetoedColor    = color.New(color.FgRed, color.Bold)
	UnknownColor   = color.New(color.FgHiBlack)
)

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(label string) string {
	switch label {
	case schema.ExcellentLabel:
		return ExcellentColor.Sprint(label)
	case schema.GoodLabel:
		return GoodColor.Sprint(label)
	case schema.NeutralLabel:
		return NeutralColor.Sprint(label)
	case schema.PoorLabel:
		return PoorColor.Sprint(label)
	case schema.VetoedLabel:
		return VetoedColor.Sprint(label)
	default:
		return UnknownColor.Sprint(label)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the recommendation store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".prefscore.db"
	}
	return filepath.Join(homeDir, ".prefscore.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
