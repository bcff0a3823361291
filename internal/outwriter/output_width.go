package outwriter

import (
	"os"

	"github.com/huangsam/prefscore/internal/contract"
	"golang.org/x/term"
)

// Bounds for the name column of a table.
const (
	minNameWidth = 15
	maxNameWidth = 60
)

// GetMaxTableNameWidth calculates the maximum width for product names in table output
// based on terminal width and the width taken by the other columns.
func GetMaxTableNameWidth(cfg *contract.Config, fixedWidth int) int {
	termWidth := cfg.Width
	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // CI and pipes
		} else {
			termWidth = detectedWidth
		}
	}

	// Table borders, separators and padding
	available := termWidth - fixedWidth - 20
	return min(max(available, minNameWidth), maxNameWidth)
}
