package outwriter

import (
	"os"

	"github.com/huangsam/rubric/internal/contract"
	"golang.org/x/term"
)

// Bounds for the title column of tables.
const (
	minTitleWidth = 15
	maxTitleWidth = 70
)

// terminalWidth returns the width override from cfg, the detected terminal
// width, or 80 when neither is available.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // CI and pipes
	}
	return detected
}

// getMaxTitleWidth calculates how wide the title or source column may be once
// the fixed columns of a table are accounted for.
func getMaxTitleWidth(cfg *contract.Config, fixedColumns int) int {
	// Borders, separators and padding
	available := terminalWidth(cfg) - fixedColumns - 20
	if available < minTitleWidth {
		return minTitleWidth
	}
	if available > maxTitleWidth {
		return maxTitleWidth
	}
	return available
}
