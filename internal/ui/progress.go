package ui

import (
	"fmt"
	"math/big"
	"strings"
)

// ProgressBar draws done out of total as a bar of width cells with a
// percentage, e.g. "███████░░░  70.0%". A zero total renders empty.
func ProgressBar(done, total *big.Int, width int) string {
	if width < 1 {
		width = 1
	}
	frac := 0.0
	if total != nil && total.Sign() > 0 && done != nil {
		f, _ := new(big.Rat).SetFrac(done, total).Float64()
		frac = min(max(f, 0), 1)
	}
	filled := int(frac * float64(width))
	bar := StyleSuccess.Render(strings.Repeat("█", filled)) +
		StyleMeta.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %5.1f%%", bar, frac*100)
}
