package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderStepProgress renders a block bar like [██░] 2/3 with one cell per
// step. A finished path is drawn green, a started one yellow.
func RenderStepProgress(done, total int) string {
	if total <= 0 {
		return Dim("[] 0/0")
	}
	if done < 0 {
		done = 0
	}
	if done > total {
		done = total
	}

	bar := strings.Repeat(filledBlock, done) + strings.Repeat(emptyBlock, total-done)

	style := StyleDim
	switch {
	case done == total:
		style = StyleGreen
	case done > 0:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), done, total)
}
