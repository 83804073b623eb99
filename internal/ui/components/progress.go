package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/rob637/passcpa-sub012/internal/ui/theme"
)

// ProgressBar displays a labelled horizontal progress bar.
type ProgressBar struct {
	Label       string
	LabelWidth  int     // pad labels to this many cells; 0 = natural width
	Percent     float64 // 0-100
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		label := p.Label
		if pad := p.LabelWidth - lipgloss.Width(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		result += theme.Body.Render(label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	result += theme.Bar(p.Percent, barWidth)

	if p.ShowPercent {
		result += theme.Hint.Italic(false).Render(fmt.Sprintf("  %3.0f%%", p.Percent))
	}

	return result
}
