// Package theme holds the lipgloss styles used by command output.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
)

// Color palette
var (
	Primary   = lipgloss.Color("#2563EB") // Blue
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Warning   = lipgloss.Color("#EAB308") // Amber
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Rule = lipgloss.NewStyle().
		Foreground(Border)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Weak = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

// ForReason returns the style used to tag a selected item.
func ForReason(r selector.Reason) lipgloss.Style {
	switch r {
	case selector.ReasonMissed:
		return Incorrect
	case selector.ReasonDue:
		return lipgloss.NewStyle().Foreground(Accent)
	case selector.ReasonWeakArea:
		return Weak
	}
	return lipgloss.NewStyle().Foreground(Secondary)
}

// ForStatus returns the style for a review status.
func ForStatus(s spacedrep.ReviewStatus) lipgloss.Style {
	switch s {
	case spacedrep.ReviewOverdue:
		return Incorrect
	case spacedrep.ReviewDue:
		return lipgloss.NewStyle().Foreground(Accent)
	case spacedrep.ReviewNew:
		return lipgloss.NewStyle().Foreground(Secondary)
	}
	return Hint
}

// ForRating returns the style for a rating name.
func ForRating(r spacedrep.Rating) lipgloss.Style {
	switch r {
	case spacedrep.Again:
		return Incorrect
	case spacedrep.Hard:
		return Weak
	}
	return Correct
}

// Bar renders a width-cell progress bar for pct (0-100).
func Bar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(pct/100*float64(width) + 0.5)
	filled = max(0, min(width, filled))
	return ProgressFilled.Render(strings.Repeat("█", filled)) +
		ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// HRule renders a horizontal rule of width cells.
func HRule(width int) string {
	return Rule.Render(strings.Repeat("─", max(0, width)))
}
