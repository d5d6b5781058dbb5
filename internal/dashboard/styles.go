package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/bingo/internal/bingo"
)

// MinLeftWidth is the minimum character width for the left pane.
const MinLeftWidth = 28

// Accent colors for the game colour schemes. Unknown schemes use blue.
var schemeColors = map[string]lipgloss.AdaptiveColor{
	"blue":   {Light: "4", Dark: "12"},
	"cyan":   {Light: "6", Dark: "14"},
	"green":  {Light: "2", Dark: "10"},
	"grey":   {Light: "240", Dark: "245"},
	"orange": {Light: "208", Dark: "208"},
	"pink":   {Light: "205", Dark: "213"},
	"purple": {Light: "5", Dark: "13"},
	"red":    {Light: "1", Dark: "9"},
	"yellow": {Light: "3", Dark: "11"},
}

var (
	mutedText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	errorText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})
	flashText  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "208", Dark: "208"})
	headerText = lipgloss.NewStyle().Bold(true)
	mineText   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
)

// SchemeColor returns the accent color of a game colour scheme.
func SchemeColor(scheme string) lipgloss.AdaptiveColor {
	if c, ok := schemeColors[strings.ToLower(scheme)]; ok {
		return c
	}
	return schemeColors["blue"]
}

// OwnerBadge returns a styled ownership label for a ticket as seen by identity.
func OwnerBadge(t bingo.Ticket, identity bingo.Identity) string {
	switch {
	case !t.Claimed():
		return mutedText.Render("free")
	case identity != bingo.Anonymous && t.Owner == identity:
		return mineText.Render("mine")
	default:
		return errorText.Render("taken")
	}
}

// CellStyle returns the style of one grid cell.
func CellStyle(scheme string, width int, checked, selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Width(width).
		Height(2).
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
	if checked {
		s = s.Background(SchemeColor(scheme)).
			Foreground(lipgloss.AdaptiveColor{Light: "15", Dark: "0"})
	}
	if selected {
		s = s.BorderStyle(lipgloss.ThickBorder()).BorderForeground(SchemeColor(scheme))
	}
	return s
}

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths calculates the left and right pane widths from a total width.
// Left pane gets 1/3 (minimum MinLeftWidth), right pane gets the rest.
func PaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth / 3
	if left < MinLeftWidth {
		left = MinLeftWidth
	}
	right = totalWidth - left
	if right < 0 {
		right = 0
	}
	return left, right
}
