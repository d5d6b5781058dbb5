package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/bingo/internal/bingo"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newTable returns a table styled for w: bordered on a terminal, bare
// columns when output is piped.
func newTable(w io.Writer, headers ...string) *table.Table {
	t := table.New().
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if isTerminal(w) {
		return t.Border(lipgloss.RoundedBorder()).BorderRow(false)
	}
	return t.Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false)
}

func printTable(w io.Writer, t *table.Table) {
	_, _ = fmt.Fprintln(w, t.Render())
}

// ownerLabel describes who holds a ticket as seen by identity.
func ownerLabel(t bingo.Ticket, identity bingo.Identity) string {
	switch {
	case !t.Claimed():
		return "free"
	case identity != bingo.Anonymous && t.Owner == identity:
		return "mine"
	default:
		return fmt.Sprintf("taken (#%d)", t.Owner)
	}
}

// ago renders a duration in whole days, or hours under a day.
func ago(d time.Duration) string {
	switch {
	case d < time.Hour:
		return "just now"
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

// bar draws count as a share of width block characters.
func bar(count, maxCount, width int) string {
	if maxCount <= 0 || count <= 0 {
		return ""
	}
	n := count * width / maxCount
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
