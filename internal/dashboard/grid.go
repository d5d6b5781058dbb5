package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/selector"
)

// minCellWidth is the narrowest a grid cell is drawn.
const minCellWidth = 6

// gridState holds the cell cursor on one ticket.
type gridState struct {
	game   int64
	ticket int64
	row    int
	col    int
}

// cell returns the cell index under the cursor.
func (gs gridState) cell(opts bingo.Options) int {
	return gs.row*opts.Columns + gs.col
}

// move shifts the cursor, staying inside the grid.
func (gs gridState) move(dRow, dCol int, opts bingo.Options) gridState {
	if opts.Rows <= 0 || opts.Columns <= 0 {
		return gs
	}
	gs.row = min(max(gs.row+dRow, 0), opts.Rows-1)
	gs.col = min(max(gs.col+dCol, 0), opts.Columns-1)
	return gs
}

// View renders the ticket grid. width is the usable pane width.
func (gs gridState) View(sel *selector.Selector, width int, now time.Time, spinnerView string) string {
	game := sel.Game(gs.game)
	ticket := sel.Ticket(gs.game, gs.ticket)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  Ticket %d", headerText.Render(game.Title), ticket.Number)

	if ticket.Placeholder {
		b.WriteString("\n\n" + errorText.Render("This ticket is no longer available"))
		return b.String()
	}

	detail := ticket.Detail
	if len(ticket.Tracks) == 0 {
		if detail.Err != "" {
			b.WriteString("\n\n" + errorText.Render("Error: "+detail.Err) + "\n\nPress r to retry")
			return b.String()
		}
		b.WriteString("\n\n" + spinnerView + " Loading ticket...")
		return b.String()
	}
	b.WriteString("\n" + statusLine(detail, now, spinnerView) + "\n")

	opts := game.Options
	if opts.Rows <= 0 || opts.Columns <= 0 {
		opts = fallbackOptions(len(ticket.Tracks))
	}
	cellWidth := width/opts.Columns - 2
	if cellWidth < minCellWidth {
		cellWidth = minCellWidth
	}

	rows := make([]string, 0, opts.Rows)
	for r := 0; r < opts.Rows; r++ {
		cells := make([]string, 0, opts.Columns)
		for c := 0; c < opts.Columns; c++ {
			idx := r*opts.Columns + c
			label := ""
			if idx < len(ticket.Tracks) {
				label = cellLabel(ticket.Tracks[idx], cellWidth)
			}
			style := CellStyle(opts.ColourScheme, cellWidth, ticket.Checked.IsSet(idx), r == gs.row && c == gs.col)
			cells = append(cells, style.Render(label))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	fmt.Fprintf(&b, "\n%d of %d checked", ticket.Checked.Count(), opts.Cells())
	return b.String()
}

// cellLabel fits a track's title and artist on two lines of width.
func cellLabel(t bingo.Track, width int) string {
	return truncate(t.Title, width) + "\n" + truncate(t.Artist, width)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// fallbackOptions picks a grid shape when the game has none: five
// columns, as many rows as needed.
func fallbackOptions(cells int) bingo.Options {
	const cols = 5
	rows := (cells + cols - 1) / cols
	if rows == 0 {
		rows = 1
	}
	return bingo.Options{Rows: rows, Columns: cols}
}
