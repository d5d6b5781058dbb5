package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

// CursorMarker is the prefix shown on the selected row.
const CursorMarker = "▸ "

// browseState holds the cursor over the game list of the left pane.
// The games themselves are read from selectors on every render.
type browseState struct {
	cursor   int
	showPast bool
}

// games returns the list the left pane is showing.
func (bs browseState) games(sel *selector.Selector) []selector.DecoratedGame {
	if bs.showPast {
		return sel.PastGames("")
	}
	return sel.ActiveGames()
}

// move shifts the cursor by delta, wrapping around n rows.
func (bs browseState) move(delta, n int) browseState {
	if n == 0 {
		bs.cursor = 0
		return bs
	}
	bs.cursor = ((bs.cursor+delta)%n + n) % n
	return bs
}

// clamp keeps the cursor inside a list that may have shrunk.
func (bs browseState) clamp(n int) browseState {
	if bs.cursor >= n {
		bs.cursor = n - 1
	}
	if bs.cursor < 0 {
		bs.cursor = 0
	}
	return bs
}

// selected returns the game under the cursor.
func (bs browseState) selected(games []selector.DecoratedGame) (selector.DecoratedGame, bool) {
	if bs.cursor < 0 || bs.cursor >= len(games) {
		return selector.DecoratedGame{}, false
	}
	return games[bs.cursor], true
}

// View renders the game list. A date header precedes the first game of
// each day.
func (bs browseState) View(games []selector.DecoratedGame, entry store.Entry, loc *time.Location, spinnerView string) string {
	if !entry.Loaded() {
		if entry.Err != "" {
			return errorText.Render("Error: "+entry.Err) + "\n\nPress r to retry"
		}
		return fmt.Sprintf("%s Loading games...", spinnerView)
	}

	var b strings.Builder
	if bs.showPast {
		b.WriteString(headerText.Render("Past games"))
	} else {
		b.WriteString(headerText.Render("Games"))
	}
	if entry.IsFetching {
		b.WriteString(" " + spinnerView)
	}
	if entry.Err != "" {
		b.WriteString("\n" + errorText.Render(entry.Err))
	}

	if len(games) == 0 {
		if bs.showPast {
			b.WriteString("\n\nNo past games")
		} else {
			b.WriteString("\n\nNo games scheduled. Press p for past games")
		}
		return b.String()
	}

	for i, g := range games {
		start := g.Start.In(loc)
		if g.FirstGameOfTheDay {
			b.WriteString("\n\n" + mutedText.Render(start.Format("Mon 2 Jan 2006")))
		}
		b.WriteByte('\n')
		if i == bs.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%d. %s %s", g.Round, start.Format("15:04"), g.Title)
	}
	return b.String()
}

// viewGameDetail renders the right pane for the game under the cursor.
func viewGameDetail(g selector.DecoratedGame, loc *time.Location, showPast bool) string {
	var b strings.Builder
	b.WriteString(headerText.Render(g.Title))
	fmt.Fprintf(&b, "\n%s", mutedText.Render(g.ID))
	fmt.Fprintf(&b, "\n\nRound %d", g.Round)
	fmt.Fprintf(&b, "\n%s - %s",
		g.Start.In(loc).Format("Mon 2 Jan 15:04"),
		g.End.In(loc).Format("15:04"))
	if g.Options.Rows > 0 && g.Options.Columns > 0 {
		fmt.Fprintf(&b, "\nTickets: %d x %d grid", g.Options.Rows, g.Options.Columns)
	}
	if n := len(g.TicketOrder); n > 0 {
		fmt.Fprintf(&b, ", %d tickets", n)
	}
	if !showPast {
		b.WriteString("\n\nPress enter to choose a ticket")
	}
	return b.String()
}
