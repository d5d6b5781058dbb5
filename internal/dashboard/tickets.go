package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

// ticketsState holds the cursor over the ticket list of one game.
type ticketsState struct {
	game   int64
	cursor int
}

func (ts ticketsState) move(delta, n int) ticketsState {
	if n == 0 {
		ts.cursor = 0
		return ts
	}
	ts.cursor = ((ts.cursor+delta)%n + n) % n
	return ts
}

func (ts ticketsState) selected(tickets []bingo.Ticket) (bingo.Ticket, bool) {
	if ts.cursor < 0 || ts.cursor >= len(tickets) {
		return bingo.Ticket{}, false
	}
	return tickets[ts.cursor], true
}

// View renders the ticket list with ownership and pending operations.
func (ts ticketsState) View(sel *selector.Selector, identity bingo.Identity, now time.Time, spinnerView string) string {
	game := sel.Game(ts.game)
	entry := sel.TicketsStatus(ts.game)
	tickets := sel.Tickets(ts.game)

	var b strings.Builder
	b.WriteString(headerText.Render(game.Title))
	if mine := len(sel.MyTickets(ts.game, identity)); mine > 0 {
		fmt.Fprintf(&b, "  %s", mineText.Render(fmt.Sprintf("%d mine", mine)))
	}

	if !entry.Loaded() && len(tickets) == 0 {
		if entry.Err != "" {
			b.WriteString("\n\n" + errorText.Render("Error: "+entry.Err) + "\n\nPress r to retry")
			return b.String()
		}
		b.WriteString("\n\n" + spinnerView + " Loading tickets...")
		return b.String()
	}

	b.WriteString("\n" + statusLine(entry, now, spinnerView))

	if len(tickets) == 0 {
		b.WriteString("\n\nNo tickets for this game")
		return b.String()
	}

	b.WriteByte('\n')
	for i, t := range tickets {
		b.WriteByte('\n')
		if i == ts.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "Ticket %3d  %s", t.Number, OwnerBadge(t, identity))
		if n := t.Checked.Count(); n > 0 && t.Owner == identity {
			fmt.Fprintf(&b, "  %s", mutedText.Render(fmt.Sprintf("%d checked", n)))
		}
		b.WriteString(pendingNote(sel.Ticket(ts.game, t.PK).Pending))
	}
	return b.String()
}

// pendingNote describes an in-flight or failed claim or release.
func pendingNote(p store.Pending) string {
	switch {
	case p.InFlight && p.Op == store.OpClaim:
		return "  " + mutedText.Render("claiming...")
	case p.InFlight && p.Op == store.OpRelease:
		return "  " + mutedText.Render("releasing...")
	case p.Err != "":
		return "  " + errorText.Render(string(p.Op)+" failed")
	}
	return ""
}

// statusLine summarises a fetch entry: age, refresh in progress, error.
func statusLine(entry store.Entry, now time.Time, spinnerView string) string {
	var parts []string
	if entry.Loaded() {
		age := now.Sub(entry.LastUpdated).Truncate(time.Second)
		if age < 0 {
			age = 0
		}
		parts = append(parts, fmt.Sprintf("updated %s ago", age))
	}
	if entry.IsFetching {
		parts = append(parts, spinnerView+" refreshing")
	}
	line := mutedText.Render(strings.Join(parts, " · "))
	if entry.Err != "" {
		line += " " + errorText.Render(entry.Err)
	}
	return line
}
