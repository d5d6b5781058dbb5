package api

import (
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

// gameJSON is a game as the server sends it. Tracks are only present in
// the detail response. Older servers name the ticket ordering "tickets".
type gameJSON struct {
	PK          int64         `json:"pk"`
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Options     bingo.Options `json:"options"`
	TicketOrder []int64       `json:"ticketOrder,omitempty"`
	Tickets     []int64       `json:"tickets,omitempty"`
	Tracks      []bingo.Track `json:"tracks,omitempty"`
}

func (g gameJSON) toGame() bingo.Game {
	order := g.TicketOrder
	if order == nil {
		order = g.Tickets
	}
	return bingo.Game{
		PK:          g.PK,
		ID:          g.ID,
		Title:       g.Title,
		Start:       g.Start,
		End:         g.End,
		Options:     g.Options,
		TicketOrder: order,
		Tracks:      g.Tracks,
	}
}

// ticketJSON is one entry of a ticket list. A null user is unclaimed.
type ticketJSON struct {
	PK      int64  `json:"pk"`
	Number  int    `json:"number"`
	User    *int64 `json:"user"`
	Checked uint32 `json:"checked"`
}

func (t ticketJSON) toTicket(game int64) bingo.Ticket {
	return bingo.Ticket{
		PK:      t.PK,
		Game:    game,
		Number:  t.Number,
		Owner:   ownerOf(t.User),
		Checked: bingo.Checked(t.Checked),
	}
}

type ticketDetailJSON struct {
	Tracks  []bingo.Track `json:"tracks"`
	Checked uint32        `json:"checked"`
}

// statusJSON maps ticket primary keys (as strings) to owners.
type statusJSON struct {
	Claimed map[string]*int64 `json:"claimed"`
}

type checkedJSON struct {
	Checked uint32 `json:"checked"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func ownerOf(user *int64) bingo.Identity {
	if user == nil {
		return bingo.Unclaimed
	}
	return bingo.Identity(*user)
}
