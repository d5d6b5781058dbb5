// Package bingo defines the Musical Bingo domain types shared by the HTTP
// backend, the cache store, and the views.
package bingo

import "time"

// Identity is the primary key of the user session the client is acting for.
type Identity int64

const (
	// Anonymous is the identity of a logged-out or unknown session.
	Anonymous Identity = -1
	// Unclaimed is the owner of a ticket that nobody holds.
	// Server primary keys start at 1, so 0 never names a real user.
	Unclaimed Identity = 0
)

// Options holds the display options of a game.
type Options struct {
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	ColourScheme string `json:"colourScheme"`
}

// Cells returns the number of cells on a ticket of this game.
func (o Options) Cells() int {
	return o.Rows * o.Columns
}

// Track is one song of a game, or one cell of a ticket grid.
type Track struct {
	PK       int64  `json:"pk"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
}

// Game is one scheduled round of musical bingo.
type Game struct {
	PK          int64
	ID          string
	Title       string
	Start       time.Time
	End         time.Time
	Options     Options
	TicketOrder []int64
	// Tracks is only populated by a game detail fetch.
	Tracks []Track
}

// Ticket is one bingo ticket of a game.
type Ticket struct {
	PK      int64
	Game    int64
	Number  int
	Owner   Identity
	Checked Checked
	// Tracks is the grid content, only populated by a ticket detail fetch.
	Tracks      []Track
	LastUpdated time.Time
}

// Claimed reports whether someone holds the ticket.
func (t Ticket) Claimed() bool {
	return t.Owner != Unclaimed
}

// TicketDetail is the per-ticket payload of a detail fetch.
type TicketDetail struct {
	Tracks  []Track
	Checked Checked
}

// StatusSnapshot maps ticket primary keys to their current owner.
// A ticket mapped to Unclaimed is free; a ticket missing from the map has
// no news and must be left alone.
type StatusSnapshot map[int64]Identity
