package store

import "github.com/smileynet/bingo/internal/bingo"

// Action is a state transition applied by Store.Apply.
// Every action is also usable as a tea.Msg.
type Action interface {
	isAction()
}

// Verify at compile time that action types implement Action.
var (
	_ Action = GamesReceived{}
	_ Action = GamesFailed{}
	_ Action = GameDetailReceived{}
	_ Action = GameDetailFailed{}
	_ Action = TicketsReceived{}
	_ Action = TicketsFailed{}
	_ Action = StatusReceived{}
	_ Action = StatusFailed{}
	_ Action = TicketDetailReceived{}
	_ Action = TicketDetailFailed{}
	_ Action = ClaimConfirmed{}
	_ Action = ClaimFailed{}
	_ Action = ReleaseConfirmed{}
	_ Action = ReleaseFailed{}
	_ Action = CellSynced{}
	_ Action = InvalidateGames{}
	_ Action = InvalidateGame{}
	_ Action = InvalidateTickets{}
	_ Action = InvalidateTicket{}
)

// --- Fetch results ---

// GamesReceived carries the games list.
type GamesReceived struct {
	Seq   uint64
	Games []bingo.Game
}

// GamesFailed reports a failed games list fetch.
type GamesFailed struct {
	Seq uint64
	Err error
}

// GameDetailReceived carries the detail fields of one game.
type GameDetailReceived struct {
	Seq    uint64
	Game   int64
	Detail bingo.Game
}

// GameDetailFailed reports a failed game detail fetch.
type GameDetailFailed struct {
	Seq  uint64
	Game int64
	Err  error
}

// TicketsReceived carries the full ticket list of a game.
type TicketsReceived struct {
	Seq     uint64
	Game    int64
	Tickets []bingo.Ticket
}

// TicketsFailed reports a failed ticket list fetch.
type TicketsFailed struct {
	Seq  uint64
	Game int64
	Err  error
}

// StatusReceived carries a background ownership snapshot of a game.
type StatusReceived struct {
	Seq     uint64
	Game    int64
	Claimed bingo.StatusSnapshot
}

// StatusFailed reports a failed status poll.
type StatusFailed struct {
	Seq  uint64
	Game int64
	Err  error
}

// TicketDetailReceived carries the grid and checked cells of one ticket.
type TicketDetailReceived struct {
	Seq    uint64
	Game   int64
	Ticket int64
	Detail bingo.TicketDetail
}

// TicketDetailFailed reports a failed ticket detail fetch.
type TicketDetailFailed struct {
	Seq    uint64
	Game   int64
	Ticket int64
	Err    error
}

// --- Ownership ---

// ClaimConfirmed reports that the server granted User the ticket.
type ClaimConfirmed struct {
	Game   int64
	Ticket int64
	User   bingo.Identity
}

// ClaimFailed reports a refused or failed claim.
type ClaimFailed struct {
	Game   int64
	Ticket int64
	User   bingo.Identity
	Err    error
}

// ReleaseConfirmed reports that the server released User's ticket.
type ReleaseConfirmed struct {
	Game   int64
	Ticket int64
	User   bingo.Identity
}

// ReleaseFailed reports a failed release.
type ReleaseFailed struct {
	Game   int64
	Ticket int64
	User   bingo.Identity
	Err    error
}

// CellSynced reports the outcome of a fire-and-forget checked cell update.
type CellSynced struct {
	Game    int64
	Ticket  int64
	Checked bingo.Checked
	Err     error
}

// --- Invalidation ---

// InvalidateGames marks the games list stale.
type InvalidateGames struct{}

// InvalidateGame marks one game's detail stale.
type InvalidateGame struct {
	Game int64
}

// InvalidateTickets marks a game's ticket list stale.
type InvalidateTickets struct {
	Game int64
}

// InvalidateTicket marks one ticket's detail stale.
type InvalidateTicket struct {
	Ticket int64
}

func (GamesReceived) isAction()        {}
func (GamesFailed) isAction()          {}
func (GameDetailReceived) isAction()   {}
func (GameDetailFailed) isAction()     {}
func (TicketsReceived) isAction()      {}
func (TicketsFailed) isAction()        {}
func (StatusReceived) isAction()       {}
func (StatusFailed) isAction()         {}
func (TicketDetailReceived) isAction() {}
func (TicketDetailFailed) isAction()   {}
func (ClaimConfirmed) isAction()       {}
func (ClaimFailed) isAction()          {}
func (ReleaseConfirmed) isAction()     {}
func (ReleaseFailed) isAction()        {}
func (CellSynced) isAction()           {}
func (InvalidateGames) isAction()      {}
func (InvalidateGame) isAction()       {}
func (InvalidateTickets) isAction()    {}
func (InvalidateTicket) isAction()     {}
