// Package store is the client-side cache of Musical Bingo server resources.
//
// A Store is confined to one goroutine: the Bubble Tea update loop in the
// dashboard, or the main goroutine of a CLI command. Fetches are split in
// two halves. A FetchXIfNeeded method runs on that goroutine, applies the
// Requesting transition and returns a Task. The Task performs the network
// call anywhere and returns an Action, which is applied back on the owning
// goroutine with Apply.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

// Backend is the server the store fetches from.
type Backend interface {
	Games(ctx context.Context) ([]bingo.Game, error)
	GameDetail(ctx context.Context, game int64) (bingo.Game, error)
	Tickets(ctx context.Context, game int64) ([]bingo.Ticket, error)
	TicketStatus(ctx context.Context, game int64) (bingo.StatusSnapshot, error)
	TicketDetail(ctx context.Context, game, ticket int64) (bingo.TicketDetail, error)
	Claim(ctx context.Context, game, ticket int64) error
	Release(ctx context.Context, game, ticket int64) error
	SetChecked(ctx context.Context, game, ticket int64, checked bingo.Checked) error
}

// Task performs one backend call and returns the action describing its
// outcome. A nil Task means there is nothing to do.
type Task func() Action

// Op names a user-initiated ownership change.
type Op string

const (
	OpClaim   Op = "claim"
	OpRelease Op = "release"
)

// Pending is the state of the latest claim or release of a ticket.
type Pending struct {
	Op       Op
	InFlight bool
	Err      string
	ErrKind  ErrorKind
}

// Store holds cached games and tickets with their fetch entries.
// It is not safe for concurrent use.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	timeout           time.Duration
	updateInterval    time.Duration
	discardSuperseded bool

	seq     uint64
	version uint64

	games   Entry
	gameMap map[int64]*bingo.Game
	current []int64
	past    []int64

	gameDetails   map[int64]*Entry
	ticketLists   map[int64]*Entry
	ticketOrder   map[int64][]int64
	tickets       map[int64]*bingo.Ticket
	ticketDetails map[int64]*Entry
	pending       map[int64]Pending
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRequestTimeout bounds each backend call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithUpdateInterval sets the ticket status poll interval.
func WithUpdateInterval(d time.Duration) Option {
	return func(s *Store) { s.updateInterval = d }
}

// WithDiscardSuperseded drops responses older than the last response
// applied to the same entry. By default the last response to arrive wins.
func WithDiscardSuperseded(discard bool) Option {
	return func(s *Store) { s.discardSuperseded = discard }
}

// New creates an empty Store fetching from backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:        backend,
		logger:         slog.Default(),
		now:            time.Now,
		timeout:        30 * time.Second,
		updateInterval: DefaultUpdateInterval,
		games:          NewEntry(),
		gameMap:        make(map[int64]*bingo.Game),
		gameDetails:    make(map[int64]*Entry),
		ticketLists:    make(map[int64]*Entry),
		ticketOrder:    make(map[int64][]int64),
		tickets:        make(map[int64]*bingo.Ticket),
		ticketDetails:  make(map[int64]*Entry),
		pending:        make(map[int64]Pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply commits an action to the store. Unknown values are ignored, so
// callers can pass every message they receive.
func (s *Store) Apply(a Action) {
	switch a := a.(type) {
	case GamesReceived:
		s.receiveGames(a)
	case GamesFailed:
		s.failEntry(&s.games, a.Seq, a.Err, "games")
	case GameDetailReceived:
		s.receiveGameDetail(a)
	case GameDetailFailed:
		s.failEntry(s.gameDetailEntry(a.Game), a.Seq, a.Err, "game detail", "game", a.Game)
	case TicketsReceived:
		s.receiveTickets(a)
	case TicketsFailed:
		s.failEntry(s.ticketListEntry(a.Game), a.Seq, a.Err, "tickets", "game", a.Game)
	case StatusReceived:
		s.mergeSnapshot(a)
	case StatusFailed:
		s.failEntry(s.ticketListEntry(a.Game), a.Seq, a.Err, "ticket status", "game", a.Game)
	case TicketDetailReceived:
		s.receiveTicketDetail(a)
	case TicketDetailFailed:
		s.failEntry(s.ticketDetailEntry(a.Ticket), a.Seq, a.Err, "ticket detail", "ticket", a.Ticket)
	case ClaimConfirmed:
		s.confirmClaim(a)
	case ClaimFailed:
		s.failClaim(a)
	case ReleaseConfirmed:
		s.confirmRelease(a)
	case ReleaseFailed:
		s.failRelease(a)
	case CellSynced:
		s.cellSynced(a)
	case InvalidateGames:
		s.games.invalidate()
	case InvalidateGame:
		s.gameDetailEntry(a.Game).invalidate()
	case InvalidateTickets:
		s.ticketListEntry(a.Game).invalidate()
	case InvalidateTicket:
		s.ticketDetailEntry(a.Ticket).invalidate()
	default:
		return
	}
	s.version++
}

// Run executes task on the calling goroutine and applies its action.
// It returns the applied action, or nil when task is nil.
func (s *Store) Run(task Task) Action {
	if task == nil {
		return nil
	}
	a := task()
	s.Apply(a)
	return a
}

// Version increases every time the store changes.
func (s *Store) Version() uint64 {
	return s.version
}

// UpdateInterval returns the configured status poll interval.
func (s *Store) UpdateInterval() time.Duration {
	return s.updateInterval
}

// --- Read access ---

// GamesEntry returns the games list entry.
func (s *Store) GamesEntry() Entry {
	return s.games
}

// Game returns a copy of the cached game.
func (s *Store) Game(pk int64) (bingo.Game, bool) {
	g, ok := s.gameMap[pk]
	if !ok {
		return bingo.Game{}, false
	}
	return *g, true
}

// CurrentOrder returns the primary keys of current games in list order.
func (s *Store) CurrentOrder() []int64 {
	return append([]int64(nil), s.current...)
}

// PastOrder returns the primary keys of past games in list order.
func (s *Store) PastOrder() []int64 {
	return append([]int64(nil), s.past...)
}

// GameDetailEntry returns the detail entry of a game.
func (s *Store) GameDetailEntry(game int64) Entry {
	if e, ok := s.gameDetails[game]; ok {
		return *e
	}
	return NewEntry()
}

// TicketsEntry returns the ticket list entry of a game.
func (s *Store) TicketsEntry(game int64) Entry {
	if e, ok := s.ticketLists[game]; ok {
		return *e
	}
	return NewEntry()
}

// TicketOrder returns the ticket primary keys of a game in list order.
func (s *Store) TicketOrder(game int64) []int64 {
	return append([]int64(nil), s.ticketOrder[game]...)
}

// Ticket returns a copy of the cached ticket.
func (s *Store) Ticket(pk int64) (bingo.Ticket, bool) {
	t, ok := s.tickets[pk]
	if !ok {
		return bingo.Ticket{}, false
	}
	return *t, true
}

// TicketDetailEntry returns the detail entry of a ticket.
func (s *Store) TicketDetailEntry(ticket int64) Entry {
	if e, ok := s.ticketDetails[ticket]; ok {
		return *e
	}
	return NewEntry()
}

// Pending returns the latest claim or release state of a ticket.
func (s *Store) Pending(ticket int64) (Pending, bool) {
	p, ok := s.pending[ticket]
	return p, ok
}

// --- Internal helpers ---

func (s *Store) gameDetailEntry(game int64) *Entry {
	return lookupEntry(s.gameDetails, game)
}

func (s *Store) ticketListEntry(game int64) *Entry {
	return lookupEntry(s.ticketLists, game)
}

func (s *Store) ticketDetailEntry(ticket int64) *Entry {
	return lookupEntry(s.ticketDetails, ticket)
}

func lookupEntry(m map[int64]*Entry, key int64) *Entry {
	e, ok := m[key]
	if !ok {
		fresh := NewEntry()
		e = &fresh
		m[key] = e
	}
	return e
}

// begin stamps a new request sequence on e.
func (s *Store) begin(e *Entry, identity bingo.Identity) uint64 {
	s.seq++
	e.begin(identity, s.seq)
	s.version++
	return s.seq
}

// settle applies the superseded-response policy and logs drops.
func (s *Store) settle(e *Entry, seq uint64, what string) bool {
	if e.settle(seq, s.discardSuperseded) {
		return true
	}
	s.logger.Debug("dropping superseded response", "resource", what, "seq", seq)
	return false
}

func (s *Store) failEntry(e *Entry, seq uint64, err error, what string, attrs ...any) {
	if !s.settle(e, seq, what) {
		return
	}
	e.fail(s.now(), err)
	args := append([]any{"resource", what, "kind", e.ErrKind.String(), "error", e.Err}, attrs...)
	s.logger.Warn("fetch failed", args...)
}

// requestContext returns the context for one backend call.
func (s *Store) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
