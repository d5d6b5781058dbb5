package store

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

// stubBackend implements Backend for tests, counting calls per method.
type stubBackend struct {
	games        []bingo.Game
	gamesErr     error
	detail       bingo.Game
	detailErr    error
	tickets      []bingo.Ticket
	ticketsErr   error
	status       bingo.StatusSnapshot
	statusErr    error
	ticketDetail bingo.TicketDetail
	ticketErr    error
	claimErr     error
	releaseErr   error
	checkedErr   error

	calls   map[string]int
	checked []bingo.Checked
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: make(map[string]int)}
}

func (b *stubBackend) Games(context.Context) ([]bingo.Game, error) {
	b.calls["games"]++
	return b.games, b.gamesErr
}

func (b *stubBackend) GameDetail(context.Context, int64) (bingo.Game, error) {
	b.calls["detail"]++
	return b.detail, b.detailErr
}

func (b *stubBackend) Tickets(context.Context, int64) ([]bingo.Ticket, error) {
	b.calls["tickets"]++
	return b.tickets, b.ticketsErr
}

func (b *stubBackend) TicketStatus(context.Context, int64) (bingo.StatusSnapshot, error) {
	b.calls["status"]++
	return b.status, b.statusErr
}

func (b *stubBackend) TicketDetail(context.Context, int64, int64) (bingo.TicketDetail, error) {
	b.calls["ticket"]++
	return b.ticketDetail, b.ticketErr
}

func (b *stubBackend) Claim(context.Context, int64, int64) error {
	b.calls["claim"]++
	return b.claimErr
}

func (b *stubBackend) Release(context.Context, int64, int64) error {
	b.calls["release"]++
	return b.releaseErr
}

func (b *stubBackend) SetChecked(_ context.Context, _, _ int64, checked bingo.Checked) error {
	b.calls["checked"]++
	b.checked = append(b.checked, checked)
	return b.checkedErr
}

// statusErr is a server rejection carrying an HTTP status.
type statusErr struct {
	code int
}

func (e statusErr) Error() string   { return "server said no" }
func (e statusErr) HTTPStatus() int { return e.code }

// fakeClock is a settable clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var baseTime = time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

func newTestStore(b Backend, opts ...Option) (*Store, *fakeClock) {
	clk := &fakeClock{t: baseTime}
	all := append([]Option{
		WithClock(clk.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return New(b, all...), clk
}

func sampleGames() []bingo.Game {
	return []bingo.Game{
		{PK: 1, ID: "26-03-14-1", Title: "Rock Night", Start: baseTime.Add(-2 * time.Hour), End: baseTime.Add(-time.Hour)},
		{PK: 2, ID: "26-03-14-2", Title: "Pop Night", Start: baseTime.Add(time.Hour), End: baseTime.Add(2 * time.Hour)},
		{PK: 3, ID: "26-03-15-1", Title: "Film Themes", Start: baseTime.Add(24 * time.Hour), End: baseTime.Add(25 * time.Hour)},
	}
}

func sampleTickets() []bingo.Ticket {
	return []bingo.Ticket{
		{PK: 5, Number: 1},
		{PK: 6, Number: 2, Owner: 7},
		{PK: 9, Number: 3},
	}
}

// loadTickets fetches sampleTickets for game 2 as identity 42.
func loadTickets(s *Store, b *stubBackend) {
	b.tickets = sampleTickets()
	s.Run(s.FetchTicketsIfNeeded(2, 42))
}

// loadDetail fetches ticket 5's detail with the given server mask.
func loadDetail(s *Store, b *stubBackend, checked bingo.Checked) {
	b.ticketDetail = bingo.TicketDetail{Checked: checked}
	s.Run(s.FetchTicketDetailIfNeeded(2, 5, 42))
}
