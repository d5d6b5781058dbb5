package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/config"
	"github.com/smileynet/bingo/internal/logging"
)

// stubBackend serves fixed data and records calls.
type stubBackend struct {
	games      []bingo.Game
	gamesErr   error
	detail     bingo.Game
	tickets    map[int64][]bingo.Ticket
	ticketsErr error
	ticket     bingo.TicketDetail
	ticketErr  error
	claimErr   error
	releaseErr error
	checkedErr error

	calls   map[string]int
	checked []bingo.Checked
}

func (b *stubBackend) Games(context.Context) ([]bingo.Game, error) {
	b.calls["games"]++
	return b.games, b.gamesErr
}

func (b *stubBackend) GameDetail(context.Context, int64) (bingo.Game, error) {
	b.calls["detail"]++
	return b.detail, nil
}

func (b *stubBackend) Tickets(_ context.Context, game int64) ([]bingo.Ticket, error) {
	b.calls["tickets"]++
	return b.tickets[game], b.ticketsErr
}

func (b *stubBackend) TicketStatus(context.Context, int64) (bingo.StatusSnapshot, error) {
	b.calls["status"]++
	return bingo.StatusSnapshot{}, nil
}

func (b *stubBackend) TicketDetail(context.Context, int64, int64) (bingo.TicketDetail, error) {
	b.calls["ticket"]++
	return b.ticket, b.ticketErr
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

var saturday = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

const me bingo.Identity = 42

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

// sampleBackend has three past games (two of them the same theme) and
// three current ones across two days.
func sampleBackend() *stubBackend {
	opts := bingo.Options{Rows: 3, Columns: 5, ColourScheme: "blue"}
	tracks := make([]bingo.Track, 15)
	for i := range tracks {
		tracks[i] = bingo.Track{PK: int64(100 + i), Position: i, Title: "Song " + string(rune('A'+i)), Artist: "Band"}
	}
	return &stubBackend{
		games: []bingo.Game{
			{PK: 1, Title: "Rock Night", Start: time.Date(2026, 2, 7, 20, 0, 0, 0, time.UTC), End: time.Date(2026, 2, 7, 21, 0, 0, 0, time.UTC), Options: opts},
			{PK: 2, Title: "Pop Night", Start: at(7, 20), End: at(7, 21), Options: opts},
			{PK: 3, Title: "rock night!", Start: at(13, 20), End: at(13, 21), Options: opts},
			{PK: 4, Title: "Pop Night", Start: at(14, 19), End: at(14, 20), Options: opts},
			{PK: 5, Title: "Rock Night", Start: at(14, 21), End: at(14, 22), Options: opts},
			{PK: 6, Title: "Film Themes", Start: at(15, 19), End: at(15, 20), Options: opts},
		},
		detail: bingo.Game{PK: 4, Title: "Pop Night", Options: opts, Tracks: tracks},
		tickets: map[int64][]bingo.Ticket{
			4: {
				{PK: 10, Number: 1},
				{PK: 11, Number: 2, Owner: me},
				{PK: 12, Number: 3, Owner: 7},
			},
		},
		ticket: bingo.TicketDetail{Tracks: tracks, Checked: 1},
		calls:  make(map[string]int),
	}
}

// newTestSession returns a session over b with a fixed clock in UTC.
func newTestSession(t *testing.T, b *stubBackend, identity bingo.Identity) *session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Display.Timezone = "UTC"
	sess, err := newSession(b, &cfg, logging.Discard(), identity, func() time.Time { return saturday })
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return sess
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
