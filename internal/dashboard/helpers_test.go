package dashboard

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// execBatch executes a tea.Cmd, handling both single commands and batch
// commands. It returns all resulting messages. Spinner ticks are skipped
// to avoid infinite recursion.
func execBatch(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		if _, isTick := msg.(spinner.TickMsg); isTick {
			return nil
		}
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		if c != nil {
			msgs = append(msgs, execBatch(t, c)...)
		}
	}
	return msgs
}

// drive executes cmd and feeds every resulting message back into the
// model, following up on the commands those messages return. Poll ticks
// are dropped so the timer does not loop.
func drive(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range execBatch(t, cmd) {
		if _, ok := msg.(pollTickMsg); ok {
			continue
		}
		updated, next := m.Update(msg)
		m = drive(t, updated.(Model), next)
	}
	return m
}

// press sends one key and drives the resulting commands.
func press(t *testing.T, m Model, keys string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	updated, cmd := m.Update(msg)
	return drive(t, updated.(Model), cmd)
}

// fakeBackend serves fixed data and records writes.
type fakeBackend struct {
	games      []bingo.Game
	detail     bingo.Game
	tickets    map[int64][]bingo.Ticket
	status     bingo.StatusSnapshot
	ticket     bingo.TicketDetail
	claimErr   error
	releaseErr error

	mu      sync.Mutex
	calls   map[string]int
	checked []bingo.Checked
}

func (b *fakeBackend) hit(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[name]++
}

func (b *fakeBackend) Games(context.Context) ([]bingo.Game, error) {
	b.hit("games")
	return b.games, nil
}

func (b *fakeBackend) GameDetail(context.Context, int64) (bingo.Game, error) {
	b.hit("detail")
	return b.detail, nil
}

func (b *fakeBackend) Tickets(_ context.Context, game int64) ([]bingo.Ticket, error) {
	b.hit("tickets")
	return b.tickets[game], nil
}

func (b *fakeBackend) TicketStatus(context.Context, int64) (bingo.StatusSnapshot, error) {
	b.hit("status")
	return b.status, nil
}

func (b *fakeBackend) TicketDetail(context.Context, int64, int64) (bingo.TicketDetail, error) {
	b.hit("ticket")
	return b.ticket, nil
}

func (b *fakeBackend) Claim(context.Context, int64, int64) error {
	b.hit("claim")
	return b.claimErr
}

func (b *fakeBackend) Release(context.Context, int64, int64) error {
	b.hit("release")
	return b.releaseErr
}

func (b *fakeBackend) SetChecked(_ context.Context, _, _ int64, checked bingo.Checked) error {
	b.hit("checked")
	b.mu.Lock()
	b.checked = append(b.checked, checked)
	b.mu.Unlock()
	return nil
}

// clock is a settable time source shared by the store and the model.
type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

var evening = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

const (
	me      bingo.Identity = 42
	pollGap                = 50 * time.Millisecond
)

func sampleBackend() *fakeBackend {
	tracks := make([]bingo.Track, 15)
	for i := range tracks {
		tracks[i] = bingo.Track{PK: int64(100 + i), Position: i, Title: "Song " + string(rune('A'+i)), Artist: "Band"}
	}
	opts := bingo.Options{Rows: 3, Columns: 5, ColourScheme: "green"}
	return &fakeBackend{
		games: []bingo.Game{
			{PK: 1, ID: "26-03-13-1", Title: "Old Favourites", Start: evening.Add(-24 * time.Hour), End: evening.Add(-23 * time.Hour), Options: opts},
			{PK: 2, ID: "26-03-14-1", Title: "Pop Night", Start: evening.Add(time.Hour), End: evening.Add(2 * time.Hour), Options: opts},
			{PK: 3, ID: "26-03-14-2", Title: "Rock Night", Start: evening.Add(3 * time.Hour), End: evening.Add(4 * time.Hour), Options: opts},
			{PK: 4, ID: "26-03-15-1", Title: "Film Themes", Start: evening.Add(25 * time.Hour), End: evening.Add(26 * time.Hour), Options: opts},
		},
		detail: bingo.Game{PK: 2, Title: "Pop Night", Options: opts},
		tickets: map[int64][]bingo.Ticket{
			2: {
				{PK: 5, Number: 1},
				{PK: 6, Number: 2, Owner: me},
				{PK: 9, Number: 3, Owner: 7},
			},
		},
		ticket: bingo.TicketDetail{Tracks: tracks},
		calls:  make(map[string]int),
	}
}

// newTestModel returns a sized model whose initial games fetch has landed.
func newTestModel(t *testing.T, b *fakeBackend, identity bingo.Identity) (Model, *store.Store, *clock) {
	t.Helper()
	clk := &clock{t: evening}
	st := store.New(b,
		store.WithClock(clk.Now),
		store.WithUpdateInterval(pollGap),
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	sel := selector.New(st, selector.WithLocation(time.UTC))
	m := NewModel(Config{Store: st, Selector: sel, Identity: identity, Now: clk.Now})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(t, updated.(Model), m.Init())
	return m, st, clk
}
