package dashboard

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

// TestModel_Teatest_ClaimFlow drives the dashboard through a real program:
// open a game, claim a ticket, back out and quit.
func TestModel_Teatest_ClaimFlow(t *testing.T) {
	b := sampleBackend()
	clk := &clock{t: evening}
	st := store.New(b,
		store.WithClock(clk.Now),
		store.WithUpdateInterval(time.Hour),
		store.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	sel := selector.New(st, selector.WithLocation(time.UTC))
	m := NewModel(Config{Store: st, Selector: sel, Identity: me, Now: clk.Now})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Pop Night"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("free"))
	}, teatest.WithDuration(2*time.Second))

	tm.Type("c")
	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("2 mine"))
	}, teatest.WithDuration(2*time.Second))

	tm.Type("q")
	tm.Type("q")
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.mode != ModeGames {
		t.Errorf("final mode = %d, want games", final.mode)
	}
	if tk, _ := st.Ticket(5); tk.Owner != me {
		t.Errorf("ticket 5 owner = %d, want %d", tk.Owner, me)
	}
}
