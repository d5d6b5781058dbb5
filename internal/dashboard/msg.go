// Package dashboard implements a two-pane TUI for following bingo games,
// claiming tickets and checking cells. All store access happens on the
// Bubble Tea update loop; network calls run as commands and come back as
// store actions.
package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/bingo/internal/store"
)

// Mode represents the current dashboard view mode.
type Mode int

const (
	ModeGames   Mode = iota // Browsing the game list with game detail pane.
	ModeTickets             // Ticket list of the selected game.
	ModeGrid                // Cell grid of one owned ticket.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Left pane (game list) has focus.
	PaneRight              // Right pane (tickets or grid) has focus.
)

// ConflictMessage is shown when a claim loses a race with another player.
const ConflictMessage = "Too slow! That ticket was already claimed"

// --- tea.Msg types ---
//
// Store actions (store.GamesReceived, store.ClaimFailed, ...) are tea
// messages too: every backend task returns one and Model.Update applies it.

// pollTickMsg fires the ticket status poll. Ticks from an older
// generation are dropped.
type pollTickMsg struct {
	gen int
}

// taskCmd runs a store task as a Bubble Tea command.
func taskCmd(task store.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	return func() tea.Msg { return task() }
}
