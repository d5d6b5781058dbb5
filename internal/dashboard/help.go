package dashboard

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content.
func HelpBindings(mode Mode, showPast bool) help.KeyMap {
	switch mode {
	case ModeTickets:
		return TicketKeyMap()
	case ModeGrid:
		return GridKeyMap()
	default:
		km := GamesKeyMap()
		if showPast {
			km.Past = key.NewBinding(
				key.WithKeys("p"),
				key.WithHelp("p", "current games"),
			)
			// Past games have no tickets to claim.
			km.Enter.SetEnabled(false)
		}
		return km
	}
}
