package dashboard

import "github.com/charmbracelet/bubbles/key"

// gamesKeys holds key bindings for games mode.
type gamesKeys struct {
	Up      key.Binding
	Down    key.Binding
	Enter   key.Binding
	Past    key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns the games mode bindings for the help bar.
func (k gamesKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Past, k.Refresh, k.Quit}
}

// FullHelp returns the games mode bindings grouped for expanded help.
func (k gamesKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Past, k.Refresh, k.Quit},
	}
}

// ticketKeys holds key bindings for tickets mode.
type ticketKeys struct {
	Up      key.Binding
	Down    key.Binding
	Claim   key.Binding
	Release key.Binding
	Open    key.Binding
	Refresh key.Binding
	Back    key.Binding
}

// ShortHelp returns the tickets mode bindings for the help bar.
func (k ticketKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Claim, k.Release, k.Open, k.Refresh, k.Back}
}

// FullHelp returns the tickets mode bindings grouped for expanded help.
func (k ticketKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open},
		{k.Claim, k.Release},
		{k.Refresh, k.Back},
	}
}

// gridKeys holds key bindings for grid mode.
type gridKeys struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Toggle  key.Binding
	Refresh key.Binding
	Back    key.Binding
}

// ShortHelp returns the grid mode bindings for the help bar.
func (k gridKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Toggle, k.Refresh, k.Back}
}

// FullHelp returns the grid mode bindings grouped for expanded help.
func (k gridKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Toggle, k.Refresh, k.Back},
	}
}

func upKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	)
}

func downKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	)
}

func refreshKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	)
}

func backKey() key.Binding {
	return key.NewBinding(
		key.WithKeys("q", "esc"),
		key.WithHelp("q", "back"),
	)
}

// GamesKeyMap returns the key bindings for games mode.
func GamesKeyMap() gamesKeys {
	return gamesKeys{
		Up:   upKey(),
		Down: downKey(),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "tickets"),
		),
		Past: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "past games"),
		),
		Refresh: refreshKey(),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// TicketKeyMap returns the key bindings for tickets mode.
func TicketKeyMap() ticketKeys {
	return ticketKeys{
		Up:   upKey(),
		Down: downKey(),
		Claim: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "claim"),
		),
		Release: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "release"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open ticket"),
		),
		Refresh: refreshKey(),
		Back:    backKey(),
	}
}

// GridKeyMap returns the key bindings for grid mode.
func GridKeyMap() gridKeys {
	return gridKeys{
		Up:   upKey(),
		Down: downKey(),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "check cell"),
		),
		Refresh: refreshKey(),
		Back:    backKey(),
	}
}
