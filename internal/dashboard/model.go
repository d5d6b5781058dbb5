package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// flashHeight is the line above the help bar used for transient messages.
const flashHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// minPollTick bounds how often the poll timer fires.
const minPollTick = time.Second

// Config wires a Model to its data.
type Config struct {
	Store    *store.Store
	Selector *selector.Selector
	// Identity is the session user. Anonymous can browse but not claim.
	Identity bingo.Identity
	// Now replaces time.Now for status ages.
	Now func() time.Time
}

// Model is the root Bubble Tea model for the dashboard TUI.
// It manages a two-pane layout with mode-based routing. The store is
// only touched from Update, Init and View, all of which run on the
// Bubble Tea event loop.
type Model struct {
	store    *store.Store
	sel      *selector.Selector
	identity bingo.Identity
	now      func() time.Time

	mode    Mode
	width   int
	height  int
	help    help.Model
	spinner spinner.Model

	browse  browseState
	tickets ticketsState
	grid    gridState

	// pollGen invalidates outstanding poll ticks when the ticket view closes.
	pollGen int
	flash   string
}

// NewModel creates a dashboard Model in games mode.
func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		store:    cfg.Store,
		sel:      cfg.Selector,
		identity: cfg.Identity,
		now:      now,
		mode:     ModeGames,
		help:     help.New(),
		spinner:  s,
	}
}

// Init starts the spinner and the games list fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, taskCmd(m.store.FetchGamesIfNeeded(m.identity)))
}

// Update handles incoming messages with mode-based routing.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.flash = ""
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pollTickMsg:
		if msg.gen != m.pollGen || m.mode == ModeGames {
			return m, nil
		}
		poll := m.store.FetchTicketStatusIfNeeded(m.tickets.game, m.identity)
		return m, tea.Batch(taskCmd(poll), m.schedulePoll())

	case store.Action:
		m.store.Apply(msg)
		return m.afterAction(msg)
	}

	return m, nil
}

// afterAction reacts to an applied store action: user-facing messages
// for failed operations and cursor upkeep for replaced lists.
func (m Model) afterAction(a store.Action) (tea.Model, tea.Cmd) {
	switch a := a.(type) {
	case store.GamesReceived:
		m.browse = m.browse.clamp(len(m.browse.games(m.sel)))

	case store.TicketsReceived:
		if n := len(m.sel.Tickets(m.tickets.game)); m.tickets.cursor >= n {
			m.tickets.cursor = max(n-1, 0)
		}

	case store.ClaimFailed:
		if store.Classify(a.Err) == store.KindConflict {
			m.flash = ConflictMessage
			if m.mode != ModeGames && a.Game == m.tickets.game {
				return m, taskCmd(m.store.FetchTicketsIfNeeded(a.Game, m.identity))
			}
			return m, nil
		}
		m.flash = "Could not claim ticket: " + errMessage(a.Err)

	case store.ReleaseFailed:
		m.flash = "Could not release ticket: " + errMessage(a.Err)

	case store.CellSynced:
		if a.Err != nil {
			m.flash = "Checked cells not saved: " + errMessage(a.Err)
		}
	}
	return m, nil
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case ModeTickets:
		return m.handleTicketsKey(msg)
	case ModeGrid:
		return m.handleGridKey(msg)
	default:
		return m.handleGamesKey(msg)
	}
}

func (m Model) handleGamesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	games := m.browse.games(m.sel)
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.browse = m.browse.move(-1, len(games))
	case "down", "j":
		m.browse = m.browse.move(1, len(games))
	case "p":
		m.browse = browseState{showPast: !m.browse.showPast}
	case "r":
		m.store.Apply(store.InvalidateGames{})
		return m, taskCmd(m.store.FetchGamesIfNeeded(m.identity))
	case "enter":
		if m.browse.showPast {
			return m, nil
		}
		if g, ok := m.browse.selected(games); ok {
			return m.openTickets(g.PK)
		}
	}
	return m, nil
}

func (m Model) handleTicketsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	game := m.tickets.game
	tickets := m.sel.Tickets(game)
	selected, ok := m.tickets.selected(tickets)

	switch msg.String() {
	case "q", "esc":
		m.mode = ModeGames
		m.pollGen++
		return m, nil
	case "up", "k":
		m.tickets = m.tickets.move(-1, len(tickets))
	case "down", "j":
		m.tickets = m.tickets.move(1, len(tickets))
	case "r":
		m.store.Apply(store.InvalidateTickets{Game: game})
		return m, taskCmd(m.store.FetchTicketsIfNeeded(game, m.identity))
	case "c":
		if !ok {
			return m, nil
		}
		switch {
		case m.identity == bingo.Anonymous:
			m.flash = "Log in to claim tickets"
		case selected.Owner == m.identity:
			m.flash = fmt.Sprintf("Ticket %d is already yours", selected.Number)
		case selected.Claimed():
			m.flash = ConflictMessage
		default:
			return m, taskCmd(m.store.ClaimTicket(game, selected.PK, m.identity))
		}
	case "x":
		if !ok {
			return m, nil
		}
		if m.identity == bingo.Anonymous || selected.Owner != m.identity {
			m.flash = "You can only release your own tickets"
			return m, nil
		}
		return m, taskCmd(m.store.ReleaseTicket(game, selected.PK, m.identity))
	case "enter":
		if !ok {
			return m, nil
		}
		if m.identity == bingo.Anonymous || selected.Owner != m.identity {
			m.flash = "Claim the ticket to play it"
			return m, nil
		}
		return m.openGrid(selected.PK)
	}
	return m, nil
}

func (m Model) handleGridKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	opts := m.gridOptions()
	switch msg.String() {
	case "q", "esc":
		m.mode = ModeTickets
		return m, nil
	case "up", "k":
		m.grid = m.grid.move(-1, 0, opts)
	case "down", "j":
		m.grid = m.grid.move(1, 0, opts)
	case "left", "h":
		m.grid = m.grid.move(0, -1, opts)
	case "right", "l":
		m.grid = m.grid.move(0, 1, opts)
	case " ", "space":
		if !m.sel.TicketDetailStatus(m.grid.ticket).Loaded() {
			return m, nil
		}
		task, err := m.store.ToggleCell(m.grid.game, m.grid.ticket, m.grid.cell(opts))
		if err != nil {
			m.flash = errMessage(err)
			return m, nil
		}
		return m, taskCmd(task)
	case "r":
		m.store.Apply(store.InvalidateTicket{Ticket: m.grid.ticket})
		return m, taskCmd(m.store.FetchTicketDetailIfNeeded(m.grid.game, m.grid.ticket, m.identity))
	}
	return m, nil
}

// openTickets switches to the ticket list of game and starts polling.
func (m Model) openTickets(game int64) (tea.Model, tea.Cmd) {
	m.mode = ModeTickets
	m.tickets = ticketsState{game: game}
	m.pollGen++
	return m, tea.Batch(
		taskCmd(m.store.FetchTicketsIfNeeded(game, m.identity)),
		m.schedulePoll(),
	)
}

// openGrid switches to the grid of an owned ticket.
func (m Model) openGrid(ticket int64) (tea.Model, tea.Cmd) {
	game := m.tickets.game
	m.mode = ModeGrid
	m.grid = gridState{game: game, ticket: ticket}
	return m, tea.Batch(
		taskCmd(m.store.FetchGameDetailIfNeeded(game, m.identity)),
		taskCmd(m.store.FetchTicketDetailIfNeeded(game, ticket, m.identity)),
	)
}

// schedulePoll arms the next poll tick for the current generation.
// Ticks fire more often than the update interval so a due poll is not
// delayed by a whole interval; FetchTicketStatusIfNeeded decides when
// one is actually due.
func (m Model) schedulePoll() tea.Cmd {
	gen := m.pollGen
	tick := m.store.UpdateInterval() / 10
	if tick < minPollTick {
		tick = min(minPollTick, m.store.UpdateInterval())
	}
	return tea.Tick(tick, func(time.Time) tea.Msg { return pollTickMsg{gen: gen} })
}

func (m Model) gridOptions() bingo.Options {
	opts := m.sel.Game(m.grid.game).Options
	if opts.Rows <= 0 || opts.Columns <= 0 {
		opts = fallbackOptions(len(m.sel.Ticket(m.grid.game, m.grid.ticket).Tracks))
	}
	return opts
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the flash line and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight - flashHeight
	if h < 1 {
		return 1
	}
	return h
}

// View renders the two-pane layout with flash line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus() == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftInner := max(leftWidth-borderChrome, 0)
	rightInner := max(rightWidth-borderChrome, 0)
	leftStyle = leftStyle.Width(leftInner).Height(contentHeight)
	rightStyle = rightStyle.Width(rightInner).Height(contentHeight)

	leftPane := leftStyle.Render(fitPane(m.viewLeft(), leftInner, contentHeight))
	rightPane := rightStyle.Render(fitPane(m.viewRight(rightInner), rightInner, contentHeight))
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	flash := flashText.Render(m.flash)
	helpView := m.help.View(HelpBindings(m.mode, m.browse.showPast))

	return lipgloss.JoinVertical(lipgloss.Left, panes, flash, helpView)
}

// focus reports which pane the current mode drives.
func (m Model) focus() Focus {
	if m.mode == ModeGames {
		return PaneLeft
	}
	return PaneRight
}

// viewLeft renders the game list.
func (m Model) viewLeft() string {
	return m.browse.View(m.browse.games(m.sel), m.sel.GamesStatus(), m.sel.Location(), m.spinner.View())
}

// viewRight renders the right pane content based on mode.
func (m Model) viewRight(width int) string {
	switch m.mode {
	case ModeTickets:
		return m.tickets.View(m.sel, m.identity, m.now(), m.spinner.View())
	case ModeGrid:
		return m.grid.View(m.sel, width, m.now(), m.spinner.View())
	default:
		g, ok := m.browse.selected(m.browse.games(m.sel))
		if !ok {
			return mutedText.Render("No game selected")
		}
		return viewGameDetail(g, m.sel.Location(), m.browse.showPast)
	}
}

// fitPane clips content to height lines, scrolling so the line holding
// the cursor marker stays visible.
func fitPane(content string, width, height int) string {
	vp := viewport.New(width, height)
	vp.SetContent(content)
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, CursorMarker) {
			if i >= height {
				vp.SetYOffset(i - height + 1)
			}
			break
		}
	}
	return vp.View()
}

// errMessage returns the text of err for display.
func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	if errors.Is(err, store.ErrUnknownTicket) {
		return "ticket not found"
	}
	return err.Error()
}
