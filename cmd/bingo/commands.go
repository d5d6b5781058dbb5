package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/table"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/selector"
	"github.com/smileynet/bingo/internal/store"
)

var (
	errNotLoggedIn = errors.New("log in to change ticket ownership")
	errNotYours    = errors.New("ticket belongs to someone else")
)

// load runs a fetch task and reports the failure recorded on the entry.
func (s *session) load(resource string, task store.Task, entry func() store.Entry) error {
	s.store.Run(task)
	if e := entry(); e.Err != "" {
		return &RequestError{Resource: resource, Kind: e.ErrKind, Message: e.Err}
	}
	return nil
}

func (s *session) loadGames() error {
	return s.load("games", s.store.FetchGamesIfNeeded(s.identity), s.sel.GamesStatus)
}

func (s *session) loadTickets(game int64) error {
	return s.load("tickets", s.store.FetchTicketsIfNeeded(game, s.identity), func() store.Entry {
		return s.sel.TicketsStatus(game)
	})
}

// loadTicketDetail fetches the grid and server-side checked cells of ticket.
func (s *session) loadTicketDetail(game, ticket int64) error {
	return s.load("ticket detail", s.store.FetchTicketDetailIfNeeded(game, ticket, s.identity), func() store.Entry {
		return s.sel.TicketDetailStatus(ticket)
	})
}

// ticket looks up a ticket of game after its list has been loaded.
func (s *session) ticket(game, pk int64) (selector.TicketView, error) {
	t := s.sel.Ticket(game, pk)
	if t.Placeholder {
		return t, fmt.Errorf("ticket %d not found in game %d", pk, game)
	}
	return t, nil
}

// gameTitle names a game, falling back to its key when it is not cached.
func (s *session) gameTitle(game int64) string {
	if g := s.sel.Game(game); !g.Placeholder {
		return g.Title
	}
	return "Game " + strconv.FormatInt(game, 10)
}

// ownTicket loads the ticket list of game and checks that the session
// user holds ticket.
func (s *session) ownTicket(game, ticket int64) (selector.TicketView, error) {
	if s.identity == bingo.Anonymous {
		return selector.TicketView{}, errNotLoggedIn
	}
	if err := s.loadTickets(game); err != nil {
		return selector.TicketView{}, err
	}
	t, err := s.ticket(game, ticket)
	if err != nil {
		return t, err
	}
	if t.Owner != s.identity {
		return t, fmt.Errorf("ticket %d: %w", t.Number, errNotYours)
	}
	return t, nil
}

// scheduleTable lists games by day with their round numbers.
func scheduleTable(w io.Writer, games []selector.DecoratedGame, loc *time.Location) *table.Table {
	t := newTable(w, "Day", "Round", "Start", "Title", "Game")
	for _, g := range games {
		start := g.Start.In(loc)
		day := ""
		if g.FirstGameOfTheDay {
			day = start.Format("Mon 2 Jan 2006")
		}
		t.Row(day, strconv.Itoa(g.Round), start.Format("15:04"), g.Title, strconv.FormatInt(g.PK, 10))
	}
	return t
}

// --- games ---

// GamesCmd lists the current games.
type GamesCmd struct{}

// Run executes the games command.
func (c *GamesCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("games: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *GamesCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	games := sess.sel.ActiveGames()
	if len(games) == 0 {
		_, _ = fmt.Fprintln(w, "No games scheduled")
		return nil
	}
	printTable(w, scheduleTable(w, games, sess.sel.Location()))
	return nil
}

// --- past ---

// PastCmd lists games that have finished.
type PastCmd struct {
	Theme string `help:"Only show games of this theme slug (e.g. rock-night)."`
}

// Run executes the past command.
func (c *PastCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("past: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *PastCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	games := sess.sel.PastGames(c.Theme)
	if len(games) == 0 {
		if c.Theme != "" {
			_, _ = fmt.Fprintf(w, "No past games with theme %q\n", c.Theme)
		} else {
			_, _ = fmt.Fprintln(w, "No past games")
		}
		return nil
	}
	printTable(w, scheduleTable(w, games, sess.sel.Location()))
	return nil
}

// --- popular ---

// PopularCmd counts past games per theme.
type PopularCmd struct {
	Desc bool `help:"Sort themes in descending order."`
}

// Run executes the popular command.
func (c *PopularCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("popular: %w", err)
	}
	return c.run(os.Stdout, sess)
}

const popularityBarWidth = 20

func (c *PopularCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	order := selector.Ascending
	if c.Desc {
		order = selector.Descending
	}
	groups := sess.sel.Popularity(order)
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(w, "No past games")
		return nil
	}
	t := newTable(w, "Theme", "Played", "")
	for _, grp := range groups {
		t.Row(grp.Title, strconv.Itoa(grp.Count), bar(grp.Count, grp.MaxCount, popularityBarWidth))
	}
	printTable(w, t)
	return nil
}

// --- calendar ---

// CalendarCmd shows when each theme was played.
type CalendarCmd struct{}

// Run executes the calendar command.
func (c *CalendarCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *CalendarCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	usage := sess.sel.Calendar(sess.now())
	if len(usage) == 0 {
		_, _ = fmt.Fprintln(w, "No past games")
		return nil
	}
	t := newTable(w, "Theme", "Played", "Last", "Months")
	for _, u := range usage {
		last := u.Last.In(sess.sel.Location()).Format("2 Jan 2006")
		t.Row(u.Title, strconv.Itoa(u.Count), last+" ("+ago(u.Since)+")", formatMonths(u.Months))
	}
	printTable(w, t)
	return nil
}

// formatMonths lists months in order, with a count when a theme was played
// more than once that month.
func formatMonths(months map[string]int) string {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if n := months[k]; n > 1 {
			parts = append(parts, fmt.Sprintf("%s×%d", k, n))
		} else {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

// --- tickets ---

// TicketsCmd lists the tickets of a game.
type TicketsCmd struct {
	Game int64 `arg:"" help:"Game primary key."`
	Mine bool  `help:"Only show your tickets."`
}

// Run executes the tickets command.
func (c *TicketsCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("tickets: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *TicketsCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	if err := sess.loadTickets(c.Game); err != nil {
		return err
	}
	tickets := sess.sel.Tickets(c.Game)
	if c.Mine {
		tickets = sess.sel.MyTickets(c.Game, sess.identity)
	}

	_, _ = fmt.Fprintln(w, titleStyle.Render(sess.gameTitle(c.Game)))
	if len(tickets) == 0 {
		_, _ = fmt.Fprintln(w, "No tickets")
		return nil
	}
	t := newTable(w, "Ticket", "Number", "Owner", "Checked")
	for _, tk := range tickets {
		checked := ""
		if n := tk.Checked.Count(); n > 0 {
			checked = strconv.Itoa(n)
		}
		t.Row(strconv.FormatInt(tk.PK, 10), strconv.Itoa(tk.Number), ownerLabel(tk, sess.identity), checked)
	}
	printTable(w, t)
	if mine := len(sess.sel.MyTickets(c.Game, sess.identity)); mine > 0 && !c.Mine {
		_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d mine", mine)))
	}
	return nil
}

// --- claim ---

// ClaimCmd claims a free ticket.
type ClaimCmd struct {
	Game   int64 `arg:"" help:"Game primary key."`
	Ticket int64 `arg:"" help:"Ticket primary key."`
}

// Run executes the claim command.
func (c *ClaimCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *ClaimCmd) run(w io.Writer, sess *session) error {
	if sess.identity == bingo.Anonymous {
		return fmt.Errorf("claim: %w", errNotLoggedIn)
	}
	if err := sess.loadTickets(c.Game); err != nil {
		return err
	}
	t, err := sess.ticket(c.Game, c.Ticket)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if t.Owner == sess.identity {
		_, _ = fmt.Fprintf(w, "Ticket %d is already yours\n", t.Number)
		return nil
	}

	// A cached owner may be stale, so the server decides.
	switch a := sess.store.Run(sess.store.ClaimTicket(c.Game, c.Ticket, sess.identity)).(type) {
	case store.ClaimFailed:
		kind := store.Classify(a.Err)
		msg := a.Err.Error()
		if kind == store.KindConflict {
			msg = "too slow, that ticket was already claimed"
		}
		return &RequestError{Resource: "claim", Kind: kind, Message: msg}
	case store.ClaimConfirmed:
		_, _ = fmt.Fprintf(w, "Claimed ticket %d\n", t.Number)
	}
	return nil
}

// --- release ---

// ReleaseCmd gives back one of your tickets.
type ReleaseCmd struct {
	Game   int64 `arg:"" help:"Game primary key."`
	Ticket int64 `arg:"" help:"Ticket primary key."`
}

// Run executes the release command.
func (c *ReleaseCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *ReleaseCmd) run(w io.Writer, sess *session) error {
	t, err := sess.ownTicket(c.Game, c.Ticket)
	if err != nil {
		var re *RequestError
		if errors.As(err, &re) {
			return err
		}
		return fmt.Errorf("release: %w", err)
	}
	if a, ok := sess.store.Run(sess.store.ReleaseTicket(c.Game, c.Ticket, sess.identity)).(store.ReleaseFailed); ok {
		return &RequestError{Resource: "release", Kind: store.Classify(a.Err), Message: a.Err.Error()}
	}
	_, _ = fmt.Fprintf(w, "Released ticket %d\n", t.Number)
	return nil
}

// --- show ---

// ShowCmd prints the grid of a ticket.
type ShowCmd struct {
	Game   int64 `arg:"" help:"Game primary key."`
	Ticket int64 `arg:"" help:"Ticket primary key."`
}

// Run executes the show command.
func (c *ShowCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("show: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *ShowCmd) run(w io.Writer, sess *session) error {
	if err := sess.loadGames(); err != nil {
		return err
	}
	if err := sess.loadTickets(c.Game); err != nil {
		return err
	}
	if _, err := sess.ticket(c.Game, c.Ticket); err != nil {
		return fmt.Errorf("show: %w", err)
	}
	if err := sess.load("game detail", sess.store.FetchGameDetailIfNeeded(c.Game, sess.identity), func() store.Entry {
		return sess.sel.Game(c.Game).Detail
	}); err != nil {
		return err
	}
	if err := sess.loadTicketDetail(c.Game, c.Ticket); err != nil {
		return err
	}

	game := sess.sel.Game(c.Game)
	t := sess.sel.Ticket(c.Game, c.Ticket)
	_, _ = fmt.Fprintf(w, "%s  Ticket %d  %s\n", titleStyle.Render(game.Title), t.Number, ownerLabel(t.Ticket, sess.identity))
	printTable(w, gridTable(w, game.Options, t.Ticket))
	_, _ = fmt.Fprintf(w, "%d of %d checked\n", t.Checked.Count(), len(t.Tracks))
	return nil
}

// gridTable lays the ticket tracks out in the game's grid shape.
func gridTable(w io.Writer, opts bingo.Options, t bingo.Ticket) *table.Table {
	cols := opts.Columns
	if cols <= 0 {
		cols = 5
	}
	tbl := newTable(w).BorderRow(isTerminal(w))
	for start := 0; start < len(t.Tracks); start += cols {
		row := make([]string, 0, cols)
		for i := start; i < start+cols && i < len(t.Tracks); i++ {
			mark := "  "
			if t.Checked.IsSet(i) {
				mark = "✓ "
			}
			tr := t.Tracks[i]
			row = append(row, fmt.Sprintf("%s%d %s\n  %s", mark, i, tr.Title, tr.Artist))
		}
		tbl.Row(row...)
	}
	return tbl
}

// --- check ---

// CheckCmd toggles one cell of a ticket you hold.
type CheckCmd struct {
	Game   int64 `arg:"" help:"Game primary key."`
	Ticket int64 `arg:"" help:"Ticket primary key."`
	Cell   int   `arg:"" help:"Cell index, counting from 0 along each row."`
}

// Run executes the check command.
func (c *CheckCmd) Run(g *Globals) error {
	sess, err := openSession(g, os.Stderr)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	return c.run(os.Stdout, sess)
}

func (c *CheckCmd) run(w io.Writer, sess *session) error {
	if _, err := sess.ownTicket(c.Game, c.Ticket); err != nil {
		var re *RequestError
		if errors.As(err, &re) {
			return err
		}
		return fmt.Errorf("check: %w", err)
	}
	if err := sess.loadTicketDetail(c.Game, c.Ticket); err != nil {
		return err
	}
	task, err := sess.store.ToggleCell(c.Game, c.Ticket, c.Cell)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}
	a, _ := sess.store.Run(task).(store.CellSynced)
	if a.Err != nil {
		return &RequestError{Resource: "check", Kind: store.Classify(a.Err), Message: a.Err.Error()}
	}
	state := "unchecked"
	if a.Checked.IsSet(c.Cell) {
		state = "checked"
	}
	_, _ = fmt.Fprintf(w, "Cell %d %s (%d checked)\n", c.Cell, state, a.Checked.Count())
	return nil
}
