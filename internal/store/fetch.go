package store

import (
	"github.com/smileynet/bingo/internal/bingo"
)

// FetchGamesIfNeeded starts a games list fetch when the cached list is
// stale or belongs to another identity.
func (s *Store) FetchGamesIfNeeded(identity bingo.Identity) Task {
	if !ShouldFetch(s.games, identity, s.games.Owner) {
		return nil
	}
	seq := s.begin(&s.games, identity)
	s.logger.Debug("fetching games", "seq", seq, "identity", identity)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		games, err := backend.Games(ctx)
		if err != nil {
			return GamesFailed{Seq: seq, Err: err}
		}
		return GamesReceived{Seq: seq, Games: games}
	}
}

// FetchGameDetailIfNeeded starts a detail fetch (track list) for one game.
func (s *Store) FetchGameDetailIfNeeded(game int64, identity bingo.Identity) Task {
	e := s.gameDetailEntry(game)
	if !ShouldFetch(*e, identity, e.Owner) {
		return nil
	}
	seq := s.begin(e, identity)
	s.logger.Debug("fetching game detail", "seq", seq, "game", game)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		detail, err := backend.GameDetail(ctx, game)
		if err != nil {
			return GameDetailFailed{Seq: seq, Game: game, Err: err}
		}
		return GameDetailReceived{Seq: seq, Game: game, Detail: detail}
	}
}

// FetchTicketsIfNeeded starts a ticket list fetch for one game.
func (s *Store) FetchTicketsIfNeeded(game int64, identity bingo.Identity) Task {
	e := s.ticketListEntry(game)
	if !ShouldFetch(*e, identity, e.Owner) {
		return nil
	}
	seq := s.begin(e, identity)
	s.logger.Debug("fetching tickets", "seq", seq, "game", game)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		tickets, err := backend.Tickets(ctx, game)
		if err != nil {
			return TicketsFailed{Seq: seq, Game: game, Err: err}
		}
		return TicketsReceived{Seq: seq, Game: game, Tickets: tickets}
	}
}

// FetchTicketStatusIfNeeded starts the periodic ownership poll of a game
// when an update is due. The poll shares the ticket list entry, so it
// never overlaps a full ticket list fetch. It does nothing for an identity
// other than the one the list was fetched for; that case needs a full
// refetch through FetchTicketsIfNeeded.
func (s *Store) FetchTicketStatusIfNeeded(game int64, identity bingo.Identity) Task {
	e, ok := s.ticketLists[game]
	if !ok || e.Owner != identity {
		return nil
	}
	if !UpdateDue(*e, s.now(), s.updateInterval) {
		return nil
	}
	seq := s.begin(e, identity)
	s.logger.Debug("polling ticket status", "seq", seq, "game", game)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		claimed, err := backend.TicketStatus(ctx, game)
		if err != nil {
			return StatusFailed{Seq: seq, Game: game, Err: err}
		}
		return StatusReceived{Seq: seq, Game: game, Claimed: claimed}
	}
}

// FetchTicketDetailIfNeeded starts a detail fetch (grid and checked
// cells) for one ticket.
func (s *Store) FetchTicketDetailIfNeeded(game, ticket int64, identity bingo.Identity) Task {
	e := s.ticketDetailEntry(ticket)
	if !ShouldFetch(*e, identity, e.Owner) {
		return nil
	}
	seq := s.begin(e, identity)
	s.logger.Debug("fetching ticket detail", "seq", seq, "game", game, "ticket", ticket)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		detail, err := backend.TicketDetail(ctx, game, ticket)
		if err != nil {
			return TicketDetailFailed{Seq: seq, Game: game, Ticket: ticket, Err: err}
		}
		return TicketDetailReceived{Seq: seq, Game: game, Ticket: ticket, Detail: detail}
	}
}

// receiveGames replaces both game orderings. Games missing from the list
// are dropped along with their tickets; surviving games keep their merged
// track list.
func (s *Store) receiveGames(a GamesReceived) {
	if !s.settle(&s.games, a.Seq, "games") {
		return
	}
	now := s.now()
	s.games.succeed(now)

	next := make(map[int64]*bingo.Game, len(a.Games))
	current := make([]int64, 0, len(a.Games))
	past := make([]int64, 0)
	for _, g := range a.Games {
		if old, ok := s.gameMap[g.PK]; ok && len(g.Tracks) == 0 {
			g.Tracks = old.Tracks
		}
		if g.TicketOrder == nil {
			g.TicketOrder = s.ticketOrder[g.PK]
		}
		next[g.PK] = &g
		if !g.End.IsZero() && g.End.Before(now) {
			past = append(past, g.PK)
		} else {
			current = append(current, g.PK)
		}
	}
	for pk := range s.gameMap {
		if _, ok := next[pk]; !ok {
			s.dropGame(pk)
		}
	}
	s.gameMap = next
	s.current = current
	s.past = past
	s.logger.Debug("games received", "current", len(current), "past", len(past))
}

// dropGame forgets everything cached under a game the server no longer
// lists.
func (s *Store) dropGame(game int64) {
	delete(s.gameDetails, game)
	delete(s.ticketLists, game)
	delete(s.ticketOrder, game)
	for pk, t := range s.tickets {
		if t.Game != game {
			continue
		}
		delete(s.tickets, pk)
		delete(s.ticketDetails, pk)
		delete(s.pending, pk)
	}
	s.logger.Debug("game dropped", "game", game)
}

// receiveGameDetail merges detail fields into the cached game.
func (s *Store) receiveGameDetail(a GameDetailReceived) {
	e := s.gameDetailEntry(a.Game)
	if !s.settle(e, a.Seq, "game detail") {
		return
	}
	e.succeed(s.now())

	g, ok := s.gameMap[a.Game]
	if !ok {
		d := a.Detail
		d.PK = a.Game
		s.gameMap[a.Game] = &d
		return
	}
	g.Tracks = append([]bingo.Track(nil), a.Detail.Tracks...)
	if a.Detail.Title != "" {
		g.Title = a.Detail.Title
	}
	if a.Detail.Options != (bingo.Options{}) {
		g.Options = a.Detail.Options
	}
	if !a.Detail.Start.IsZero() {
		g.Start = a.Detail.Start
	}
	if !a.Detail.End.IsZero() {
		g.End = a.Detail.End
	}
}

// receiveTickets replaces the ticket list of a game and the parent game's
// ticket ordering together. Tickets missing from the list are dropped.
// Surviving tickets keep their checked cells and grid; new tickets start
// with an empty grid.
func (s *Store) receiveTickets(a TicketsReceived) {
	e := s.ticketListEntry(a.Game)
	if !s.settle(e, a.Seq, "tickets") {
		return
	}
	now := s.now()
	e.succeed(now)

	keep := make(map[int64]bool, len(a.Tickets))
	order := make([]int64, 0, len(a.Tickets))
	for _, t := range a.Tickets {
		t.Game = a.Game
		t.LastUpdated = now
		if old, ok := s.tickets[t.PK]; ok {
			t.Checked = old.Checked
			t.Tracks = old.Tracks
		}
		if t.Tracks == nil {
			t.Tracks = []bingo.Track{}
		}
		s.tickets[t.PK] = &t
		keep[t.PK] = true
		order = append(order, t.PK)
	}
	for _, pk := range s.ticketOrder[a.Game] {
		if !keep[pk] {
			delete(s.tickets, pk)
			delete(s.ticketDetails, pk)
			delete(s.pending, pk)
		}
	}
	s.ticketOrder[a.Game] = order
	if g, ok := s.gameMap[a.Game]; ok {
		g.TicketOrder = append([]int64(nil), order...)
	}
}

// receiveTicketDetail stores the grid and checked cells of a ticket.
func (s *Store) receiveTicketDetail(a TicketDetailReceived) {
	e := s.ticketDetailEntry(a.Ticket)
	if !s.settle(e, a.Seq, "ticket detail") {
		return
	}
	now := s.now()
	e.succeed(now)

	t, ok := s.tickets[a.Ticket]
	if !ok {
		t = &bingo.Ticket{PK: a.Ticket, Game: a.Game}
		s.tickets[a.Ticket] = t
	}
	t.Tracks = append([]bingo.Track{}, a.Detail.Tracks...)
	t.Checked = a.Detail.Checked
	t.LastUpdated = now
}
