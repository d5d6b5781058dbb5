package store

import (
	"errors"
	"fmt"

	"github.com/smileynet/bingo/internal/bingo"
)

// ErrUnknownTicket is returned when an operation names a ticket that is
// not in the cache.
var ErrUnknownTicket = errors.New("store: unknown ticket")

// ErrDetailNotLoaded is returned by ToggleCell before the ticket's detail
// has been fetched. Until then the cached mask is not the server's.
var ErrDetailNotLoaded = errors.New("store: ticket detail not loaded")

// ClaimTicket asks the server to give ticket to identity. Ownership is not
// changed locally until the server confirms. It returns nil while a claim
// or release of the same ticket is still in flight.
func (s *Store) ClaimTicket(game, ticket int64, identity bingo.Identity) Task {
	if !s.startOp(ticket, OpClaim) {
		return nil
	}
	s.logger.Info("claiming ticket", "game", game, "ticket", ticket, "identity", identity)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		if err := backend.Claim(ctx, game, ticket); err != nil {
			return ClaimFailed{Game: game, Ticket: ticket, User: identity, Err: err}
		}
		return ClaimConfirmed{Game: game, Ticket: ticket, User: identity}
	}
}

// ReleaseTicket asks the server to release identity's ticket.
func (s *Store) ReleaseTicket(game, ticket int64, identity bingo.Identity) Task {
	if !s.startOp(ticket, OpRelease) {
		return nil
	}
	s.logger.Info("releasing ticket", "game", game, "ticket", ticket, "identity", identity)
	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		if err := backend.Release(ctx, game, ticket); err != nil {
			return ReleaseFailed{Game: game, Ticket: ticket, User: identity, Err: err}
		}
		return ReleaseConfirmed{Game: game, Ticket: ticket, User: identity}
	}
}

// ToggleCell flips one checked cell of a ticket immediately and returns a
// fire-and-forget task that sends the new mask to the server. The result
// of that task is only logged. The server stores whole masks, so the
// ticket detail must have loaded first.
func (s *Store) ToggleCell(game, ticket int64, cell int) (Task, error) {
	t, ok := s.tickets[ticket]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTicket, ticket)
	}
	if e, ok := s.ticketDetails[ticket]; !ok || !e.Loaded() {
		return nil, fmt.Errorf("%w: %d", ErrDetailNotLoaded, ticket)
	}
	checked, err := t.Checked.Toggle(cell)
	if err != nil {
		return nil, err
	}
	t.Checked = checked
	s.version++

	backend := s.backend
	return func() Action {
		ctx, cancel := s.requestContext()
		defer cancel()
		err := backend.SetChecked(ctx, game, ticket, checked)
		return CellSynced{Game: game, Ticket: ticket, Checked: checked, Err: err}
	}, nil
}

func (s *Store) startOp(ticket int64, op Op) bool {
	if p, ok := s.pending[ticket]; ok && p.InFlight {
		return false
	}
	s.pending[ticket] = Pending{Op: op, InFlight: true}
	s.version++
	return true
}

// confirmClaim assigns the ticket only if nobody holds it. A background
// snapshot may already have handed it to someone else, and that snapshot
// is authoritative.
func (s *Store) confirmClaim(a ClaimConfirmed) {
	s.pending[a.Ticket] = Pending{Op: OpClaim}
	t, ok := s.tickets[a.Ticket]
	if !ok {
		s.logger.Debug("claim confirmed for uncached ticket", "ticket", a.Ticket)
		return
	}
	if t.Owner != bingo.Unclaimed {
		s.logger.Info("claim confirmation ignored, ticket already owned",
			"ticket", a.Ticket, "owner", t.Owner, "claimant", a.User)
		return
	}
	t.Owner = a.User
}

// failClaim records the failure. A conflict means the cached owner is
// wrong, so the game's ticket list is invalidated.
func (s *Store) failClaim(a ClaimFailed) {
	kind := Classify(a.Err)
	s.pending[a.Ticket] = Pending{Op: OpClaim, Err: errText(a.Err), ErrKind: kind}
	s.logger.Warn("claim failed", "game", a.Game, "ticket", a.Ticket, "kind", kind.String(), "error", a.Err)
	if kind == KindConflict {
		s.ticketListEntry(a.Game).invalidate()
	}
}

// confirmRelease clears the owner only if the releasing user still holds
// the ticket.
func (s *Store) confirmRelease(a ReleaseConfirmed) {
	s.pending[a.Ticket] = Pending{Op: OpRelease}
	t, ok := s.tickets[a.Ticket]
	if !ok {
		return
	}
	if t.Owner != a.User {
		s.logger.Info("release confirmation ignored, ticket not owned by releaser",
			"ticket", a.Ticket, "owner", t.Owner, "releaser", a.User)
		return
	}
	t.Owner = bingo.Unclaimed
}

func (s *Store) failRelease(a ReleaseFailed) {
	kind := Classify(a.Err)
	s.pending[a.Ticket] = Pending{Op: OpRelease, Err: errText(a.Err), ErrKind: kind}
	s.logger.Warn("release failed", "game", a.Game, "ticket", a.Ticket, "kind", kind.String(), "error", a.Err)
}

// mergeSnapshot overwrites the owner of every ticket named in the
// snapshot. Tickets of the game that the snapshot does not name are left
// alone.
func (s *Store) mergeSnapshot(a StatusReceived) {
	e := s.ticketListEntry(a.Game)
	if !s.settle(e, a.Seq, "ticket status") {
		return
	}
	now := s.now()
	e.refresh(now)

	changed := 0
	for pk, owner := range a.Claimed {
		t, ok := s.tickets[pk]
		if !ok || t.Game != a.Game {
			continue
		}
		if t.Owner != owner {
			changed++
		}
		t.Owner = owner
		t.LastUpdated = now
	}
	s.logger.Debug("ticket status merged", "game", a.Game, "named", len(a.Claimed), "changed", changed)
}

func (s *Store) cellSynced(a CellSynced) {
	if a.Err != nil {
		s.logger.Warn("checked cell update failed", "game", a.Game, "ticket", a.Ticket, "checked", uint32(a.Checked), "error", a.Err)
		return
	}
	s.logger.Debug("checked cell update sent", "game", a.Game, "ticket", a.Ticket, "checked", uint32(a.Checked))
}

func errText(err error) string {
	if err == nil || err.Error() == "" {
		return "unknown error"
	}
	return err.Error()
}
