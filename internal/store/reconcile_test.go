package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

func TestClaimTicket_ConfirmationSetsOwner(t *testing.T) {
	// Given: ticket 5 is unclaimed
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)

	// When: the claim is issued, ownership is not changed yet
	task := s.ClaimTicket(2, 5, 42)
	if task == nil {
		t.Fatal("claim should produce a task")
	}
	if tk, _ := s.Ticket(5); tk.Owner != bingo.Unclaimed {
		t.Fatalf("owner = %d before confirmation, want unclaimed", tk.Owner)
	}
	if p, _ := s.Pending(5); !p.InFlight || p.Op != OpClaim {
		t.Errorf("pending = %+v, want claim in flight", p)
	}

	// When: the server confirms
	s.Apply(task())

	// Then: the claimant owns it
	if tk, _ := s.Ticket(5); tk.Owner != 42 {
		t.Errorf("owner = %d, want 42", tk.Owner)
	}
	if p, _ := s.Pending(5); p.InFlight || p.Err != "" {
		t.Errorf("pending = %+v, want settled without error", p)
	}
}

func TestClaimConfirmed_DoesNotOverwriteRaceWinner(t *testing.T) {
	// Given: a claim by 42 is in flight
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)
	task := s.ClaimTicket(2, 5, 42)

	// When: a background snapshot hands the ticket to 99 first
	s.Apply(StatusReceived{Seq: 0, Game: 2, Claimed: bingo.StatusSnapshot{5: 99}})
	s.Apply(task())

	// Then: the confirmation does not overwrite the existing owner
	if tk, _ := s.Ticket(5); tk.Owner != 99 {
		t.Errorf("owner = %d, want 99", tk.Owner)
	}
}

func TestClaimTicket_DebouncesWhileInFlight(t *testing.T) {
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)

	first := s.ClaimTicket(2, 5, 42)
	if second := s.ClaimTicket(2, 5, 42); second != nil {
		t.Error("second claim should be ignored while the first is in flight")
	}
	if release := s.ReleaseTicket(2, 5, 42); release != nil {
		t.Error("release should be ignored while a claim is in flight")
	}
	s.Apply(first())
	if again := s.ReleaseTicket(2, 5, 42); again == nil {
		t.Error("release should be allowed once the claim settled")
	}
}

func TestClaimTicket_ConflictIsDistinguishable(t *testing.T) {
	// Given: the server refuses the claim as already taken
	b := newStubBackend()
	b.claimErr = fmt.Errorf("api: claim: %w", bingo.ErrAlreadyClaimed)
	s, _ := newTestStore(b)
	loadTickets(s, b)

	// When: the claim fails
	a := s.Run(s.ClaimTicket(2, 5, 42))

	// Then: a conflict is reported and the ticket list is invalidated
	if _, ok := a.(ClaimFailed); !ok {
		t.Fatalf("action = %T, want ClaimFailed", a)
	}
	p, _ := s.Pending(5)
	if p.ErrKind != KindConflict {
		t.Errorf("ErrKind = %v, want conflict", p.ErrKind)
	}
	if p.InFlight {
		t.Error("pending claim should have settled")
	}
	if tk, _ := s.Ticket(5); tk.Owner != bingo.Unclaimed {
		t.Errorf("owner = %d, want unchanged", tk.Owner)
	}
	if !s.TicketsEntry(2).Invalid {
		t.Error("conflict should invalidate the ticket list")
	}
}

func TestClaimTicket_GenericFailureKeepsList(t *testing.T) {
	b := newStubBackend()
	b.claimErr = errors.New("network unreachable")
	s, _ := newTestStore(b)
	loadTickets(s, b)

	s.Run(s.ClaimTicket(2, 5, 42))

	p, _ := s.Pending(5)
	if p.ErrKind != KindTransport {
		t.Errorf("ErrKind = %v, want transport", p.ErrKind)
	}
	if s.TicketsEntry(2).Invalid {
		t.Error("a transport failure should not invalidate the list")
	}
}

func TestReleaseConfirmed_Guard(t *testing.T) {
	tests := []struct {
		name      string
		owner     bingo.Identity
		releaser  bingo.Identity
		wantOwner bingo.Identity
	}{
		{name: "owned by releaser", owner: 42, releaser: 42, wantOwner: bingo.Unclaimed},
		{name: "owned by someone else", owner: 99, releaser: 42, wantOwner: 99},
		{name: "already free", owner: bingo.Unclaimed, releaser: 42, wantOwner: bingo.Unclaimed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newStubBackend()
			s, _ := newTestStore(b)
			loadTickets(s, b)
			s.Apply(StatusReceived{Game: 2, Claimed: bingo.StatusSnapshot{5: tt.owner}})

			s.Run(s.ReleaseTicket(2, 5, tt.releaser))

			if tk, _ := s.Ticket(5); tk.Owner != tt.wantOwner {
				t.Errorf("owner = %d, want %d", tk.Owner, tt.wantOwner)
			}
		})
	}
}

func TestReleaseTicket_FailureRecorded(t *testing.T) {
	b := newStubBackend()
	b.releaseErr = statusErr{code: 403}
	s, _ := newTestStore(b)
	loadTickets(s, b)

	s.Run(s.ReleaseTicket(2, 6, 7))

	p, ok := s.Pending(6)
	if !ok || p.Op != OpRelease || p.ErrKind != KindServer {
		t.Errorf("pending = %+v, want release server failure", p)
	}
	if tk, _ := s.Ticket(6); tk.Owner != 7 {
		t.Errorf("owner = %d, want 7", tk.Owner)
	}
}

func TestStatusSnapshot_OverwritesOnlyNamedTickets(t *testing.T) {
	// Given: tickets 5 (free), 6 (owned by 7), 9 (free)
	b := newStubBackend()
	s, clk := newTestStore(b)
	loadTickets(s, b)
	before9, _ := s.Ticket(9)
	clk.Advance(45 * time.Second)

	// When: a snapshot names ticket 5 as owned by 42 and 6 as free
	s.Apply(StatusReceived{Game: 2, Claimed: bingo.StatusSnapshot{5: 42, 6: bingo.Unclaimed}})

	// Then: 5 and 6 are overwritten and 9 is untouched
	t5, _ := s.Ticket(5)
	if t5.Owner != 42 {
		t.Errorf("ticket 5 owner = %d, want 42", t5.Owner)
	}
	if !t5.LastUpdated.Equal(clk.Now()) {
		t.Errorf("ticket 5 LastUpdated = %v, want %v", t5.LastUpdated, clk.Now())
	}
	if t6, _ := s.Ticket(6); t6.Owner != bingo.Unclaimed {
		t.Errorf("ticket 6 owner = %d, want unclaimed", t6.Owner)
	}
	t9, _ := s.Ticket(9)
	if t9.Owner != before9.Owner || !t9.LastUpdated.Equal(before9.LastUpdated) {
		t.Errorf("ticket 9 changed: %+v -> %+v", before9, t9)
	}
}

func TestStatusSnapshot_IgnoresOtherGamesAndUnknownTickets(t *testing.T) {
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)

	s.Apply(StatusReceived{Game: 3, Claimed: bingo.StatusSnapshot{5: 42, 1234: 42}})

	if tk, _ := s.Ticket(5); tk.Owner != bingo.Unclaimed {
		t.Errorf("ticket 5 owner = %d, snapshot for another game should not apply", tk.Owner)
	}
	if _, ok := s.Ticket(1234); ok {
		t.Error("snapshot should not create tickets")
	}
}

func TestToggleCell_LocalFirst(t *testing.T) {
	// Given: ticket 5 with nothing checked
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)
	loadDetail(s, b, 0)

	// When: cell 3 is toggled
	task, err := s.ToggleCell(2, 5, 3)
	if err != nil {
		t.Fatalf("ToggleCell() error = %v", err)
	}

	// Then: the bit is set before the server is contacted
	if tk, _ := s.Ticket(5); tk.Checked != 8 {
		t.Errorf("checked = %d, want 8", tk.Checked)
	}
	if b.calls["checked"] != 0 {
		t.Error("server should not be contacted before the task runs")
	}
	s.Apply(task())
	if len(b.checked) != 1 || b.checked[0] != 8 {
		t.Errorf("sent masks = %v, want [8]", b.checked)
	}

	// When: toggled again
	task, _ = s.ToggleCell(2, 5, 3)
	s.Apply(task())
	if tk, _ := s.Ticket(5); tk.Checked != 0 {
		t.Errorf("checked = %d, want 0", tk.Checked)
	}
}

func TestToggleCell_ServerFailureKeepsLocalState(t *testing.T) {
	b := newStubBackend()
	b.checkedErr = errors.New("offline")
	s, _ := newTestStore(b)
	loadTickets(s, b)
	loadDetail(s, b, 0)

	task, _ := s.ToggleCell(2, 5, 0)
	s.Apply(task())

	if tk, _ := s.Ticket(5); tk.Checked != 1 {
		t.Errorf("checked = %d, want 1 kept locally", tk.Checked)
	}
}

func TestToggleCell_KeepsServerCells(t *testing.T) {
	// Given: the server already has cell 0 checked on ticket 5
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)
	loadDetail(s, b, 1)

	// When: cell 3 is toggled
	task, err := s.ToggleCell(2, 5, 3)
	if err != nil {
		t.Fatalf("ToggleCell() error = %v", err)
	}
	s.Apply(task())

	// Then: the mask sent carries both cells
	if len(b.checked) != 1 || b.checked[0] != 9 {
		t.Errorf("sent masks = %v, want [9]", b.checked)
	}
}

func TestToggleCell_RequiresDetail(t *testing.T) {
	// Given: ticket 5 is listed but its detail was never fetched
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)

	// When: a cell is toggled
	_, err := s.ToggleCell(2, 5, 3)

	// Then: it is refused and nothing changes
	if !errors.Is(err, ErrDetailNotLoaded) {
		t.Fatalf("err = %v, want ErrDetailNotLoaded", err)
	}
	if tk, _ := s.Ticket(5); tk.Checked != 0 {
		t.Errorf("checked = %d, want 0", tk.Checked)
	}
	if b.calls["checked"] != 0 {
		t.Error("nothing should be sent")
	}
}

func TestToggleCell_Errors(t *testing.T) {
	b := newStubBackend()
	s, _ := newTestStore(b)
	loadTickets(s, b)
	loadDetail(s, b, 0)

	if _, err := s.ToggleCell(2, 404, 1); !errors.Is(err, ErrUnknownTicket) {
		t.Errorf("unknown ticket error = %v, want ErrUnknownTicket", err)
	}
	if _, err := s.ToggleCell(2, 5, bingo.MaxCells); !errors.Is(err, bingo.ErrCellOutOfRange) {
		t.Errorf("out of range error = %v, want ErrCellOutOfRange", err)
	}
}
