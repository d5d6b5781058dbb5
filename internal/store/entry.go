package store

import (
	"errors"
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

// ErrorKind classifies the last failure recorded on an entry so views can
// render each kind differently.
type ErrorKind int

const (
	KindNone      ErrorKind = iota // No failure recorded.
	KindTransport                  // Request could not complete.
	KindServer                     // Server answered with a non-2xx status.
	KindConflict                   // Claim refused because the ticket was taken.
)

// String returns the lower-case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// statusCoder is implemented by errors that carry an HTTP status.
type statusCoder interface {
	HTTPStatus() int
}

// Classify maps a backend error onto an ErrorKind.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, bingo.ErrAlreadyClaimed) {
		return KindConflict
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return KindServer
	}
	return KindTransport
}

// Entry tracks fetch status and validity of one cached collection.
// The zero value is not the initial state; use NewEntry.
type Entry struct {
	IsFetching bool
	// Invalid is true when the data is stale or was never loaded.
	Invalid bool
	// Err is the last failure reason, empty after a successful fetch.
	Err     string
	ErrKind ErrorKind
	// LastUpdated is the time of the last fetch that completed, zero if none did.
	LastUpdated time.Time
	// Owner is the session identity the cached data belongs to.
	Owner bingo.Identity

	issued  uint64 // sequence of the latest Requesting transition
	applied uint64 // highest sequence whose response was applied
}

// NewEntry returns an entry in the Initial state.
func NewEntry() Entry {
	return Entry{Invalid: true, Owner: bingo.Anonymous}
}

// Loaded reports whether the entry has ever completed a fetch.
func (e Entry) Loaded() bool {
	return !e.LastUpdated.IsZero()
}

// begin enters the Requesting state for identity.
func (e *Entry) begin(identity bingo.Identity, seq uint64) {
	e.IsFetching = true
	e.Owner = identity
	e.issued = seq
}

// settle decides whether the response to request seq is applied.
// IsFetching stays set while a newer request is still outstanding, so at
// most one fetch is tracked at a time. Only invalidate lets a second
// request start before the first settles.
func (e *Entry) settle(seq uint64, discardSuperseded bool) bool {
	if discardSuperseded && seq < e.applied {
		return false
	}
	if seq >= e.issued {
		e.IsFetching = false
	}
	if seq > e.applied {
		e.applied = seq
	}
	return true
}

// succeed enters the Populated state.
func (e *Entry) succeed(now time.Time) {
	e.Invalid = false
	e.Err = ""
	e.ErrKind = KindNone
	e.LastUpdated = now
}

// refresh records a partial update (a status snapshot) without changing
// validity. A stale entry stays stale until a full fetch lands.
func (e *Entry) refresh(now time.Time) {
	if !e.Invalid {
		e.Err = ""
		e.ErrKind = KindNone
	}
	e.LastUpdated = now
}

// fail enters the Failed state. Err is never left empty.
func (e *Entry) fail(now time.Time, err error) {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	e.Invalid = true
	e.Err = msg
	e.ErrKind = Classify(err)
	e.LastUpdated = now
}

// invalidate returns the entry to Invalid-not-fetching, even from
// Requesting. This is the one way an entry gets two requests in flight:
// the next fetch is issued without waiting for the abandoned one. The
// sequence numbers in settle order the two responses. The older one is
// still applied when it lands unless superseded responses are discarded.
func (e *Entry) invalidate() {
	e.Invalid = true
	e.IsFetching = false
}
