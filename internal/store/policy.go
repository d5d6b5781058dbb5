package store

import (
	"time"

	"github.com/smileynet/bingo/internal/bingo"
)

// DefaultUpdateInterval is how often the ticket status poll refreshes a game.
const DefaultUpdateInterval = 30 * time.Second

// ShouldFetch decides whether entry needs a network fetch for requesting.
// cached is the identity the entry's data belongs to.
func ShouldFetch(entry Entry, requesting, cached bingo.Identity) bool {
	if entry.IsFetching {
		return false
	}
	if requesting != cached {
		return true
	}
	return entry.Invalid
}

// UpdateDue reports whether the periodic status poll should run for entry.
// An invalid entry needs a full fetch first, so the poll never runs on it.
func UpdateDue(entry Entry, now time.Time, interval time.Duration) bool {
	if entry.IsFetching || entry.Invalid {
		return false
	}
	return now.Sub(entry.LastUpdated) >= interval
}
