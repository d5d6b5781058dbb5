// Package selector derives read views from the cache store.
//
// Every selector result is memoised against the store version, so views
// can call selectors on every render without recomputing unchanged data.
// Returned slices are shared between callers and must not be modified.
package selector

import (
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/smileynet/bingo/internal/bingo"
	"github.com/smileynet/bingo/internal/store"
)

// DefaultMemoSize is the number of selector results kept.
const DefaultMemoSize = 128

// SortOrder orders popularity groups by key.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// DecoratedGame is a game with its position in the day's schedule.
type DecoratedGame struct {
	bingo.Game
	// Round numbers games within a calendar day, starting at 1.
	Round             int
	FirstGameOfTheDay bool
}

// GameView is a single game lookup. A missing game yields a placeholder
// with PK -1 so views can render a not-found state.
type GameView struct {
	bingo.Game
	Placeholder bool
	Detail      store.Entry
}

// TicketView is a single ticket lookup. A missing ticket yields a
// placeholder with PK -1.
type TicketView struct {
	bingo.Ticket
	Placeholder bool
	Detail      store.Entry
	Pending     store.Pending
}

// PopularityGroup counts past games sharing a normalised title.
type PopularityGroup struct {
	Key   string
	Title string // title of the first game seen in the group
	Count int
	// MaxCount is the largest Count across all groups.
	MaxCount int
}

// ThemeUsage summarises when a theme was played.
type ThemeUsage struct {
	Slug  string
	Title string
	Count int
	// Months maps "YYYY-MM" to the number of games in that month. Months
	// without games are absent.
	Months map[string]int
	Last   time.Time
	// Since is the time elapsed since Last.
	Since time.Duration
}

// Selector computes memoised views over a store.
type Selector struct {
	store *store.Store
	loc   *time.Location
	memo  *lru.Cache[string, any]
}

// Option configures a Selector.
type Option func(*options)

type options struct {
	loc      *time.Location
	memoSize int
}

// WithLocation sets the time zone used to find calendar day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// WithMemoSize sets how many selector results are kept.
func WithMemoSize(n int) Option {
	return func(o *options) { o.memoSize = n }
}

// New creates a Selector reading from s.
func New(s *store.Store, opts ...Option) *Selector {
	o := options{loc: time.Local, memoSize: DefaultMemoSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.memoSize <= 0 {
		o.memoSize = DefaultMemoSize
	}
	if o.loc == nil {
		o.loc = time.Local
	}
	// lru.New only fails for a non-positive size.
	memo, _ := lru.New[string, any](o.memoSize)
	return &Selector{store: s, loc: o.loc, memo: memo}
}

// memoize returns the cached result for key at the current store version,
// computing it on a miss.
func memoize[T any](sel *Selector, key string, compute func() T) T {
	k := fmt.Sprintf("%d/%s", sel.store.Version(), key)
	if v, ok := sel.memo.Get(k); ok {
		return v.(T)
	}
	v := compute()
	sel.memo.Add(k, v)
	return v
}

// Location returns the time zone used for calendar days.
func (sel *Selector) Location() *time.Location {
	return sel.loc
}

// ActiveGames returns the current games decorated with round numbers.
func (sel *Selector) ActiveGames() []DecoratedGame {
	return memoize(sel, "active", func() []DecoratedGame {
		return decorate(sel.games(sel.store.CurrentOrder()), sel.loc)
	})
}

// PastGames returns past games decorated with round numbers. A non-empty
// slug keeps only games of that theme, and rounds are numbered within
// the filtered sequence.
func (sel *Selector) PastGames(slug string) []DecoratedGame {
	return memoize(sel, "past/"+slug, func() []DecoratedGame {
		games := sel.games(sel.store.PastOrder())
		if slug != "" {
			filtered := games[:0:0]
			for _, g := range games {
				if bingo.ThemeSlug(g.Title) == slug {
					filtered = append(filtered, g)
				}
			}
			games = filtered
		}
		return decorate(games, sel.loc)
	})
}

// Popularity groups past games by PopularityKey, sorted by key.
func (sel *Selector) Popularity(order SortOrder) []PopularityGroup {
	return memoize(sel, fmt.Sprintf("popularity/%d", order), func() []PopularityGroup {
		byKey := make(map[string]*PopularityGroup)
		for _, g := range sel.games(sel.store.PastOrder()) {
			key := bingo.PopularityKey(g.Title)
			grp, ok := byKey[key]
			if !ok {
				grp = &PopularityGroup{Key: key, Title: g.Title}
				byKey[key] = grp
			}
			grp.Count++
		}
		maxCount := 0
		groups := make([]PopularityGroup, 0, len(byKey))
		for _, grp := range byKey {
			if grp.Count > maxCount {
				maxCount = grp.Count
			}
			groups = append(groups, *grp)
		}
		for i := range groups {
			groups[i].MaxCount = maxCount
		}
		sort.Slice(groups, func(i, j int) bool {
			if order == Descending {
				return groups[i].Key > groups[j].Key
			}
			return groups[i].Key < groups[j].Key
		})
		return groups
	})
}

// Calendar summarises past games per theme slug, sorted by slug.
func (sel *Selector) Calendar(now time.Time) []ThemeUsage {
	return memoize(sel, fmt.Sprintf("calendar/%d", now.UnixNano()), func() []ThemeUsage {
		bySlug := make(map[string]*ThemeUsage)
		for _, g := range sel.games(sel.store.PastOrder()) {
			slug := bingo.ThemeSlug(g.Title)
			u, ok := bySlug[slug]
			if !ok {
				u = &ThemeUsage{Slug: slug, Title: g.Title, Months: make(map[string]int)}
				bySlug[slug] = u
			}
			u.Count++
			u.Months[g.Start.In(sel.loc).Format("2006-01")]++
			if g.Start.After(u.Last) {
				u.Last = g.Start
			}
		}
		usage := make([]ThemeUsage, 0, len(bySlug))
		for _, u := range bySlug {
			u.Since = now.Sub(u.Last)
			usage = append(usage, *u)
		}
		sort.Slice(usage, func(i, j int) bool { return usage[i].Slug < usage[j].Slug })
		return usage
	})
}

// Tickets returns all cached tickets of a game in ticket order.
func (sel *Selector) Tickets(game int64) []bingo.Ticket {
	return memoize(sel, fmt.Sprintf("tickets/%d", game), func() []bingo.Ticket {
		order := sel.store.TicketOrder(game)
		tickets := make([]bingo.Ticket, 0, len(order))
		for _, pk := range order {
			if t, ok := sel.store.Ticket(pk); ok {
				tickets = append(tickets, t)
			}
		}
		return tickets
	})
}

// MyTickets returns the tickets of a game owned by identity.
func (sel *Selector) MyTickets(game int64, identity bingo.Identity) []bingo.Ticket {
	return memoize(sel, fmt.Sprintf("mine/%d/%d", game, identity), func() []bingo.Ticket {
		var mine []bingo.Ticket
		if identity == bingo.Anonymous || identity == bingo.Unclaimed {
			return mine
		}
		for _, t := range sel.Tickets(game) {
			if t.Owner == identity {
				mine = append(mine, t)
			}
		}
		return mine
	})
}

// Game looks up one game.
func (sel *Selector) Game(pk int64) GameView {
	g, ok := sel.store.Game(pk)
	if !ok {
		return GameView{Game: bingo.Game{PK: -1}, Placeholder: true, Detail: sel.store.GameDetailEntry(pk)}
	}
	return GameView{Game: g, Detail: sel.store.GameDetailEntry(pk)}
}

// Ticket looks up one ticket of a game.
func (sel *Selector) Ticket(game, pk int64) TicketView {
	t, ok := sel.store.Ticket(pk)
	if !ok || t.Game != game {
		return TicketView{Ticket: bingo.Ticket{PK: -1, Game: game}, Placeholder: true, Detail: sel.store.TicketDetailEntry(pk)}
	}
	p, _ := sel.store.Pending(pk)
	return TicketView{Ticket: t, Detail: sel.store.TicketDetailEntry(pk), Pending: p}
}

// GamesStatus returns the games list entry.
func (sel *Selector) GamesStatus() store.Entry {
	return sel.store.GamesEntry()
}

// TicketsStatus returns the ticket list entry of a game.
func (sel *Selector) TicketsStatus(game int64) store.Entry {
	return sel.store.TicketsEntry(game)
}

// TicketDetailStatus returns the detail entry of a ticket.
func (sel *Selector) TicketDetailStatus(ticket int64) store.Entry {
	return sel.store.TicketDetailEntry(ticket)
}

func (sel *Selector) games(order []int64) []bingo.Game {
	games := make([]bingo.Game, 0, len(order))
	for _, pk := range order {
		if g, ok := sel.store.Game(pk); ok {
			games = append(games, g)
		}
	}
	return games
}

// decorate numbers games by round. The round resets to 1 whenever a game
// starts on a different calendar day from the one before it.
func decorate(games []bingo.Game, loc *time.Location) []DecoratedGame {
	out := make([]DecoratedGame, len(games))
	var prevY, prevD int
	var prevM time.Month
	round := 0
	for i, g := range games {
		y, m, d := g.Start.In(loc).Date()
		first := i == 0 || y != prevY || m != prevM || d != prevD
		if first {
			round = 1
		} else {
			round++
		}
		out[i] = DecoratedGame{Game: g, Round: round, FirstGameOfTheDay: first}
		prevY, prevM, prevD = y, m, d
	}
	return out
}
