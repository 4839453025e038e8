package propagation

import (
	"sort"
	"sync"
	"time"
)

type EventKind string

const (
	KindVisit EventKind = "visit"
	KindLike  EventKind = "like"
)

// Event describes one accepted ledger mutation.
type Event struct {
	VenueID string
	Kind    EventKind
	First   bool
}

// XPConsumer receives coalesced interaction awards. Must be idempotent with
// respect to duplicate or skipped intermediate deliveries.
type XPConsumer interface {
	Award(kind EventKind, venueID string)
}

// AggregateStats is the ledger-wide summary handed to achievement
// recomputation.
type AggregateStats struct {
	VenuesEngaged int
	TotalVisits   int
	TotalLikes    int
}

// AchievementConsumer recomputes derived achievement state from aggregate
// ledger stats, not from event deltas.
type AchievementConsumer interface {
	Recompute(stats AggregateStats)
}

// StatsFn supplies current aggregate stats at delivery time, so consumers
// always see the latest state regardless of how many events were coalesced.
type StatsFn func() AggregateStats

// Bus delivers mutation events to the XP and achievement consumers with
// trailing-edge debounce. Bursts within the debounce window collapse to a
// single delivery carrying the latest state per (venue, kind). Consumers
// recompute from ledger state, so skipped intermediate deliveries are safe.
type Bus struct {
	mu      sync.Mutex
	pending map[pendingKey]Event
	xpDeb   *Debouncer
	achDeb  *Debouncer
	xp      XPConsumer
	ach     AchievementConsumer
	stats   StatsFn
}

type pendingKey struct {
	venueID string
	kind    EventKind
}

func NewBus(xpDebounce, achDebounce time.Duration, newTimer TimerFactory, xp XPConsumer, ach AchievementConsumer, stats StatsFn) *Bus {
	b := &Bus{
		pending: make(map[pendingKey]Event),
		xp:      xp,
		ach:     ach,
		stats:   stats,
	}
	b.xpDeb = NewDebouncer(xpDebounce, newTimer, b.deliverXP)
	b.achDeb = NewDebouncer(achDebounce, newTimer, b.deliverAchievements)
	return b
}

// Publish records one mutation event and restarts both debounce windows.
// Events for the same (venue, kind) within a burst coalesce to the latest,
// with First sticky so a first-interaction burst is never demoted.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	key := pendingKey{venueID: ev.VenueID, kind: ev.Kind}
	if prev, ok := b.pending[key]; ok && prev.First {
		ev.First = true
	}
	b.pending[key] = ev
	b.mu.Unlock()

	b.xpDeb.Trigger()
	b.achDeb.Trigger()
}

func (b *Bus) deliverXP() {
	if b.xp == nil {
		return
	}

	b.mu.Lock()
	burst := make([]Event, 0, len(b.pending))
	for _, ev := range b.pending {
		burst = append(burst, ev)
	}
	b.pending = make(map[pendingKey]Event)
	b.mu.Unlock()

	// Deterministic delivery order for a coalesced burst.
	sort.Slice(burst, func(i, j int) bool {
		if burst[i].VenueID != burst[j].VenueID {
			return burst[i].VenueID < burst[j].VenueID
		}
		return burst[i].Kind < burst[j].Kind
	})
	for _, ev := range burst {
		b.xp.Award(ev.Kind, ev.VenueID)
	}
}

func (b *Bus) deliverAchievements() {
	if b.ach == nil || b.stats == nil {
		return
	}
	b.ach.Recompute(b.stats())
}

// Close stops both debouncers. Pending bursts that have not fired are
// dropped; consumers converge from ledger state on the next delivery.
func (b *Bus) Close() {
	b.xpDeb.Stop()
	b.achDeb.Stop()
}
