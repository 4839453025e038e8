package models

import (
	"sort"
	"sync"
	"time"

	"barbuddy/internal/structures"
	"barbuddy/internal/timewindow"
)

// Ledger is the venue → VenueRecord mapping plus all mutation and query logic
// over it. It owns the records exclusively: callers only ever see deep
// copies. Every state-sensitive operation applies pending window resets for
// the touched records first, so resets are lazy but never observable as
// stale counts.
//
// Acceptance is decided synchronously from ledger state alone; replication
// and fan-out happen after the fact and never influence the verdict.
type Ledger struct {
	mu             sync.RWMutex
	venues         map[string]*VenueRecord
	policy         timewindow.Policy
	cooldown       time.Duration
	dailyLikeLimit int
}

func NewLedger(policy timewindow.Policy, conf *structures.Config) *Ledger {
	limit := conf.Windows.DailyLikeLimit
	if limit <= 0 {
		limit = 1
	}
	return &Ledger{
		venues:         make(map[string]*VenueRecord),
		policy:         policy,
		cooldown:       time.Duration(conf.Windows.CooldownHours) * time.Hour,
		dailyLikeLimit: limit,
	}
}

// resetLocked applies any elapsed window boundaries to one record. Idempotent:
// once the reset timestamps have advanced past the boundary, re-evaluation is
// a no-op. Does not touch LastMutatedAt: resets are derivable on every
// replica from the reset timestamps, so they must not perturb the
// last-write-wins conflict key.
func (l *Ledger) resetLocked(rec *VenueRecord, now time.Time) {
	if l.policy.VisitWindowElapsed(rec.LastVisitReset, now) {
		rec.VisitCount = 0
		rec.ArrivalSlot = ""
		rec.LastVisitReset = timewindow.At(l.policy.VisitBoundary(now))
	}
	if l.policy.LikeWindowElapsed(rec.LastLikeReset, now) {
		rec.DailyLikesUsed = 0
		rec.LikeSlot = ""
		rec.LastLikeReset = timewindow.At(l.policy.LikeBoundary(now))
	}
}

// ApplyPendingResets runs the reset pass over every record. Safe to call any
// number of times; only boundary crossings change anything.
func (l *Ledger) ApplyPendingResets(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.venues {
		l.resetLocked(rec, now)
	}
}

func (l *Ledger) canVisitLocked(rec *VenueRecord, now time.Time) bool {
	if rec == nil {
		return true
	}
	return timewindow.CooldownElapsed(rec.LastVisitAt, now, l.cooldown)
}

func (l *Ledger) canLikeLocked(rec *VenueRecord) bool {
	if rec == nil {
		return true
	}
	return rec.DailyLikesUsed < l.dailyLikeLimit
}

// CanVisit reports visit eligibility after applying pending resets. A venue
// with no record is always eligible.
func (l *Ledger) CanVisit(venueID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.venues[venueID]
	if rec != nil {
		l.resetLocked(rec, now)
	}
	return l.canVisitLocked(rec, now)
}

// CanLike reports like eligibility after applying the pending like-window
// reset.
func (l *Ledger) CanLike(venueID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec := l.venues[venueID]
	if rec != nil {
		l.resetLocked(rec, now)
	}
	return l.canLikeLocked(rec)
}

// RecordVisit records an accepted visit, or rejects silently when the venue
// ID is empty or the cooldown has not elapsed. The slot label overwrites the
// current arrival slot only when non-empty. The second return value reports
// whether this was the venue's first interaction ever.
func (l *Ledger) RecordVisit(venueID, slot string, now time.Time) (accepted, first bool) {
	if venueID == "" {
		return false, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.venues[venueID]
	if rec != nil {
		l.resetLocked(rec, now)
	}
	if !l.canVisitLocked(rec, now) {
		return false, false
	}

	if rec == nil {
		rec = NewVenueRecord(venueID)
		rec.LastVisitReset = timewindow.At(now)
		rec.LastLikeReset = timewindow.At(now)
		l.venues[venueID] = rec
		first = true
	} else {
		first = rec.TotalVisits == 0 && rec.LikeCount == 0
	}

	rec.VisitCount++
	rec.TotalVisits++
	rec.LastVisitAt = timewindow.At(now)
	if slot != "" {
		rec.ArrivalSlot = slot
		rec.tallySlotVisit(slot)
	}
	rec.LastMutatedAt = timewindow.At(now)
	return true, first
}

// RecordLike records an accepted like, or rejects silently when the venue ID
// or slot label is empty or the daily quota is exhausted. LikeCount is
// cumulative and never reset; only DailyLikesUsed is window-bound.
func (l *Ledger) RecordLike(venueID, slot string, now time.Time) (accepted, first bool) {
	if venueID == "" || slot == "" {
		return false, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := l.venues[venueID]
	if rec != nil {
		l.resetLocked(rec, now)
	}
	if !l.canLikeLocked(rec) {
		return false, false
	}

	if rec == nil {
		rec = NewVenueRecord(venueID)
		rec.LastVisitReset = timewindow.At(now)
		rec.LastLikeReset = timewindow.At(now)
		l.venues[venueID] = rec
		first = true
	} else {
		first = rec.TotalVisits == 0 && rec.LikeCount == 0
	}

	rec.LikeCount++
	rec.DailyLikesUsed++
	rec.LikeSlot = slot
	rec.tallySlotLike(slot)
	rec.LastMutatedAt = timewindow.At(now)
	return true, first
}

// Get returns a deep copy of one record after applying pending resets.
func (l *Ledger) Get(venueID string, now time.Time) (*VenueRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.venues[venueID]
	if !ok {
		return nil, false
	}
	l.resetLocked(rec, now)
	return rec.Clone(), true
}

// VisitCount returns the current-window visit count for one venue.
func (l *Ledger) VisitCount(venueID string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.venues[venueID]
	if !ok {
		return 0
	}
	l.resetLocked(rec, now)
	return rec.VisitCount
}

// LikeTotal returns the cumulative like total for one venue.
func (l *Ledger) LikeTotal(venueID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.venues[venueID]
	if !ok {
		return 0
	}
	return rec.LikeCount
}

// GlobalLikeTotal returns the cumulative like total across all venues.
func (l *Ledger) GlobalLikeTotal() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, rec := range l.venues {
		total += rec.LikeCount
	}
	return total
}

// VenueLikes is one row of the top-liked ranking.
type VenueLikes struct {
	VenueID string `json:"venue_id"`
	Likes   int    `json:"likes"`
}

// TopLiked returns the n venues with the highest cumulative like totals,
// descending, ties broken by venue ID ascending so the ranking is
// deterministic.
func (l *Ledger) TopLiked(n int) []VenueLikes {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ranking := make([]VenueLikes, 0, len(l.venues))
	for id, rec := range l.venues {
		if rec.LikeCount == 0 {
			continue
		}
		ranking = append(ranking, VenueLikes{VenueID: id, Likes: rec.LikeCount})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Likes != ranking[j].Likes {
			return ranking[i].Likes > ranking[j].Likes
		}
		return ranking[i].VenueID < ranking[j].VenueID
	})

	if n >= 0 && len(ranking) > n {
		ranking = ranking[:n]
	}
	return ranking
}

// SlotAggregation returns a copy of the per-slot visit/like tallies for one
// venue.
func (l *Ledger) SlotAggregation(venueID string) map[string]SlotTally {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.venues[venueID]
	if !ok {
		return map[string]SlotTally{}
	}
	out := make(map[string]SlotTally, len(rec.SlotStats))
	for slot, tally := range rec.SlotStats {
		out[slot] = tally
	}
	return out
}

// PopularArrival resolves the most popular arrival slot(s) for one venue.
func (l *Ledger) PopularArrival(venueID string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	rec, ok := l.venues[venueID]
	if !ok {
		return ""
	}
	return rec.PopularArrival()
}

// Aggregate summarizes the whole ledger for downstream consumers.
type Aggregate struct {
	Venues      int `json:"venues"`
	Engaged     int `json:"engaged"`
	TotalVisits int `json:"total_visits"`
	TotalLikes  int `json:"total_likes"`
}

// AggregateStats returns ledger-wide totals. Engaged counts venues with at
// least one recorded visit or like over the installation lifetime.
func (l *Ledger) AggregateStats() Aggregate {
	l.mu.RLock()
	defer l.mu.RUnlock()

	agg := Aggregate{Venues: len(l.venues)}
	for _, rec := range l.venues {
		agg.TotalVisits += rec.TotalVisits
		agg.TotalLikes += rec.LikeCount
		if rec.TotalVisits > 0 || rec.LikeCount > 0 {
			agg.Engaged++
		}
	}
	return agg
}

// Len returns the number of venue records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.venues)
}

// Snapshot returns deep copies of all records ordered by venue ID, the
// persistence format contract.
func (l *Ledger) Snapshot() []*VenueRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*VenueRecord, 0, len(l.venues))
	for _, rec := range l.venues {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VenueID < out[j].VenueID
	})
	return out
}

// Restore replaces the ledger contents from a persisted snapshot. Records
// without a venue ID never enter the mapping.
func (l *Ledger) Restore(records []*VenueRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.venues = make(map[string]*VenueRecord, len(records))
	for _, rec := range records {
		if rec == nil || rec.VenueID == "" {
			continue
		}
		l.venues[rec.VenueID] = rec.Clone()
	}
}

// Adopt installs a remote copy of a record unless the local record is at
// least as new by LastMutatedAt. Returns true when the remote value was
// taken. Only a strictly newer remote wins, so replaying the same remote
// snapshot is a no-op.
func (l *Ledger) Adopt(rec *VenueRecord) bool {
	if rec == nil || rec.VenueID == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.venues[rec.VenueID]
	if ok && !rec.LastMutatedAt.After(existing.LastMutatedAt) {
		return false
	}
	l.venues[rec.VenueID] = rec.Clone()
	return true
}
