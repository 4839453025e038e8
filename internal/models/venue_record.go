package models

import (
	"sort"
	"strings"

	"barbuddy/internal/timewindow"
)

// SlotTally accumulates visits and likes recorded against one time-slot label
// (half-hour buckets such as "21:00" or "21:30"). Tallies are cumulative and
// survive window resets; only the current-window slot label on the record is
// cleared at the boundary.
type SlotTally struct {
	Visits int `json:"visits"`
	Likes  int `json:"likes"`
}

// VenueRecord is the per-venue interaction state. Exactly one record exists
// per venue ID; the Ledger owns every record and no other component mutates
// one in place.
type VenueRecord struct {
	VenueID        string               `json:"venue_id"`
	VisitCount     int                  `json:"visit_count"`
	TotalVisits    int                  `json:"total_visits"`
	LastVisitAt    timewindow.Timestamp `json:"last_visit_at"`
	LastVisitReset timewindow.Timestamp `json:"last_visit_reset"`
	ArrivalSlot    string               `json:"arrival_slot,omitempty"`
	LikeCount      int                  `json:"like_count"`
	DailyLikesUsed int                  `json:"daily_likes_used"`
	LastLikeReset  timewindow.Timestamp `json:"last_like_reset"`
	LikeSlot       string               `json:"like_slot,omitempty"`
	SlotStats      map[string]SlotTally `json:"slot_stats,omitempty"`
	LastMutatedAt  timewindow.Timestamp `json:"last_mutated_at"`
}

func NewVenueRecord(venueID string) *VenueRecord {
	return &VenueRecord{
		VenueID:   venueID,
		SlotStats: make(map[string]SlotTally),
	}
}

// Clone returns a deep copy, safe to hand outside the ledger lock.
func (r *VenueRecord) Clone() *VenueRecord {
	cp := *r
	cp.SlotStats = make(map[string]SlotTally, len(r.SlotStats))
	for slot, tally := range r.SlotStats {
		cp.SlotStats[slot] = tally
	}
	return &cp
}

func (r *VenueRecord) tallySlotVisit(slot string) {
	if slot == "" {
		return
	}
	if r.SlotStats == nil {
		r.SlotStats = make(map[string]SlotTally)
	}
	tally := r.SlotStats[slot]
	tally.Visits++
	r.SlotStats[slot] = tally
}

func (r *VenueRecord) tallySlotLike(slot string) {
	if slot == "" {
		return
	}
	if r.SlotStats == nil {
		r.SlotStats = make(map[string]SlotTally)
	}
	tally := r.SlotStats[slot]
	tally.Likes++
	r.SlotStats[slot] = tally
}

// PopularArrival returns the slot label with the most recorded visits. Tied
// slots are all returned, lexicographically sorted and joined with "/", so
// the result is stable across runs. Empty string when no visit was ever
// tagged with a slot.
func (r *VenueRecord) PopularArrival() string {
	best := 0
	for _, tally := range r.SlotStats {
		if tally.Visits > best {
			best = tally.Visits
		}
	}
	if best == 0 {
		return ""
	}

	winners := make([]string, 0, 2)
	for slot, tally := range r.SlotStats {
		if tally.Visits == best {
			winners = append(winners, slot)
		}
	}
	sort.Strings(winners)
	return strings.Join(winners, "/")
}
