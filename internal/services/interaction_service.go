package services

import (
	"context"
	"time"

	"barbuddy/internal/models"
	"barbuddy/internal/propagation"
	"barbuddy/internal/providers"
	"barbuddy/internal/structures"
	"barbuddy/internal/timewindow"
)

const flushTimeout = 15 * time.Second

// SyncCoordinatorInterface is what the service layer needs from the
// replication coordinator.
type SyncCoordinatorInterface interface {
	Enqueue(rec *models.VenueRecord)
	Flush(ctx context.Context) error
	Seed(ctx context.Context) error
	QueueDepth() int
	SnapshotQueue() []*models.SyncEntry
	RestoreQueue(entries []*models.SyncEntry)
}

// VenueView is the per-venue read model served by the API.
type VenueView struct {
	VenueID        string                      `json:"venue_id"`
	VisitCount     int                         `json:"visit_count"`
	TotalVisits    int                         `json:"total_visits"`
	LikeCount      int                         `json:"like_count"`
	DailyLikesLeft int                         `json:"daily_likes_left"`
	ArrivalSlot    string                      `json:"arrival_slot,omitempty"`
	PopularArrival string                      `json:"popular_arrival,omitempty"`
	SlotStats      map[string]models.SlotTally `json:"slot_stats,omitempty"`
}

// SummaryView aggregates the whole ledger plus derived consumer state.
type SummaryView struct {
	Venues       int      `json:"venues"`
	Engaged      int      `json:"engaged"`
	TotalVisits  int      `json:"total_visits"`
	TotalLikes   int      `json:"total_likes"`
	XPTotal      int      `json:"xp_total"`
	Achievements []string `json:"achievements"`
}

type InteractionServiceInterface interface {
	RecordVisit(venueID, slot string) bool
	RecordLike(venueID, slot string) bool
	GetVenue(venueID string) *VenueView
	GetTopLiked(n int) []models.VenueLikes
	GetPopularArrival(venueID string) string
	GetSummary() *SummaryView
	ApplyPendingResets()
	GetSnapshot() *models.Snapshot
	PutSnapshot(snap *models.Snapshot)
	VenueCount() int
	QueueDepth() int
}

// InteractionService orchestrates one accepted interaction: the ledger
// decides acceptance synchronously, then the propagation bus and the
// replication queue are notified. Nothing downstream of acceptance can fail
// the interaction.
type InteractionService struct {
	ledger       *models.Ledger
	bus          *propagation.Bus
	sync         SyncCoordinatorInterface
	xp           XPServiceInterface
	achievements AchievementServiceInterface
	logger       providers.Logger
	metrics      providers.MetricsProviderInterface
	clock        timewindow.Clock
	dailyLimit   int
}

func NewInteractionService(conf *structures.Config, ledger *models.Ledger, bus *propagation.Bus, sync SyncCoordinatorInterface, xp XPServiceInterface, achievements AchievementServiceInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, clock timewindow.Clock) InteractionServiceInterface {
	dailyLimit := conf.Windows.DailyLikeLimit
	if dailyLimit <= 0 {
		dailyLimit = 1
	}
	return &InteractionService{
		ledger:       ledger,
		bus:          bus,
		sync:         sync,
		xp:           xp,
		achievements: achievements,
		logger:       logger,
		metrics:      metrics,
		clock:        clock,
		dailyLimit:   dailyLimit,
	}
}

func (s *InteractionService) RecordVisit(venueID, slot string) bool {
	if venueID == "" {
		s.metrics.IncInteraction("visit", "invalid")
		s.logger.Debugf(providers.TypePost, "Visit rejected: missing venue ID")
		return false
	}

	now := s.clock()
	accepted, first := s.ledger.RecordVisit(venueID, slot, now)
	if !accepted {
		s.metrics.IncInteraction("visit", "cooldown")
		s.logger.Debugf(providers.TypePost, "Visit rejected for %s: cooldown active", venueID)
		return false
	}

	s.metrics.IncInteraction("visit", "accepted")
	s.afterMutation(venueID, propagation.KindVisit, first, now)
	return true
}

func (s *InteractionService) RecordLike(venueID, slot string) bool {
	if venueID == "" || slot == "" {
		s.metrics.IncInteraction("like", "invalid")
		s.logger.Debugf(providers.TypePost, "Like rejected: missing venue ID or slot")
		return false
	}

	now := s.clock()
	accepted, first := s.ledger.RecordLike(venueID, slot, now)
	if !accepted {
		s.metrics.IncInteraction("like", "quota")
		s.logger.Debugf(providers.TypePost, "Like rejected for %s: daily quota reached", venueID)
		return false
	}

	s.metrics.IncInteraction("like", "accepted")
	s.afterMutation(venueID, propagation.KindLike, first, now)
	return true
}

// afterMutation runs the post-acceptance fan-out: publish to the bus,
// enqueue the record snapshot for replication and kick off an asynchronous
// flush. All failures stay below the acceptance boundary.
func (s *InteractionService) afterMutation(venueID string, kind propagation.EventKind, first bool, now time.Time) {
	if rec, ok := s.ledger.Get(venueID, now); ok {
		s.sync.Enqueue(rec)
	}
	s.bus.Publish(propagation.Event{VenueID: venueID, Kind: kind, First: first})

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := s.sync.Flush(ctx); err != nil {
			s.logger.Debugf(providers.TypeApp, "Deferred sync flush failed, will retry: %s", err)
		}
	}()
}

// GetVenue returns the read model for one venue, nil when the venue has no
// recorded interactions.
func (s *InteractionService) GetVenue(venueID string) *VenueView {
	now := s.clock()
	rec, ok := s.ledger.Get(venueID, now)
	if !ok {
		return nil
	}

	view := &VenueView{VenueID: venueID}
	view.VisitCount = rec.VisitCount
	view.TotalVisits = rec.TotalVisits
	view.LikeCount = rec.LikeCount
	view.DailyLikesLeft = s.dailyLimit - rec.DailyLikesUsed
	view.ArrivalSlot = rec.ArrivalSlot
	view.PopularArrival = rec.PopularArrival()
	view.SlotStats = rec.SlotStats
	return view
}

func (s *InteractionService) GetTopLiked(n int) []models.VenueLikes {
	s.ledger.ApplyPendingResets(s.clock())
	return s.ledger.TopLiked(n)
}

func (s *InteractionService) GetPopularArrival(venueID string) string {
	return s.ledger.PopularArrival(venueID)
}

func (s *InteractionService) GetSummary() *SummaryView {
	s.ledger.ApplyPendingResets(s.clock())
	agg := s.ledger.AggregateStats()
	return &SummaryView{
		Venues:       agg.Venues,
		Engaged:      agg.Engaged,
		TotalVisits:  agg.TotalVisits,
		TotalLikes:   agg.TotalLikes,
		XPTotal:      s.xp.Total(),
		Achievements: s.achievements.Unlocked(),
	}
}

func (s *InteractionService) ApplyPendingResets() {
	s.ledger.ApplyPendingResets(s.clock())
}

// GetSnapshot captures ledger state plus the pending replication queue for
// the persistence adapter.
func (s *InteractionService) GetSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Version: models.SnapshotVersion,
		Venues:  s.ledger.Snapshot(),
		Queue:   s.sync.SnapshotQueue(),
	}
}

// PutSnapshot restores ledger and queue state from a loaded snapshot.
func (s *InteractionService) PutSnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.ledger.Restore(snap.Venues)
	s.sync.RestoreQueue(snap.Queue)
}

func (s *InteractionService) VenueCount() int {
	return s.ledger.Len()
}

func (s *InteractionService) QueueDepth() int {
	return s.sync.QueueDepth()
}
