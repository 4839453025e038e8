package services

import (
	"sync"

	"barbuddy/internal/models"
	"barbuddy/internal/propagation"
	"barbuddy/internal/providers"
)

// Experience points per interaction kind. The first interaction with a venue
// earns a one-time bonus on top.
const (
	VisitXP            = 10
	LikeXP             = 2
	FirstInteractionXP = 25
)

type XPServiceInterface interface {
	Award(kind propagation.EventKind, venueID string)
	Total() int
}

// XPService derives the experience total from ledger state on every
// delivery, so coalesced or duplicate deliveries converge to the same total
// no matter how many raw events were skipped.
type XPService struct {
	mu     sync.Mutex
	ledger *models.Ledger
	logger providers.Logger
	total  int
}

func NewXPService(ledger *models.Ledger, logger providers.Logger) XPServiceInterface {
	return &XPService{ledger: ledger, logger: logger}
}

func (x *XPService) Award(kind propagation.EventKind, venueID string) {
	total := x.recompute()
	x.logger.Debugf(providers.TypeApp, "XP recomputed after %s on %s: %d", kind, venueID, total)
}

func (x *XPService) Total() int {
	return x.recompute()
}

func (x *XPService) recompute() int {
	agg := x.ledger.AggregateStats()
	total := agg.TotalVisits*VisitXP + agg.TotalLikes*LikeXP + agg.Engaged*FirstInteractionXP

	x.mu.Lock()
	x.total = total
	x.mu.Unlock()
	return total
}
