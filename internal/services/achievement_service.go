package services

import (
	"sort"
	"sync"

	"barbuddy/internal/propagation"
	"barbuddy/internal/providers"
)

type achievementDef struct {
	id  string
	met func(stats propagation.AggregateStats) bool
}

// Threshold achievements over aggregate ledger stats. Order is cosmetic;
// unlocking is monotonic within a session.
var achievementDefs = []achievementDef{
	{"first_checkin", func(s propagation.AggregateStats) bool { return s.TotalVisits >= 1 }},
	{"regular", func(s propagation.AggregateStats) bool { return s.TotalVisits >= 10 }},
	{"barfly", func(s propagation.AggregateStats) bool { return s.TotalVisits >= 50 }},
	{"first_like", func(s propagation.AggregateStats) bool { return s.TotalLikes >= 1 }},
	{"cheerleader", func(s propagation.AggregateStats) bool { return s.TotalLikes >= 25 }},
	{"explorer", func(s propagation.AggregateStats) bool { return s.VenuesEngaged >= 5 }},
	{"scenester", func(s propagation.AggregateStats) bool { return s.VenuesEngaged >= 20 }},
}

type AchievementServiceInterface interface {
	Recompute(stats propagation.AggregateStats)
	Unlocked() []string
}

// AchievementService recomputes unlocked achievements from aggregate stats.
// Recompute is idempotent: re-delivery of the same stats changes nothing,
// and an achievement never locks again once unlocked.
type AchievementService struct {
	mu       sync.Mutex
	unlocked map[string]bool
	logger   providers.Logger
}

func NewAchievementService(logger providers.Logger) AchievementServiceInterface {
	return &AchievementService{
		unlocked: make(map[string]bool),
		logger:   logger,
	}
}

func (a *AchievementService) Recompute(stats propagation.AggregateStats) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, def := range achievementDefs {
		if a.unlocked[def.id] || !def.met(stats) {
			continue
		}
		a.unlocked[def.id] = true
		a.logger.Infof(providers.TypeApp, "Achievement unlocked: %s", def.id)
	}
}

func (a *AchievementService) Unlocked() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.unlocked))
	for id := range a.unlocked {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
