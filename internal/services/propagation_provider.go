package services

import (
	"barbuddy/internal/models"
	"barbuddy/internal/propagation"
	"barbuddy/internal/structures"
)

// NewPropagationBus wires the debounced fan-out: XP and achievement
// consumers plus a stats closure over the ledger so every delivery carries
// current aggregate state.
func NewPropagationBus(conf *structures.Config, ledger *models.Ledger, xp XPServiceInterface, achievements AchievementServiceInterface) *propagation.Bus {
	stats := func() propagation.AggregateStats {
		agg := ledger.AggregateStats()
		return propagation.AggregateStats{
			VenuesEngaged: agg.Engaged,
			TotalVisits:   agg.TotalVisits,
			TotalLikes:    agg.TotalLikes,
		}
	}
	return propagation.NewBus(
		conf.Propagation.XPDebounce,
		conf.Propagation.AchievementDebounce,
		propagation.RealTimerFactory,
		xp,
		achievements,
		stats,
	)
}
