package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"barbuddy/internal/models"
	"barbuddy/internal/propagation"
	"barbuddy/internal/structures"
	"barbuddy/internal/testutil"
	"barbuddy/internal/timewindow"
)

func serviceConfig() *structures.Config {
	return &structures.Config{
		Windows: structures.WindowsConfig{
			ResetHour:       5,
			LikeResetHour:   4,
			LikeResetMinute: 59,
			CooldownHours:   2,
			DailyLikeLimit:  3,
		},
	}
}

func newServiceLedger() *models.Ledger {
	conf := serviceConfig()
	return models.NewLedger(timewindow.NewPolicy(conf), conf)
}

func evening(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestXPService_TotalFromLedgerState(t *testing.T) {
	ledger := newServiceLedger()
	xp := NewXPService(ledger, &testutil.MockLogger{})

	assert.Equal(t, 0, xp.Total())

	// One visit on a fresh venue: visit XP plus the first-interaction bonus.
	ledger.RecordVisit("bar_1", "21:00", evening(21, 0))
	assert.Equal(t, VisitXP+FirstInteractionXP, xp.Total())

	// A like on the same venue adds like XP only.
	ledger.RecordLike("bar_1", "21:00", evening(21, 5))
	assert.Equal(t, VisitXP+LikeXP+FirstInteractionXP, xp.Total())

	// A second engaged venue earns its own bonus.
	ledger.RecordLike("bar_2", "21:00", evening(21, 10))
	assert.Equal(t, VisitXP+2*LikeXP+2*FirstInteractionXP, xp.Total())
}

func TestXPService_AwardIsIdempotent(t *testing.T) {
	ledger := newServiceLedger()
	xp := NewXPService(ledger, &testutil.MockLogger{})
	ledger.RecordVisit("bar_1", "21:00", evening(21, 0))

	// Duplicate deliveries recompute from state, never accumulate.
	xp.Award(propagation.KindVisit, "bar_1")
	xp.Award(propagation.KindVisit, "bar_1")
	xp.Award(propagation.KindVisit, "bar_1")
	assert.Equal(t, VisitXP+FirstInteractionXP, xp.Total())
}

func TestXPService_SurvivesWindowReset(t *testing.T) {
	ledger := newServiceLedger()
	xp := NewXPService(ledger, &testutil.MockLogger{})

	ledger.RecordVisit("bar_1", "21:00", evening(21, 0))
	total := xp.Total()

	// Window reset clears VisitCount but not the XP basis.
	ledger.ApplyPendingResets(evening(6, 0).AddDate(0, 0, 1))
	assert.Equal(t, total, xp.Total())
}
