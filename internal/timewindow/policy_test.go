package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPolicy() Policy {
	return Policy{ResetHour: 5, LikeResetHour: 4, LikeResetMinute: 59}
}

func day(hour, min int) time.Time {
	return time.Date(2024, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestVisitWindowElapsed_SameWindow(t *testing.T) {
	p := testPolicy()
	// Visit at 21:00, checked at 23:00 same day: still the same window.
	last := At(day(21, 0))
	assert.False(t, p.VisitWindowElapsed(last, day(23, 0)))
}

func TestVisitWindowElapsed_AcrossBoundary(t *testing.T) {
	p := testPolicy()
	// Visit yesterday evening, checked after 05:00 next day.
	last := At(day(21, 0))
	next := day(5, 0).AddDate(0, 0, 1)
	assert.True(t, p.VisitWindowElapsed(last, next))
}

func TestVisitWindowElapsed_BeforeBoundaryNextDay(t *testing.T) {
	p := testPolicy()
	// Visit at 21:00, checked at 03:00 next morning: boundary not reached yet.
	last := At(day(21, 0))
	next := day(3, 0).AddDate(0, 0, 1)
	assert.False(t, p.VisitWindowElapsed(last, next))
}

func TestVisitWindowElapsed_ExactlyAtBoundary(t *testing.T) {
	p := testPolicy()
	last := At(day(21, 0))
	next := day(5, 0).AddDate(0, 0, 1)
	assert.True(t, p.VisitWindowElapsed(last, next))
	// A reset stamped at the boundary does not elapse again.
	assert.False(t, p.VisitWindowElapsed(At(next), next))
}

func TestVisitWindowElapsed_UnsetFailsClosed(t *testing.T) {
	p := testPolicy()
	assert.False(t, p.VisitWindowElapsed(Unset(), day(12, 0)))
}

func TestLikeBoundary_AfterTodayBoundary(t *testing.T) {
	p := testPolicy()
	b := p.LikeBoundary(day(12, 0))
	assert.Equal(t, day(4, 59), b)
}

func TestLikeBoundary_BeforeTodayBoundaryUsesYesterday(t *testing.T) {
	p := testPolicy()
	// At 03:00 the active boundary is yesterday 04:59.
	b := p.LikeBoundary(day(3, 0))
	assert.Equal(t, day(4, 59).AddDate(0, 0, -1), b)
}

func TestLikeWindowElapsed_CrossMidnightQuota(t *testing.T) {
	p := testPolicy()
	// Likes at 23:30 still count against the same quota at 02:00 next day:
	// the 04:59 boundary has not passed.
	last := At(day(23, 30))
	assert.False(t, p.LikeWindowElapsed(last, day(2, 0).AddDate(0, 0, 1)))

	// After 04:59 next day the quota window has rolled over.
	assert.True(t, p.LikeWindowElapsed(last, day(5, 0).AddDate(0, 0, 1)))
}

func TestLikeWindowElapsed_UnsetFailsClosed(t *testing.T) {
	p := testPolicy()
	assert.False(t, p.LikeWindowElapsed(Unset(), day(12, 0)))
}

func TestCooldownElapsed(t *testing.T) {
	cooldown := 2 * time.Hour
	last := At(day(20, 0))

	assert.False(t, CooldownElapsed(last, day(20, 0), cooldown))
	assert.False(t, CooldownElapsed(last, day(21, 0), cooldown))
	assert.True(t, CooldownElapsed(last, day(22, 0), cooldown))
	assert.True(t, CooldownElapsed(last, day(23, 0), cooldown))
}

func TestCooldownElapsed_UnsetAlwaysEligible(t *testing.T) {
	assert.True(t, CooldownElapsed(Unset(), day(12, 0), 2*time.Hour))
}

func TestSameCalendarDay(t *testing.T) {
	assert.True(t, SameCalendarDay(day(0, 1), day(23, 59)))
	assert.False(t, SameCalendarDay(day(23, 59), day(0, 1).AddDate(0, 0, 1)))
}
