package timewindow

import (
	"time"

	"barbuddy/internal/structures"
)

// Clock supplies "now" to everything that reasons about windows. Production
// wiring uses SystemClock; tests inject a fixed or stepping clock.
type Clock func() time.Time

func SystemClock() Clock {
	return time.Now
}

// Policy decides whether a recorded timestamp falls before or after the most
// recent reset boundary for the visit and like windows. All methods are pure
// functions of their arguments; no wall clock is read here.
type Policy struct {
	ResetHour       int
	LikeResetHour   int
	LikeResetMinute int
}

func NewPolicy(conf *structures.Config) Policy {
	return Policy{
		ResetHour:       conf.Windows.ResetHour,
		LikeResetHour:   conf.Windows.LikeResetHour,
		LikeResetMinute: conf.Windows.LikeResetMinute,
	}
}

// VisitBoundary returns today's visit-reset boundary in now's location.
func (p Policy) VisitBoundary(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), p.ResetHour, 0, 0, 0, now.Location())
}

// VisitWindowElapsed reports whether the visit window has rolled over: now is
// at or after today's boundary and lastReset predates that boundary. An unset
// lastReset never elapses: records are stamped at creation, so unset only
// occurs on corrupt input, which must not trigger a spurious reset.
func (p Policy) VisitWindowElapsed(lastReset Timestamp, now time.Time) bool {
	if !lastReset.IsSet() {
		return false
	}
	boundary := p.VisitBoundary(now)
	if now.Before(boundary) {
		return false
	}
	return lastReset.Time().Before(boundary)
}

// LikeBoundary returns the most recent like-reset boundary at or before now.
// Before today's boundary time this is yesterday's boundary, so the quota
// window rolls over correctly when evaluated in the early morning.
func (p Policy) LikeBoundary(now time.Time) time.Time {
	boundary := time.Date(now.Year(), now.Month(), now.Day(), p.LikeResetHour, p.LikeResetMinute, 0, 0, now.Location())
	if now.Before(boundary) {
		boundary = boundary.AddDate(0, 0, -1)
	}
	return boundary
}

// LikeWindowElapsed reports whether the like quota window has rolled over
// since lastReset. Unset fails closed, same as VisitWindowElapsed.
func (p Policy) LikeWindowElapsed(lastReset Timestamp, now time.Time) bool {
	if !lastReset.IsSet() {
		return false
	}
	return lastReset.Time().Before(p.LikeBoundary(now))
}

// CooldownElapsed reports whether enough time passed since the last
// interaction. An unset timestamp means no interaction ever happened and is
// always eligible.
func CooldownElapsed(lastInteraction Timestamp, now time.Time, cooldown time.Duration) bool {
	if !lastInteraction.IsSet() {
		return true
	}
	return !now.Before(lastInteraction.Time().Add(cooldown))
}

// SameCalendarDay reports year/month/day equality in local time.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
