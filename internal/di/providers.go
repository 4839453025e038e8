package di

import "barbuddy/internal/timewindow"

func provideClock() timewindow.Clock {
	return timewindow.SystemClock()
}
