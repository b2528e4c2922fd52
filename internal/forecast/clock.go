package forecast

import (
	"time"

	"github.com/lox/weatherscreen/internal/models"
)

// NewClockState derives the weekday and 12-hour time for now, in now's location.
func NewClockState(now time.Time) models.ClockState {
	return models.ClockState{
		Weekday: now.Weekday().String(),
		Time:    now.Format("3:04 PM"),
	}
}
