package budget

import (
	"time"

	"github.com/jinzhu/now"
)

// Weeks start on Monday everywhere in this system; jinzhu/now defaults
// to Sunday, so a dedicated config is required.
var mondayWeeks = &now.Config{
	WeekStartDay: time.Monday,
	TimeLocation: time.UTC,
}

// DateOf reduces t to its wall-clock date at UTC midnight. All dates
// stored and compared by the engines are of this shape.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStartOf returns the Monday of the ISO week containing d - the
// key under which the week's spending envelope lives.
func WeekStartOf(d time.Time) time.Time {
	return mondayWeeks.With(DateOf(d)).BeginningOfWeek()
}
