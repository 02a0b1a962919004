package engine

import (
	"time"
)

// nextSalaryDate is the 1st of the next calendar month; time.Date
// normalizes month 13 into January of the following year.
func nextSalaryDate(today time.Time) time.Time {
	return time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

func daysUntilNextSalary(today time.Time) int {
	days := int(nextSalaryDate(today).Sub(today).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// elapsedWeekdays counts days of the current week including today,
// Monday=1 through Sunday=7.
func elapsedWeekdays(today time.Time) int {
	wd := int(today.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// monthsElapsed counts whole calendar months between from and to;
// a partial current month does not count.
func monthsElapsed(from, to time.Time) int64 {
	months := int64(to.Year()-from.Year())*12 + int64(to.Month()-from.Month())
	if months < 0 {
		return 0
	}
	return months
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
