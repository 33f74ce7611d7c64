package periods

import (
	"strings"
	"time"
)

// RegionCentro stores close on Sundays.
const RegionCentro = "centro"

// SundaysExcluded reports whether region skips Sundays as working days.
func SundaysExcluded(region string) bool {
	return strings.EqualFold(strings.TrimSpace(region), RegionCentro)
}

// WorkingDays counts the days in [from, to] inclusive, skipping Sundays for
// centro stores. It returns 0 when to is before from.
func WorkingDays(from, to time.Time, region string) int {
	start, end := DateOf(from), DateOf(to)
	if end.Before(start) {
		return 0
	}
	total := daysBetween(start, end) + 1
	if !SundaysExcluded(region) {
		return total
	}
	sundays := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			sundays++
		}
	}
	return total - sundays
}

// ElapsedWorkingDays counts working days from the period start through today,
// with today clamped into the period.
func ElapsedWorkingDays(p Period, today time.Time, region string) int {
	day := DateOf(today)
	switch {
	case day.Before(p.StartDate()):
		return 0
	case day.After(p.EndDate()):
		day = p.EndDate()
	}
	return WorkingDays(p.StartDate(), day, region)
}

// IsWorkingDay reports whether day counts toward daily averages for region.
func IsWorkingDay(day time.Time, region string) bool {
	return !(SundaysExcluded(region) && day.Weekday() == time.Sunday)
}
