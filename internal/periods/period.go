package periods

import (
	"fmt"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

const (
	keyDateLayout = "2006-01-02"

	// DefaultWindowFrom and DefaultWindowTo bound the period selector.
	DefaultWindowFrom = -4
	DefaultWindowTo   = 2
)

// Period is a commission cycle, normally the 21st of one month through the
// 20th of the next. Start and End are midnight in the business timezone.
type Period struct {
	Start  time.Time          `json:"start"`
	End    time.Time          `json:"end"`
	Label  string             `json:"label"`
	Status enums.PeriodStatus `json:"status"`
	Offset int                `json:"offset"`
}

// Key identifies the period by its date range, e.g. 2025-07-21_2025-08-20.
func (p Period) Key() string {
	return p.Start.Format(keyDateLayout) + "_" + p.End.Format(keyDateLayout)
}

// Contains reports whether the calendar day of t falls within [Start, End].
func (p Period) Contains(t time.Time) bool {
	day := DateOf(t.In(p.location()))
	return !day.Before(DateOf(p.Start)) && !day.After(DateOf(p.End))
}

// Days is the inclusive number of calendar days in the period.
func (p Period) Days() int {
	return daysBetween(DateOf(p.Start), DateOf(p.End)) + 1
}

// StartDate and EndDate return the bounds as UTC dates for storage queries.
func (p Period) StartDate() time.Time { return DateOf(p.Start) }

func (p Period) EndDate() time.Time { return DateOf(p.End) }

func (p Period) location() *time.Location {
	if p.Start.Location() != nil {
		return p.Start.Location()
	}
	return time.UTC
}

// DateOf strips the clock from t, keeping its calendar day, as a UTC date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// ParsePeriod builds a period from explicit YYYY-MM-DD bounds.
func ParsePeriod(start, end string, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	s, err := time.ParseInLocation(keyDateLayout, start, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid start date %q", start)
	}
	e, err := time.ParseInLocation(keyDateLayout, end, loc)
	if err != nil {
		return Period{}, fmt.Errorf("invalid end date %q", end)
	}
	if e.Before(s) {
		return Period{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return Period{Start: s, End: e, Label: label(s, e)}, nil
}

func label(start, end time.Time) string {
	return fmt.Sprintf("%02d/%04d a %02d/%04d", int(start.Month()), start.Year(), int(end.Month()), end.Year())
}
