package periods

import (
	"iter"
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

const (
	defaultStartDay = 21
	defaultEndDay   = 20
)

// Resolver computes commission periods relative to the current month.
type Resolver struct {
	now      func() time.Time
	loc      *time.Location
	startDay int
	endDay   int
}

// NewResolver uses the wall clock in loc.
func NewResolver(loc *time.Location) *Resolver {
	return newResolver(time.Now, loc, defaultStartDay, defaultEndDay)
}

func newResolver(now func() time.Time, loc *time.Location, startDay, endDay int) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{now: now, loc: loc, startDay: startDay, endDay: endDay}
}

// WithClock returns a copy of the resolver reading time from now.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	clone := *r
	clone.now = now
	return &clone
}

// Location is the business timezone periods are computed in.
func (r *Resolver) Location() *time.Location { return r.loc }

// Now is the resolver clock in the business timezone.
func (r *Resolver) Now() time.Time { return r.now().In(r.loc) }

// Current is the period at offset 0.
func (r *Resolver) Current() Period {
	return r.Resolve(0)
}

// Resolve computes the period offset months away from the current month.
func (r *Resolver) Resolve(offset int) Period {
	now := r.Now()
	anchor := time.Date(now.Year(), now.Month()+time.Month(offset), 1, 0, 0, 0, 0, r.loc)

	start := clampStart(anchor.Year(), anchor.Month(), r.startDay, r.loc)
	end := clampEnd(anchor.Year(), anchor.Month()+1, r.endDay, r.loc)

	status := enums.PeriodStatusCurrent
	switch {
	case offset == 0:
	case end.Before(now):
		status = enums.PeriodStatusPast
	case start.After(now):
		status = enums.PeriodStatusFuture
	}

	return Period{
		Start:  start,
		End:    end,
		Label:  label(start, end),
		Status: status,
		Offset: offset,
	}
}

// Window yields the periods for offsets from..to inclusive. Each iteration
// recomputes from the clock, so the sequence can be ranged over repeatedly.
func (r *Resolver) Window(from, to int) iter.Seq[Period] {
	return func(yield func(Period) bool) {
		for offset := from; offset <= to; offset++ {
			if !yield(r.Resolve(offset)) {
				return
			}
		}
	}
}

// DefaultWindow is the selector window around the current period.
func (r *Resolver) DefaultWindow() iter.Seq[Period] {
	return r.Window(DefaultWindowFrom, DefaultWindowTo)
}

// clampStart returns day in month, or day 1 when month has no such day.
func clampStart(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	want := time.Date(year, month, 1, 0, 0, 0, 0, loc).Month()
	if t.Month() != want {
		return time.Date(year, month, 1, 0, 0, 0, 0, loc)
	}
	return t
}

// clampEnd returns day in month, or the last day of month when it overflows.
func clampEnd(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	want := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	if t.Month() != want.Month() {
		return time.Date(want.Year(), want.Month()+1, 0, 0, 0, 0, 0, loc)
	}
	return t
}

// Explicit builds a period from client supplied YYYY-MM-DD bounds and
// classifies it against the clock.
func (r *Resolver) Explicit(start, end string) (Period, error) {
	p, err := ParsePeriod(start, end, r.loc)
	if err != nil {
		return Period{}, err
	}
	now := r.Now()
	switch {
	case p.End.Before(now) && !p.Contains(now):
		p.Status = enums.PeriodStatusPast
	case p.Start.After(now):
		p.Status = enums.PeriodStatusFuture
	default:
		p.Status = enums.PeriodStatusCurrent
	}
	return p, nil
}
