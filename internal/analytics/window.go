package analytics

import (
	"strings"
	"time"

	"go-sales-agent/internal/models"
)

const labelLayout = "Mon Jan 2, 2006"

// Period is a comparison granularity: equal-length windows offset by Days.
type Period struct {
	Name string
	Days int
}

var (
	Daily   = Period{Name: "daily", Days: 1}
	Weekly  = Period{Name: "weekly", Days: 7}
	Monthly = Period{Name: "monthly", Days: 30}
)

// ParsePeriod looks a period up by name, case-insensitively.
func ParsePeriod(name string) (Period, bool) {
	for _, p := range []Period{Daily, Weekly, Monthly} {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Period{}, false
}

// StartOfDay is local midnight in loc. Days around a DST switch are 23 or 25 hours
// long, so windows are built from calendar dates rather than fixed durations.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// NewWindow spans whole business days [first, last] inclusive.
func NewWindow(first, last time.Time, loc *time.Location) models.DateWindow {
	start := StartOfDay(first, loc)
	lastStart := StartOfDay(last, loc)
	end := time.Date(lastStart.Year(), lastStart.Month(), lastStart.Day()+1, 0, 0, 0, 0, loc).Add(-time.Millisecond)
	return models.DateWindow{
		Start: start,
		End:   end,
		Label: start.Format(labelLayout),
	}
}

// DaysAgo is the whole business day n days before now's day. DaysAgo(now, 0) is today.
func DaysAgo(now time.Time, n int, loc *time.Location) models.DateWindow {
	day := addDays(StartOfDay(now, loc), -n)
	return NewWindow(day, day, loc)
}

func Today(now time.Time, loc *time.Location) models.DateWindow {
	return DaysAgo(now, 0, loc)
}

// LastNDays covers n whole days ending with today.
func LastNDays(now time.Time, n int, loc *time.Location) models.DateWindow {
	if n < 1 {
		n = 1
	}
	today := StartOfDay(now, loc)
	return NewWindow(addDays(today, -(n-1)), today, loc)
}

// Windows returns the current period ending today and the one immediately before it.
func (p Period) Windows(now time.Time, loc *time.Location) (current, previous models.DateWindow) {
	current = LastNDays(now, p.Days, loc)
	return current, Shift(current, -p.Days, loc)
}

// Shift moves a whole-day window by days calendar days.
func Shift(w models.DateWindow, days int, loc *time.Location) models.DateWindow {
	return NewWindow(addDays(StartOfDay(w.Start, loc), days), addDays(StartOfDay(w.End, loc), days), loc)
}

func addDays(t time.Time, days int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, 0, 0, 0, 0, t.Location())
}
