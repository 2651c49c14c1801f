package contractdate

import (
	"fmt"
	"sort"
	"time"
)

const (
	// DaysPerMonth is the fixed month length used for contract terms. Existing
	// contracts were issued with it, so it must not become calendar months.
	DaysPerMonth = 30
	// GraceDays is the enrollment onboarding buffer every contract gets.
	GraceDays = 7
)

// Result is the computed end of a contract and what extended it.
type Result struct {
	Start     time.Time
	BaseEnd   time.Time
	End       time.Time
	ExtraDays int
	Blackouts []string
	Holidays  []string
	Version   string
}

// ComputeEndDate uses the built-in calendar.
func ComputeEndDate(start time.Time, durationMonths int, classDay time.Weekday) Result {
	return Default().ComputeEndDate(start, durationMonths, classDay)
}

// ComputeEndDate folds blackout overlaps and class-day holidays into the
// nominal contract length. Zero or negative durations are not special-cased.
func (c *Calendar) ComputeEndDate(start time.Time, durationMonths int, classDay time.Weekday) Result {
	start = dateOnly(start)
	baseEnd := start.AddDate(0, 0, DaysPerMonth*durationMonths)

	res := Result{
		Start:     start,
		BaseEnd:   baseEnd,
		ExtraDays: GraceDays,
		Blackouts: []string{},
		Holidays:  []string{},
		Version:   c.Version,
	}

	for _, b := range c.Blackouts {
		n := overlapDays(start, baseEnd, dateOnly(b.Start), dateOnly(b.End))
		if n == 0 {
			continue
		}
		res.ExtraDays += n
		res.Blackouts = append(res.Blackouts, blackoutLabel(b.Label, n))
	}

	for _, h := range c.Holidays {
		d := dateOnly(h.Date)
		if d.Before(start) || d.After(baseEnd) || d.Weekday() != classDay {
			continue
		}
		res.ExtraDays++
		res.Holidays = append(res.Holidays, fmt.Sprintf("%s (%s)", h.Label, d.Format("02/01/2006")))
	}

	sort.Strings(res.Blackouts)
	sort.Strings(res.Holidays)
	res.End = baseEnd.AddDate(0, 0, res.ExtraDays)
	return res
}

func blackoutLabel(label string, days int) string {
	if days == 1 {
		return fmt.Sprintf("%s (1 dia)", label)
	}
	return fmt.Sprintf("%s (%d dias)", label, days)
}

// overlapDays counts the days shared by [aStart, aEnd] and [bStart, bEnd],
// both ends inclusive.
func overlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	lo := aStart
	if bStart.After(lo) {
		lo = bStart
	}
	hi := aEnd
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if hi.Before(lo) {
		return 0
	}
	return int(hi.Sub(lo).Hours()/24) + 1
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
