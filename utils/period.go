// utils/period.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of every date string stored on reports and users.
const DateLayout = "2006-01-02"

// PeriodStartDay is the day of month a billing period starts on. The period
// ends on the day before it in the following month.
const PeriodStartDay = 18

// Period is an inclusive reporting window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside p, both ends included.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Empty reports whether the window holds no instant at all.
func (p Period) Empty() bool {
	return p.End.Before(p.Start)
}

// Days returns the number of calendar days the window spans.
func (p Period) Days() int {
	if p.Empty() {
		return 0
	}
	return calendarDaysBetween(p.Start, p.End) + 1
}

// Label renders the period the way sales specifications are keyed, for
// example "18 Januari - 17 Februari 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%d %s - %d %s %d",
		p.Start.Day(), swedishMonths[p.Start.Month()-1],
		p.End.Day(), swedishMonths[p.End.Month()-1],
		p.End.Year())
}

var swedishMonths = [12]string{
	"Januari", "Februari", "Mars", "April", "Maj", "Juni",
	"Juli", "Augusti", "September", "Oktober", "November", "December",
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// calendarDaysBetween counts whole calendar days from a to b, ignoring
// clock time and DST shifts.
func calendarDaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// periodEndingIn returns the period whose last day is the 17th of the given month.
func periodEndingIn(year int, month time.Month, loc *time.Location) Period {
	return Period{
		Start: time.Date(year, month-1, PeriodStartDay, 0, 0, 0, 0, loc),
		End:   time.Date(year, month, PeriodStartDay-1, 23, 59, 59, 0, loc),
	}
}

// CurrentPeriod returns the billing period containing now: from the 18th of
// this month when the day is 18 or later, otherwise from the 18th of the
// previous month. The result uses now's location.
func CurrentPeriod(now time.Time) Period {
	y, m, d := now.Date()
	if d >= PeriodStartDay {
		return periodEndingIn(y, m+1, now.Location())
	}
	return periodEndingIn(y, m, now.Location())
}

// PreviousPeriod returns the billing period immediately before CurrentPeriod(now).
func PreviousPeriod(now time.Time) Period {
	cur := CurrentPeriod(now)
	return CurrentPeriod(cur.Start.AddDate(0, 0, -1))
}

// YesterdayPeriod returns the whole calendar day before now.
func YesterdayPeriod(now time.Time) Period {
	y, m, d := now.Date()
	yesterday := time.Date(y, m, d-1, 12, 0, 0, 0, now.Location())
	return Period{Start: startOfDay(yesterday), End: endOfDay(yesterday)}
}

// ElapsedDays counts the days of a period that have started by today,
// today included, clamped to the period length.
func ElapsedDays(p Period, today time.Time) int {
	if today.Before(p.Start) {
		return 0
	}
	n := calendarDaysBetween(p.Start, today) + 1
	if total := p.Days(); n > total {
		return total
	}
	return n
}

// ComparisonWindow returns the first elapsed days of previous, used to
// compare a partial current period against the same stretch of the last one.
func ComparisonWindow(previous Period, elapsed int) Period {
	if elapsed <= 0 {
		return Period{Start: previous.Start, End: previous.Start.Add(-time.Second)}
	}
	end := endOfDay(previous.Start.AddDate(0, 0, elapsed-1))
	if end.After(previous.End) {
		end = previous.End
	}
	return Period{Start: previous.Start, End: end}
}

// PercentChange returns the change from previous to current in percent.
// A rise from zero counts as 100%.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return (current - previous) / previous * 100
}

// PeriodFromLabel parses a label produced by Period.Label back into a period
// in loc.
func PeriodFromLabel(label string, loc *time.Location) (Period, error) {
	parts := strings.Fields(strings.Replace(label, "-", " ", 1))
	if len(parts) != 5 {
		return Period{}, fmt.Errorf("invalid period label %q", label)
	}
	startDay, err1 := strconv.Atoi(parts[0])
	endDay, err2 := strconv.Atoi(parts[2])
	year, err3 := strconv.Atoi(parts[4])
	if err1 != nil || err2 != nil || err3 != nil {
		return Period{}, fmt.Errorf("invalid period label %q", label)
	}
	startMonth, ok1 := parseSwedishMonth(parts[1])
	endMonth, ok2 := parseSwedishMonth(parts[3])
	if !ok1 || !ok2 || startDay != PeriodStartDay || endDay != PeriodStartDay-1 {
		return Period{}, fmt.Errorf("invalid period label %q", label)
	}
	p := periodEndingIn(year, endMonth, loc)
	if p.Start.Month() != startMonth {
		return Period{}, fmt.Errorf("invalid period label %q: months are not consecutive", label)
	}
	return p, nil
}

func parseSwedishMonth(s string) (time.Month, bool) {
	for i, name := range swedishMonths {
		if strings.EqualFold(name, s) {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// ParseDate parses a stored YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders t as a stored date string in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateRange builds the window from two optional YYYY-MM-DD query values.
// With neither, it is the current period. With only to, it starts at the
// start of the period containing to. With only from, it ends with the
// current period, or with the period containing from when that is later.
func DateRange(from, to string, now time.Time) (Period, error) {
	p := CurrentPeriod(now)
	if from != "" {
		t, err := ParseDate(from, now.Location())
		if err != nil {
			return Period{}, fmt.Errorf("invalid from date: %w", err)
		}
		p.Start = t
	}
	if to != "" {
		t, err := ParseDate(to, now.Location())
		if err != nil {
			return Period{}, fmt.Errorf("invalid to date: %w", err)
		}
		p.End = endOfDay(t)
	}
	switch {
	case from == "" && to != "":
		p.Start = CurrentPeriod(p.End).Start
	case from != "" && to == "" && p.Empty():
		p.End = CurrentPeriod(p.Start).End
	}
	if p.Empty() {
		return Period{}, fmt.Errorf("from date %s is after to date %s", FormatDate(p.Start), FormatDate(p.End))
	}
	return p, nil
}
