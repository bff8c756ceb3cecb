package resolver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/faiqhilman13/FinancialAssistant/internal/domain"
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var monthPattern = regexp.MustCompile(
	`\b(january|february|march|april|june|july|august|september|sept|october|november|december|jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\b(?:\s+(\d{4}))?`)

// ResolveTime matches text against the closed vocabulary of relative
// time expressions and resolves the first match to a concrete half-open
// interval anchored on ref. Returns nil when no expression matches.
//
// A bare month name resolves to its most recent occurrence at or before
// ref, so "September" asked against an October 2023 reference means
// September 2023, not September of some other year.
func ResolveTime(text string, ref time.Time) *domain.TimeRange {
	lower := strings.ToLower(text)

	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	weekStart := startOfWeek(ref)
	yearStart := time.Date(ref.Year(), 1, 1, 0, 0, 0, 0, ref.Location())
	dayStart := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())

	switch {
	case strings.Contains(lower, "last month"):
		return &domain.TimeRange{Start: monthStart.AddDate(0, -1, 0), End: monthStart, Label: "last month"}
	case strings.Contains(lower, "this month"):
		return &domain.TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0), Label: "this month"}
	case strings.Contains(lower, "last week"):
		return &domain.TimeRange{Start: weekStart.AddDate(0, 0, -7), End: weekStart, Label: "last week"}
	case strings.Contains(lower, "this week"):
		return &domain.TimeRange{Start: weekStart, End: weekStart.AddDate(0, 0, 7), Label: "this week"}
	case strings.Contains(lower, "last year"):
		return &domain.TimeRange{Start: yearStart.AddDate(-1, 0, 0), End: yearStart, Label: "last year"}
	case strings.Contains(lower, "this year"):
		return &domain.TimeRange{Start: yearStart, End: yearStart.AddDate(1, 0, 0), Label: "this year"}
	case strings.Contains(lower, "yesterday"):
		return &domain.TimeRange{Start: dayStart.AddDate(0, 0, -1), End: dayStart, Label: "yesterday"}
	case strings.Contains(lower, "today"):
		return &domain.TimeRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1), Label: "today"}
	}

	for _, m := range monthPattern.FindAllStringSubmatchIndex(lower, -1) {
		month := monthsByName[lower[m[2]:m[3]]]

		year := ref.Year()
		explicitYear := false
		if m[4] != -1 {
			year, _ = strconv.Atoi(lower[m[4]:m[5]])
			explicitYear = true
		}

		// "may" doubles as a modal verb; without a year it only counts
		// as a month after a cue word ("in may", "last may").
		if month == time.May && !explicitYear && !monthCue(lower[:m[2]]) {
			continue
		}

		start := time.Date(year, month, 1, 0, 0, 0, 0, ref.Location())
		if !explicitYear && start.After(ref) {
			// Bare month name after the reference date: most recent
			// occurrence is in the previous year.
			start = start.AddDate(-1, 0, 0)
		}

		label := "in " + start.Month().String()
		if explicitYear || start.Year() != ref.Year() {
			label = fmt.Sprintf("in %s %d", start.Month(), start.Year())
		}

		return &domain.TimeRange{Start: start, End: start.AddDate(0, 1, 0), Label: label}
	}
	return nil
}

// monthCue reports whether the word directly before a month mention
// marks it as a time reference.
func monthCue(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) == 0 {
		return false
	}
	switch fields[len(fields)-1] {
	case "in", "for", "during", "of", "about", "last", "this", "since":
		return true
	}
	return false
}

// startOfWeek returns midnight on the Monday of ref's week.
func startOfWeek(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
