package analytics

import (
	"time"

	"paydash/internal/domain"
)

// Default spans applied when the caller omits range boundaries.
const (
	DefaultSummarySpanDays = 30
	DefaultDailySpanDays   = 6
)

// ResolveRange turns optional caller-supplied dates into a concrete inclusive
// day range. A missing end defaults to today; a missing start defaults to
// spanDays before the resolved end. Supplied values are truncated to UTC
// midnight, so intraday timestamps select their whole calendar day.
//
// An explicit start after an explicit end is passed through unchanged; the
// resulting range spans zero days and every series built over it is empty.
func ResolveRange(start, end *time.Time, spanDays int, now time.Time) domain.DateRange {
	endDay := truncateDay(now)
	if end != nil {
		endDay = truncateDay(*end)
	}

	startDay := endDay.AddDate(0, 0, -spanDays)
	if start != nil {
		startDay = truncateDay(*start)
	}

	return domain.DateRange{Start: startDay, End: endDay}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
