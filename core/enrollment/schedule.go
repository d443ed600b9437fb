package enrollment

import (
	"math"
	"time"
)

// accepted ISO-8601 layouts; values without a zone are read as UTC
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseSessionIndex accepts JSON numbers holding an integral value.
func parseSessionIndex(v interface{}) (int, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// parseDate accepts ISO-8601 strings and returns the instant in UTC.
func parseDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type scheduleUpdate struct {
	entry        int
	sessionIndex int
	date         time.Time
}

// planSchedule splits raw entries into the updates to apply and the results of the skipped ones.
// `results` holds one slot per entry; slots of returned updates are filled in by the caller.
func planSchedule(entries []ScheduleEntry) (updates []scheduleUpdate, results []EntryResult) {
	results = make([]EntryResult, len(entries))
	for i, e := range entries {
		results[i].Index = i

		idx, ok := parseSessionIndex(e.SessionIndex)
		if !ok {
			results[i].Status = EntrySkipped
			results[i].Reason = ReasonInvalidSessionIndex
			continue
		}
		idxCopy := idx
		results[i].SessionIndex = &idxCopy

		date, ok := parseDate(e.Date)
		if !ok {
			results[i].Status = EntrySkipped
			results[i].Reason = ReasonInvalidDate
			continue
		}
		updates = append(updates, scheduleUpdate{entry: i, sessionIndex: idx, date: date})
	}
	return updates, results
}
