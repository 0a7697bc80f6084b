package overtime

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/timewext/timew-reports/timew"
)

// Segment is a contiguous tracked span within a single local day. End may be
// the following midnight for spans that touch the day boundary.
type Segment struct {
	Start time.Time
	End   time.Time
}

// DaySummary is the per-day balance of the overtime report. From, To and
// Pause are nil for expected-but-untracked days.
type DaySummary struct {
	Date         time.Time
	WeekLabel    string
	WeekdayLabel string

	FromSecondOfDay *int64
	ToSecondOfDay   *int64
	PauseSeconds    *int64

	ActualSeconds   int64
	ExpectedSeconds int64
	OvertimeSeconds int64
}

// DaySegments splits the ended intervals into local-day segments. Intervals
// crossing midnight contribute a segment to each day they touch.
func DaySegments(entries []timew.Interval) map[string][]Segment {
	segments := make(map[string][]Segment)

	for _, entry := range entries {
		if !entry.Ended() {
			continue
		}

		start := entry.Start.Local()
		end := entry.End.Local()
		if !end.After(start) {
			continue
		}

		current := start
		for dateOf(current).Before(dateOf(end)) {
			midnight := dateOf(current).AddDate(0, 0, 1)
			if midnight.After(current) {
				day := current.Format("2006-01-02")
				segments[day] = append(segments[day], Segment{Start: current, End: midnight})
			}
			current = midnight
		}
		if end.After(current) {
			day := current.Format("2006-01-02")
			segments[day] = append(segments[day], Segment{Start: current, End: end})
		}
	}

	return segments
}

// BuildSummaries computes one summary per day in the report range. Days
// without tracked time and without expected time are skipped. When the range
// bounds are nil they default to the first and last tracked day.
func BuildSummaries(entries []timew.Interval, config Config, startDate, endDate *time.Time) []DaySummary {
	segmentsByDay := DaySegments(entries)

	var trackedDays []string
	for day := range segmentsByDay {
		trackedDays = append(trackedDays, day)
	}
	sort.Strings(trackedDays)

	if len(trackedDays) == 0 && (startDate == nil || endDate == nil) {
		return nil
	}

	if len(trackedDays) > 0 {
		if startDate == nil {
			first := parseDay(trackedDays[0])
			startDate = &first
		}
		if endDate == nil {
			last := parseDay(trackedDays[len(trackedDays)-1])
			endDate = &last
		}
	}
	if startDate == nil || endDate == nil || endDate.Before(*startDate) {
		return nil
	}

	expectedPerDay := int64(math.Round(config.DailyHours * 3600))

	var summaries []DaySummary
	for cursor := *startDate; !cursor.After(*endDate); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		daySegments := segmentsByDay[day]

		var actual int64
		for _, segment := range daySegments {
			actual += int64(segment.End.Sub(segment.Start) / time.Second)
		}

		var expected int64
		if containsInt(config.WorkDays, isoWeekday(cursor)) {
			expected = expectedPerDay
		}
		if actual == 0 && expected == 0 {
			continue
		}

		summary := DaySummary{
			Date:            cursor,
			WeekLabel:       weekLabel(cursor),
			WeekdayLabel:    cursor.Format("Mon"),
			ActualSeconds:   actual,
			ExpectedSeconds: expected,
			OvertimeSeconds: actual - expected,
		}

		if len(daySegments) > 0 {
			merged := mergeSegments(daySegments)
			from := secondsSinceMidnight(merged[0].Start)
			to := toSecondOfDay(cursor, merged[len(merged)-1].End)
			pause := pauseSeconds(merged)
			summary.FromSecondOfDay = &from
			summary.ToSecondOfDay = &to
			summary.PauseSeconds = &pause
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

// mergeSegments unions overlapping or touching segments, ordered by start.
func mergeSegments(segments []Segment) []Segment {
	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	merged := ordered[:1]
	for _, segment := range ordered[1:] {
		last := &merged[len(merged)-1]
		if !segment.Start.After(last.End) {
			if segment.End.After(last.End) {
				last.End = segment.End
			}
			continue
		}
		merged = append(merged, segment)
	}
	return merged
}

func pauseSeconds(merged []Segment) int64 {
	var pause int64
	for i := 0; i+1 < len(merged); i++ {
		gap := int64(merged[i+1].Start.Sub(merged[i].End) / time.Second)
		if gap > 0 {
			pause += gap
		}
	}
	return pause
}

func secondsSinceMidnight(moment time.Time) int64 {
	return int64(moment.Sub(dateOf(moment)) / time.Second)
}

// toSecondOfDay maps an end instant to a second of the given day, where a
// midnight on the following day counts as 24:00:00.
func toSecondOfDay(day time.Time, moment time.Time) int64 {
	if dateOf(moment).After(day) && secondsSinceMidnight(moment) == 0 {
		return 24 * 3600
	}
	return secondsSinceMidnight(moment)
}

func isoWeekday(day time.Time) int {
	weekday := int(day.Weekday())
	if weekday == 0 {
		return 7
	}
	return weekday
}

func weekLabel(day time.Time) string {
	_, week := day.ISOWeek()
	return fmt.Sprintf("W%d", week)
}

func dateOf(moment time.Time) time.Time {
	year, month, day := moment.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, moment.Location())
}

func parseDay(day string) time.Time {
	parsed, _ := time.ParseInLocation("2006-01-02", day, time.Local)
	return parsed
}
