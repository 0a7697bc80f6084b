package timew

import (
	"regexp"
	"strings"
	"time"
)

var isoDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// headerTimeLayouts are the formats accepted for header range values,
// tried in order. Layouts without a zone are interpreted in local time.
var headerTimeLayouts = []struct {
	layout string
	zoned  bool
}{
	{TimestampFormat, true},
	{"2006-01-02T15:04:05Z0700", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02", false},
}

// ParseHeaderTime parses a header timestamp value. A trailing "Z" is
// accepted on every zoned layout.
func ParseHeaderTime(value string) (time.Time, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, candidate := range headerTimeLayouts {
		parsed, err := time.Parse(candidate.layout, cleaned)
		if err != nil {
			if !candidate.zoned {
				parsed, err = time.ParseInLocation(candidate.layout, cleaned, time.Local)
			}
			if err != nil {
				continue
			}
		}
		return parsed, true
	}
	return time.Time{}, false
}

// ReportWindow resolves the report range from temp.report.start and
// temp.report.end. When the end falls exactly on a local midnight after the
// start date it is rolled back one day, so "until tomorrow 0:00" reports do
// not include an empty trailing day. Returns nils when no end is set.
func (h Header) ReportWindow() (start, end *time.Time) {
	endValue, _ := h.Get("temp.report.end")
	if endValue == "" {
		return nil, nil
	}
	startValue, _ := h.Get("temp.report.start")

	if parsed, ok := ParseHeaderTime(startValue); ok {
		start = &parsed
	}
	if parsed, ok := ParseHeaderTime(endValue); ok {
		end = &parsed
	}
	if start != nil && end != nil {
		localEnd := end.Local()
		if isLocalMidnight(localEnd) && localEnd.After(*start) && dateOf(localEnd).After(dateOf(start.Local())) {
			rolled := end.AddDate(0, 0, -1)
			end = &rolled
		}
	}
	return start, end
}

// RangeDates resolves the report range as local calendar days. The free-form
// "Range" header value is preferred; explicit start/end keys act as
// fallbacks. Midnight ends are rolled back to the previous day.
func (h Header) RangeDates() (start, end *time.Time) {
	normalized := make(map[string]string, len(h))
	for key, value := range h {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}

	var startAt, endAt *time.Time
	if rangeValue := normalized["range"]; rangeValue != "" {
		if matches := isoDatePattern.FindAllString(rangeValue, -1); len(matches) >= 2 {
			if parsed, ok := ParseHeaderTime(matches[0]); ok {
				startAt = &parsed
			}
			if parsed, ok := ParseHeaderTime(matches[1]); ok {
				endAt = &parsed
			}
		}
	}

	if startAt == nil || endAt == nil {
		startValue := firstNonEmpty(normalized, "start", "range_start", "temp.report.start")
		endValue := firstNonEmpty(normalized, "end", "range_end", "temp.report.end")
		if parsed, ok := ParseHeaderTime(startValue); ok {
			startAt = &parsed
		}
		if parsed, ok := ParseHeaderTime(endValue); ok {
			endAt = &parsed
		}
	}

	if startAt != nil {
		day := dateOf(startAt.Local())
		start = &day
	}
	if endAt != nil {
		day := dateOf(endAt.Local())
		end = &day
	}
	if start != nil && endAt != nil && end != nil {
		localEnd := endAt.Local()
		if isLocalMidnight(localEnd) && end.After(*start) {
			rolled := end.AddDate(0, 0, -1)
			end = &rolled
		}
	}
	return start, end
}

func firstNonEmpty(values map[string]string, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(values[key]); value != "" {
			return value
		}
	}
	return ""
}

func isLocalMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
