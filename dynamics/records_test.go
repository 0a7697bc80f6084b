package dynamics

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/timewext/timew-reports/timew"
)

func interval(start, end time.Time, annotation string, tags ...string) timew.Interval {
	iv := timew.Interval{
		Start:      timew.Time{Time: start},
		Tags:       tags,
		Annotation: annotation,
	}
	if !end.IsZero() {
		iv.End = &timew.Time{Time: end}
	}
	return iv
}

func TestBuildRecordsPipeline(t *testing.T) {
	day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	configs := []ProjectConfig{
		{TimewTags: []string{"acme"}, Project: "ACME", ProjectTask: "Impl", Role: "Developer"},
	}

	entries := []timew.Interval{
		interval(day, day.Add(30*time.Minute), "Standup", "acme"),
		interval(day.Add(time.Hour), day.Add(90*time.Minute), "Standup", "acme"),
	}

	records, reports := BuildRecords(entries, configs, Settings{}, MergeOptions{})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "2024-01-02", records[0].Date)
	assert.Equal(t, "ACME", records[0].Project)
	assert.Equal(t, int64(60), records[0].DurationMinutes)
	assert.Equal(t, "Standup", records[0].Description)
	assert.Equal(t, 0, len(reports))
}

func TestBuildRecordsSkipsUnendedAndExcluded(t *testing.T) {
	day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	settings := Settings{ExcludeTags: map[string]struct{}{"pause": {}}}

	entries := []timew.Interval{
		interval(day, time.Time{}, "still running", "acme"),
		interval(day, day.Add(time.Hour), "lunch", "pause"),
		interval(day.Add(2*time.Hour), day.Add(3*time.Hour), "work", "acme"),
	}

	records, _ := BuildRecords(entries, nil, settings, MergeOptions{})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, int64(60), records[0].DurationMinutes)
}

func TestBuildRecordsFallbackProject(t *testing.T) {
	day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	entries := []timew.Interval{
		interval(day, day.Add(time.Hour), "work", "unmapped", "tag"),
	}

	records, _ := BuildRecords(entries, nil, Settings{}, MergeOptions{})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "NO PROJECT FOUND FOR THESE TAGS: unmapped, tag", records[0].Project)
	assert.Equal(t, "-", records[0].ProjectTask)
}

func TestBuildRecordsAbsorption(t *testing.T) {
	day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	configs := []ProjectConfig{
		{TimewTags: []string{"acme"}, Project: "ACME"},
		{TimewTags: []string{"admin"}, Project: "Internal"},
	}
	settings := Settings{AbsorbTag: "admin"}

	entries := []timew.Interval{
		// 50 minutes of work leaves 10 minutes of rounding slack, which
		// swallows the 5-minute admin interval entirely.
		interval(day, day.Add(50*time.Minute), "work", "acme"),
		interval(day.Add(time.Hour), day.Add(65*time.Minute), "mail", "admin"),
	}

	records, reports := BuildRecords(entries, configs, settings, MergeOptions{})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "ACME", records[0].Project)
	assert.Equal(t, int64(60), records[0].DurationMinutes)

	assert.Equal(t, 1, len(reports))
	assert.Equal(t, int64(600), reports[0].SlackSeconds)
	assert.Equal(t, int64(300), reports[0].AbsorbedSeconds)
	assert.Equal(t, int64(0), reports[0].LeftoverRawSeconds)
}

func TestBuildRecordsSanitizedDescriptionOrder(t *testing.T) {
	// Hidden marker segments survive merging and are only stripped when the
	// description is rendered.
	day := time.Date(2024, 1, 2, 9, 0, 0, 0, time.Local)
	configs := []ProjectConfig{
		{TimewTags: []string{"acme"}, Project: "ACME"},
	}

	entries := []timew.Interval{
		interval(day, day.Add(30*time.Minute), "Standup; ++sync++", "acme"),
		interval(day.Add(time.Hour), day.Add(90*time.Minute), "Standup; fixed bug", "acme"),
	}

	records, _ := BuildRecords(entries, configs, Settings{}, MergeOptions{})

	assert.Equal(t, 1, len(records))
	assert.Equal(t, "Standup; ++sync++; fixed bug", records[0].Description)
	assert.Equal(t, "Standup\nfixed bug",
		SanitizeDescription(records[0].Description, records[0].AnnotationDelimiter, records[0].OutputSeparator))
}
