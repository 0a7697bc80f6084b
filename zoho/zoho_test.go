package zoho

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/timewext/timew-reports/timew"
)

func tracked(start, end time.Time, annotation string, tags ...string) timew.Interval {
	return timew.Interval{
		Start:      timew.Time{Time: start},
		End:        &timew.Time{Time: end},
		Tags:       tags,
		Annotation: annotation,
	}
}

func localTime(day string, hour, minute int) time.Time {
	parsed, _ := time.ParseInLocation("2006-01-02", day, time.Local)
	return parsed.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func TestDurationMinutes(t *testing.T) {
	one := decimal.NewFromInt(1)

	tests := []struct {
		name       string
		rawSeconds int64
		multiplier decimal.Decimal
		want       int64
	}{
		{name: "zero", rawSeconds: 0, multiplier: one, want: 0},
		{name: "full block", rawSeconds: 900, multiplier: one, want: 15},
		{name: "just over a block", rawSeconds: 901, multiplier: one, want: 15},
		{name: "sixteen minutes", rawSeconds: 960, multiplier: one, want: 30},
		{name: "hour", rawSeconds: 3600, multiplier: one, want: 60},
		{name: "half multiplier", rawSeconds: 3600, multiplier: decimal.RequireFromString("0.5"), want: 30},
		{name: "under half a minute rounds to zero", rawSeconds: 29, multiplier: one, want: 0},
		{name: "half a minute banks to even", rawSeconds: 30, multiplier: one, want: 0},
		{name: "ninety seconds banks to even", rawSeconds: 90, multiplier: one, want: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DurationMinutes(tt.rawSeconds, tt.multiplier))
		})
	}
}

func TestResolve(t *testing.T) {
	configs := []ProjectConfig{
		{Tags: []string{"acme"}, ProjectName: "ACME"},
	}

	t.Run("match", func(t *testing.T) {
		assert.Equal(t, "ACME", Resolve([]string{"acme", "extra"}, configs).ProjectName)
	})

	t.Run("fallback names the tags", func(t *testing.T) {
		pc := Resolve([]string{"x", "y"}, configs)
		assert.Equal(t, "NO PROJECT FOUND FOR THESE TAGS: x, y", pc.ProjectName)
	})
}

func TestBuildEntry(t *testing.T) {
	pc := ProjectConfig{ProjectName: "ACME", TaskName: "Impl", Billable: true}

	entry, ok := BuildEntry(tracked(localTime("2024-01-02", 9, 0), localTime("2024-01-02", 10, 0), "standup; fix login"), pc)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-02", entry.Date)
	assert.Equal(t, int64(60), entry.DurationMinutes)
	assert.Equal(t, "Billable", entry.BillableStatus)
	assert.Equal(t, "standup;\nfix login", entry.Notes)
}

func TestBuildEntryNotePrefix(t *testing.T) {
	prefix := "Support"
	pc := ProjectConfig{ProjectName: "ACME", NotePrefix: &prefix}

	t.Run("with annotation", func(t *testing.T) {
		entry, ok := BuildEntry(tracked(localTime("2024-01-02", 9, 0), localTime("2024-01-02", 10, 0), "ticket 42"), pc)
		assert.True(t, ok)
		assert.Equal(t, "Support\nticket 42", entry.Notes)
	})

	t.Run("without annotation", func(t *testing.T) {
		entry, ok := BuildEntry(tracked(localTime("2024-01-02", 9, 0), localTime("2024-01-02", 10, 0), ""), pc)
		assert.True(t, ok)
		assert.Equal(t, "Support\n", entry.Notes)
	})
}

func TestBuildEntryRunning(t *testing.T) {
	running := timew.Interval{Start: timew.Time{Time: localTime("2024-01-02", 9, 0)}}
	_, ok := BuildEntry(running, ProjectConfig{})
	assert.False(t, ok)
}

func TestBuildEntryMultiplierAndStatus(t *testing.T) {
	half := decimal.RequireFromString("0.5")
	pc := ProjectConfig{ProjectName: "ACME", Multiplier: &half}

	entry, ok := BuildEntry(tracked(localTime("2024-01-02", 9, 0), localTime("2024-01-02", 10, 0), ""), pc)
	assert.True(t, ok)
	assert.Equal(t, int64(30), entry.DurationMinutes)
	assert.Equal(t, "Non Billable", entry.BillableStatus)
}

func TestMergeInto(t *testing.T) {
	base := Entry{Date: "2024-01-02", DurationMinutes: 15, ProjectName: "ACME", TaskName: "Impl", Notes: "standup;\nfix login"}

	t.Run("identical notes sum", func(t *testing.T) {
		entries := MergeInto(nil, base)
		entries = MergeInto(entries, base)
		assert.Equal(t, 1, len(entries))
		assert.Equal(t, int64(30), entries[0].DurationMinutes)
		assert.Equal(t, base.Notes, entries[0].Notes)
	})

	t.Run("shared title merges note items", func(t *testing.T) {
		other := base
		other.Notes = "standup;\nreview PR;\nfix login"

		entries := MergeInto(nil, base)
		entries = MergeInto(entries, other)
		assert.Equal(t, 1, len(entries))
		assert.Equal(t, "standup;\nfix login;\nreview PR", entries[0].Notes)
	})

	t.Run("different day stays separate", func(t *testing.T) {
		other := base
		other.Date = "2024-01-03"

		entries := MergeInto(nil, base)
		entries = MergeInto(entries, other)
		assert.Equal(t, 2, len(entries))
	})

	t.Run("different title stays separate", func(t *testing.T) {
		other := base
		other.Notes = "planning;\nfix login"

		entries := MergeInto(nil, base)
		entries = MergeInto(entries, other)
		assert.Equal(t, 2, len(entries))
	})
}

func TestSanitizeNotes(t *testing.T) {
	assert.Equal(t, "standup;\nfix login", SanitizeNotes("standup;\n++internal++;\nfix login"))
	assert.Equal(t, "standup", SanitizeNotes("standup"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:45", FormatDuration(45))
	assert.Equal(t, "1:30", FormatDuration(90))
	assert.Equal(t, "10:05", FormatDuration(605))
}

func TestEntryRow(t *testing.T) {
	entry := Entry{
		Date:            "2024-01-02",
		DurationMinutes: 75,
		ProjectName:     "ACME",
		TaskName:        "Impl",
		BillableStatus:  "Billable",
		Notes:           "standup",
	}
	assert.Equal(t, []string{"2024-01-02", "1:15", "ACME", "Impl", "Billable", "standup"}, entry.Row())
}
