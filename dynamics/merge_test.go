package dynamics

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

func testDraft(description string) *Draft {
	return &Draft{
		Date:                "2024-01-02",
		RawSeconds:          1800,
		Multiplier:          decimal.NewFromInt(1),
		Project:             "PRJ-1",
		ProjectTask:         "TSK-1",
		ProjectDisplay:      "ACME",
		ProjectTaskDisplay:  "Impl",
		Role:                "Developer",
		Type:                "Work",
		Description:         description,
		AnnotationDelimiter: "; ",
		OutputSeparator:     "\n",
	}
}

func TestMergeIntoIdenticalDescriptions(t *testing.T) {
	drafts := MergeInto(nil, testDraft("Standup"), false, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Standup"), false, MergeOptions{})

	assert.Equal(t, 1, len(drafts))
	assert.Equal(t, int64(3600), drafts[0].RawSeconds)
	assert.Equal(t, "Standup", drafts[0].Description)
}

func TestMergeIntoEqualTags(t *testing.T) {
	drafts := MergeInto(nil, testDraft("Standup; fixed bug"), true, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Standup; reviewed PR"), true, MergeOptions{})

	assert.Equal(t, 1, len(drafts))
	assert.Equal(t, int64(3600), drafts[0].RawSeconds)
	assert.Equal(t, "Standup; fixed bug; reviewed PR", drafts[0].Description)
}

func TestMergeIntoTitleMatch(t *testing.T) {
	drafts := MergeInto(nil, testDraft("Standup; fixed bug"), false, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Standup; reviewed PR"), false, MergeOptions{})

	assert.Equal(t, 1, len(drafts))
	assert.Equal(t, "Standup; fixed bug; reviewed PR", drafts[0].Description)
}

func TestMergeIntoDifferentTitles(t *testing.T) {
	drafts := MergeInto(nil, testDraft("Standup; notes"), false, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Planning; notes"), false, MergeOptions{})

	assert.Equal(t, 2, len(drafts))
}

func TestMergeIntoDeduplicates(t *testing.T) {
	drafts := MergeInto(nil, testDraft("Standup; fixed bug"), true, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Standup; fixed bug; reviewed PR"), true, MergeOptions{})

	assert.Equal(t, 1, len(drafts))
	assert.Equal(t, "Standup; fixed bug; reviewed PR", drafts[0].Description)
}

func TestMergeIntoLengthCap(t *testing.T) {
	long := "Standup; " + strings.Repeat("x", MaxDescriptionLength)
	drafts := MergeInto(nil, testDraft(long), true, MergeOptions{})
	drafts = MergeInto(drafts, testDraft("Standup; short"), true, MergeOptions{})

	// Combined length exceeds the cap, so no merge happens even though the
	// titles match.
	assert.Equal(t, 2, len(drafts))
}

func TestMergeIntoSlotMismatch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
	}{
		{name: "different date", mutate: func(d *Draft) { d.Date = "2024-01-03" }},
		{name: "different project", mutate: func(d *Draft) { d.Project = "PRJ-2" }},
		{name: "different task", mutate: func(d *Draft) { d.ProjectTask = "TSK-2" }},
		{name: "different role", mutate: func(d *Draft) { d.Role = "Consultant" }},
		{name: "different type", mutate: func(d *Draft) { d.Type = "Overtime" }},
		{name: "different multiplier", mutate: func(d *Draft) { d.Multiplier = decimal.RequireFromString("1.5") }},
		{name: "different absorbable", mutate: func(d *Draft) { d.Absorbable = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := testDraft("Standup")
			tt.mutate(other)

			drafts := MergeInto(nil, testDraft("Standup"), false, MergeOptions{})
			drafts = MergeInto(drafts, other, false, MergeOptions{})
			assert.Equal(t, 2, len(drafts))
		})
	}
}

func TestMergeIntoDisplayValues(t *testing.T) {
	// Same display names but different internal ids: merged only in
	// display mode.
	other := testDraft("Standup")
	other.Project = "PRJ-2"

	idMode := MergeInto(nil, testDraft("Standup"), false, MergeOptions{})
	idMode = MergeInto(idMode, other, false, MergeOptions{})
	assert.Equal(t, 2, len(idMode))

	other2 := testDraft("Standup")
	other2.Project = "PRJ-2"
	displayMode := MergeInto(nil, testDraft("Standup"), false, MergeOptions{OnDisplayValues: true})
	displayMode = MergeInto(displayMode, other2, false, MergeOptions{OnDisplayValues: true})
	assert.Equal(t, 1, len(displayMode))
}

func TestMergeIntoFormatSensitivity(t *testing.T) {
	other := testDraft("Standup")
	other.OutputSeparator = ";\n"

	strict := MergeInto(nil, testDraft("Standup"), false, MergeOptions{IncludeFormat: true})
	strict = MergeInto(strict, other, false, MergeOptions{IncludeFormat: true})
	assert.Equal(t, 2, len(strict))

	other2 := testDraft("Standup")
	other2.OutputSeparator = ";\n"
	relaxed := MergeInto(nil, testDraft("Standup"), false, MergeOptions{})
	relaxed = MergeInto(relaxed, other2, false, MergeOptions{})
	assert.Equal(t, 1, len(relaxed))
}

func TestJoinUnique(t *testing.T) {
	assert.Equal(t, "a; b; c", JoinUnique([]string{"a", "b", "a", "c", "b"}, "; "))
	assert.Equal(t, "", JoinUnique(nil, "; "))
}

func TestMergeAnnotationsIdempotent(t *testing.T) {
	merged := MergeAnnotations("Standup; fixed bug", "fixed bug", "; ")
	assert.Equal(t, "Standup; fixed bug", merged)
}

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		delimiter string
		separator string
		want      string
	}{
		{
			name:      "hidden segment removed",
			text:      "Standup; ++internal++; fixed bug",
			delimiter: "; ",
			separator: "\n",
			want:      "Standup\nfixed bug",
		},
		{
			name:      "no hidden segments",
			text:      "Standup; fixed bug",
			delimiter: "; ",
			separator: ";\n",
			want:      "Standup;\nfixed bug",
		},
		{
			name:      "empty delimiter leaves text alone",
			text:      "anything",
			delimiter: "",
			separator: "\n",
			want:      "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDescription(tt.text, tt.delimiter, tt.separator))
		})
	}
}
