package timew

import (
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestSplitInput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantHeader  map[string]string
		wantPayload string
	}{
		{
			name:        "header and payload",
			input:       "color: on\ndebug: off\ntemp.report.start: 20240102T000000Z\n\n[{\"id\":1}]",
			wantHeader:  map[string]string{"color": "on", "debug": "off", "temp.report.start": "20240102T000000Z"},
			wantPayload: "[{\"id\":1}]",
		},
		{
			name:        "payload only",
			input:       "[{\"id\":1}]",
			wantHeader:  map[string]string{},
			wantPayload: "[{\"id\":1}]",
		},
		{
			name:        "payload only with leading whitespace",
			input:       "\n  [{\"id\":1}]",
			wantHeader:  map[string]string{},
			wantPayload: "\n  [{\"id\":1}]",
		},
		{
			name:        "empty input",
			input:       "",
			wantHeader:  map[string]string{},
			wantPayload: "",
		},
		{
			name:        "value containing colon",
			input:       "range: 2024-01-01T00:00:00 - 2024-01-08T00:00:00\n\n[]",
			wantHeader:  map[string]string{"range": "2024-01-01T00:00:00 - 2024-01-08T00:00:00"},
			wantPayload: "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, payload, err := SplitInput(strings.NewReader(tt.input))
			assert.NoError(t, err)
			assert.Equal(t, tt.wantHeader, map[string]string(header))
			assert.Equal(t, tt.wantPayload, string(payload))
		})
	}
}

func TestParseExport(t *testing.T) {
	payload := `[
		{"id": 2, "start": "20240102T090000Z", "end": "20240102T103000Z", "tags": ["acme", "dev"], "annotation": "Standup"},
		{"id": 1, "start": "20240102T110000Z", "tags": ["acme"]}
	]`

	entries, err := ParseExport([]byte(payload))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(entries))

	first := entries[0]
	assert.Equal(t, 2, first.ID)
	assert.True(t, first.Ended())
	assert.Equal(t, int64(5400), first.RawSeconds())
	assert.Equal(t, []string{"acme", "dev"}, first.Tags)
	assert.Equal(t, "Standup", first.Annotation)
	assert.True(t, first.HasTag("dev"))
	assert.False(t, first.HasTag("meeting"))

	second := entries[1]
	assert.False(t, second.Ended())
}

func TestParseExportEmpty(t *testing.T) {
	entries, err := ParseExport(nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(entries))

	entries, err = ParseExport([]byte("  \n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(entries))
}

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "utc with literal Z",
			value: `"20240102T154500Z"`,
			want:  time.Date(2024, 1, 2, 15, 45, 0, 0, time.UTC),
		},
		{
			name:  "zoned offset",
			value: `"20240102T154500+0100"`,
			want:  time.Date(2024, 1, 2, 15, 45, 0, 0, time.FixedZone("", 3600)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var parsed Time
			assert.NoError(t, parsed.UnmarshalJSON([]byte(tt.value)))
			assert.True(t, parsed.Equal(tt.want))
		})
	}
}

func TestIntervalDurationRunning(t *testing.T) {
	start := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	iv := Interval{Start: Time{start}}

	now := start.Add(90 * time.Minute)
	assert.Equal(t, 90*time.Minute, iv.Duration(now))
}
