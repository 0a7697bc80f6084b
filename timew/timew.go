// Package timew reads the report stream Timewarrior hands to an extension:
// a block of "Key: value" configuration lines terminated by a blank line,
// followed by a JSON array of tracked intervals.
package timew

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimestampFormat is the layout Timewarrior uses for interval timestamps.
// The zone suffix is either a literal "Z" or a ±hhmm offset.
const TimestampFormat = "20060102T150405Z0700"

// Time wraps time.Time with the Timewarrior wire format.
type Time struct {
	time.Time
}

// UnmarshalJSON decodes a quoted Timewarrior timestamp.
func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(TimestampFormat, raw)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the timestamp in UTC using the Timewarrior layout.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(TimestampFormat))
}

// Interval is one tracked span of time. End is nil while tracking is still
// running; such intervals are excluded from billing.
type Interval struct {
	ID         int      `json:"id"`
	Start      Time     `json:"start"`
	End        *Time    `json:"end,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Annotation string   `json:"annotation,omitempty"`
}

// Ended reports whether the interval has an end timestamp.
func (iv Interval) Ended() bool {
	return iv.End != nil
}

// Duration returns the tracked span, using now for still-running intervals.
func (iv Interval) Duration(now time.Time) time.Duration {
	if iv.End == nil {
		return now.Sub(iv.Start.Time)
	}
	return iv.End.Sub(iv.Start.Time)
}

// RawSeconds returns the elapsed whole seconds of an ended interval.
func (iv Interval) RawSeconds() int64 {
	if iv.End == nil {
		return 0
	}
	return int64(iv.End.Sub(iv.Start.Time) / time.Second)
}

// HasTag reports whether the interval carries the given tag.
func (iv Interval) HasTag(tag string) bool {
	for _, t := range iv.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Header holds the report configuration lines preceding the JSON payload.
type Header map[string]string

// Get returns the trimmed header value and whether the key was present.
func (h Header) Get(key string) (string, bool) {
	value, ok := h[key]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

// SplitInput separates the leading header block from the JSON payload.
// Input without a header block (payload starts immediately, or the leading
// section contains no "Key: value" lines) yields an empty header and the
// whole input as payload.
func SplitInput(r io.Reader) (Header, []byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read report input: %w", err)
	}

	text := string(content)
	sep := strings.Index(text, "\n\n")
	if sep < 0 {
		return Header{}, content, nil
	}

	headerText, payload := text[:sep], text[sep+2:]
	if strings.TrimSpace(headerText) == "" || strings.HasPrefix(strings.TrimLeft(headerText, " \t\r\n"), "[") {
		return Header{}, content, nil
	}

	lines := strings.Split(headerText, "\n")
	hasPair := false
	for _, line := range lines {
		if strings.Contains(line, ": ") {
			hasPair = true
			break
		}
	}
	if !hasPair {
		return Header{}, content, nil
	}

	header := Header{}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, ": ")
		if !found {
			key = strings.TrimSuffix(line, ":")
			value = ""
		}
		if strings.TrimSpace(key) == "" {
			continue
		}
		header[strings.TrimSpace(key)] = strings.TrimRight(value, "\n\r")
	}

	return header, []byte(payload), nil
}

// ParseExport decodes the JSON array produced by `timew export`.
func ParseExport(payload []byte) ([]Interval, error) {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil, nil
	}
	var intervals []Interval
	if err := json.Unmarshal(payload, &intervals); err != nil {
		return nil, fmt.Errorf("failed to parse interval export: %w", err)
	}
	return intervals, nil
}
