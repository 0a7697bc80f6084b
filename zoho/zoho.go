// Package zoho builds rows for the Zoho Projects time log import format.
// Durations round up to 15-minute blocks after applying the project
// multiplier, and entries on the same day, project and task merge when their
// notes share a title.
package zoho

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timewext/timew-reports/tagmatch"
	"github.com/timewext/timew-reports/timew"
)

// Configuration of the report.
const (
	DefaultConfigFilename = ".zoho_config.json"
	ConfigEnvVar          = "TIMEWARRIOR_EXT_ZOHO_CONFIG_JSON"

	// NotesDelimiter separates note items inside the Notes cell. Zoho
	// renders the embedded newline as a line break.
	NotesDelimiter = ";\n"
)

const noMatchNotePrefix = "NO PROJECT FOUND FOR THESE TAGS: "

// ProjectConfig maps tracking tags onto a Zoho project and task.
type ProjectConfig struct {
	Tags        []string         `json:"tag"`
	ProjectName string           `json:"project_name"`
	TaskName    string           `json:"task_name"`
	Billable    bool             `json:"billable"`
	NotePrefix  *string          `json:"note_prefix"`
	Multiplier  *decimal.Decimal `json:"multiplier"`
}

// Entry is one row of the import file.
type Entry struct {
	Date            string
	DurationMinutes int64
	ProjectName     string
	TaskName        string
	BillableStatus  string
	Notes           string
}

// Row returns the cells in import column order.
func (e Entry) Row() []string {
	return []string{
		e.Date,
		FormatDuration(e.DurationMinutes),
		e.ProjectName,
		e.TaskName,
		e.BillableStatus,
		e.Notes,
	}
}

// LoadProjects reads the project configuration. The filename comes from the
// environment when set, and relative paths resolve against the executable
// directory.
func LoadProjects() ([]ProjectConfig, error) {
	filename := os.Getenv(ConfigEnvVar)
	if filename == "" {
		filename = DefaultConfigFilename
	}
	if !filepath.IsAbs(filename) {
		executable, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("cannot locate executable directory: %w", err)
		}
		filename = filepath.Join(filepath.Dir(executable), filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read project configuration: %w", err)
	}

	var configs []ProjectConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("invalid project configuration %s: %w", filename, err)
	}
	return configs, nil
}

// Resolve returns the configuration matching the tags, or a fallback naming
// the unmatched tags.
func Resolve(tags []string, configs []ProjectConfig) ProjectConfig {
	if matched, ok := tagmatch.Best(tags, configs, func(pc ProjectConfig) []string {
		return pc.Tags
	}); ok {
		return matched
	}
	return ProjectConfig{
		ProjectName: noMatchNotePrefix + strings.Join(tags, ", "),
	}
}

// DurationMinutes scales the elapsed seconds by the multiplier, rounds to
// whole minutes, and rounds the result up to a full 15-minute block.
func DurationMinutes(rawSeconds int64, multiplier decimal.Decimal) int64 {
	scaled := multiplier.Mul(decimal.NewFromInt(rawSeconds))
	minutes := scaled.Div(decimal.NewFromInt(60)).RoundBank(0).IntPart()
	if minutes <= 0 {
		return 0
	}
	blocks := (minutes + 14) / 15
	return blocks * 15
}

// BuildEntry converts an ended interval into an import row. The second return
// value is false for intervals still running.
func BuildEntry(iv timew.Interval, pc ProjectConfig) (Entry, bool) {
	if !iv.Ended() {
		return Entry{}, false
	}

	notes := strings.ReplaceAll(iv.Annotation, "; ", NotesDelimiter)
	if pc.NotePrefix != nil {
		if notes != "" {
			notes = *pc.NotePrefix + "\n" + notes
		} else {
			notes = *pc.NotePrefix + "\n"
		}
	}

	multiplier := decimal.NewFromInt(1)
	if pc.Multiplier != nil {
		multiplier = *pc.Multiplier
	}

	status := "Non Billable"
	if pc.Billable {
		status = "Billable"
	}

	return Entry{
		Date:            iv.Start.Local().Format("2006-01-02"),
		DurationMinutes: DurationMinutes(iv.RawSeconds(), multiplier),
		ProjectName:     pc.ProjectName,
		TaskName:        pc.TaskName,
		BillableStatus:  status,
		Notes:           notes,
	}, true
}

// MergeInto folds the new entry into the first row on the same day, project
// and task whose notes are identical or share a title, otherwise appends it.
func MergeInto(entries []Entry, entry Entry) []Entry {
	for i := range entries {
		existing := &entries[i]
		if existing.Date != entry.Date ||
			existing.ProjectName != entry.ProjectName ||
			existing.TaskName != entry.TaskName {
			continue
		}

		if existing.Notes == entry.Notes {
			existing.DurationMinutes += entry.DurationMinutes
			return entries
		}

		existingTitle, _, _ := strings.Cut(existing.Notes, NotesDelimiter)
		newTitle, _, _ := strings.Cut(entry.Notes, NotesDelimiter)
		if existingTitle == newTitle {
			existing.DurationMinutes += entry.DurationMinutes
			existing.Notes = mergeNotes(existing.Notes, entry.Notes)
			return entries
		}
	}
	return append(entries, entry)
}

// mergeNotes appends the new notes' non-title items and removes duplicate
// items while keeping first-seen order.
func mergeNotes(existingNotes, newNotes string) string {
	_, remainder, _ := strings.Cut(newNotes, NotesDelimiter)
	merged := existingNotes + NotesDelimiter + remainder

	var unique []string
	for _, segment := range strings.Split(merged, NotesDelimiter) {
		seen := false
		for _, item := range unique {
			if item == segment {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, segment)
		}
	}
	return strings.Join(unique, NotesDelimiter)
}

// SanitizeNotes drops hidden "++...++" note items before export.
func SanitizeNotes(notes string) string {
	var visible []string
	for _, segment := range strings.Split(notes, NotesDelimiter) {
		if strings.HasPrefix(segment, "++") && strings.HasSuffix(segment, "++") {
			continue
		}
		visible = append(visible, segment)
	}
	return strings.Join(visible, NotesDelimiter)
}

// FormatDuration renders whole minutes in the import's H:MM time format.
func FormatDuration(minutes int64) string {
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
