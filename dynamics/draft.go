package dynamics

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/timewext/timew-reports/refine"
	"github.com/timewext/timew-reports/timew"
)

// Draft is the mutable working unit of the merge and absorption passes.
// Merging grows the description and the raw seconds; absorption may shrink
// the raw seconds of absorbable drafts. Duration is not computed here;
// rounding happens once, at finalization.
type Draft struct {
	Date       string
	RawSeconds int64
	Multiplier decimal.Decimal
	Tags       []string

	Project            string
	ProjectTask        string
	ProjectDisplay     string
	ProjectTaskDisplay string
	Role               string
	Type               string

	Description     string
	ExternalComment string

	AnnotationDelimiter string
	OutputSeparator     string

	RefineOverrides refine.Overrides

	Absorbable bool

	// Sequence is the input ordinal of the originating interval, used to
	// restore chronological order after day-grouped absorption.
	Sequence int
}

// HasTag reports whether the draft's originating interval carried the tag.
func (d *Draft) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Record is a finalized, immutable billing line.
type Record struct {
	Date            string
	DurationMinutes int64

	Project            string
	ProjectTask        string
	ProjectDisplay     string
	ProjectTaskDisplay string
	Role               string
	Type               string

	Description     string
	ExternalComment string

	AnnotationDelimiter string
	OutputSeparator     string

	RefineOverrides refine.Overrides
}

// CSVRow returns the export row in the fixed column order.
func (r Record) CSVRow() []string {
	return []string{
		r.Date,
		strconv.FormatInt(r.DurationMinutes, 10),
		r.Project,
		r.ProjectTask,
		r.Role,
		r.Type,
		r.Description,
		r.ExternalComment,
	}
}

// FormattedDuration renders the duration as H:MM for tabular views.
func (r Record) FormattedDuration() string {
	return fmt.Sprintf("%d:%02d", r.DurationMinutes/60, r.DurationMinutes%60)
}

// BuildDraft converts one ended interval and its resolved project
// configuration into a draft. The second return value is the project's
// merge-on-equal-tags policy, which applies when this draft is inserted.
func BuildDraft(iv timew.Interval, pc ProjectConfig, settings Settings, sequence int) (*Draft, bool) {
	delimiter := DefaultAnnotationDelimiter
	if pc.AnnotationDelimiter != "" {
		delimiter = pc.AnnotationDelimiter
	}
	if settings.AnnotationDelimiterOverride != nil {
		delimiter = *settings.AnnotationDelimiterOverride
	}
	if delimiter == "" {
		delimiter = DefaultAnnotationDelimiter
	}

	fallbackSeparator := DefaultOutputSeparator
	if settings.SeparatorFallback != "" {
		fallbackSeparator = settings.SeparatorFallback
	}
	separator := fallbackSeparator
	if pc.OutputSeparator != "" {
		separator = pc.OutputSeparator
	}
	if settings.OutputSeparatorOverride != nil {
		separator = *settings.OutputSeparatorOverride
	}
	if separator == "" {
		separator = fallbackSeparator
	}

	description := iv.Annotation
	if pc.DescriptionPrefix != nil {
		description = *pc.DescriptionPrefix + delimiter + iv.Annotation
	}

	draft := &Draft{
		Date:                iv.Start.Local().Format("2006-01-02"),
		RawSeconds:          iv.RawSeconds(),
		Multiplier:          pc.EffectiveMultiplier(),
		Tags:                iv.Tags,
		Project:             pc.ProjectValue(),
		ProjectTask:         pc.ProjectTaskValue(),
		ProjectDisplay:      pc.ProjectDisplay(),
		ProjectTaskDisplay:  pc.ProjectTaskDisplay(),
		Role:                pc.Role,
		Type:                pc.EntryType(),
		Description:         description,
		ExternalComment:     pc.ExternalComment,
		AnnotationDelimiter: delimiter,
		OutputSeparator:     separator,
		RefineOverrides:     pc.RefineOverrides(),
		Absorbable:          settings.AbsorbTag != "" && iv.HasTag(settings.AbsorbTag),
		Sequence:            sequence,
	}

	return draft, pc.MergeOnEqualTags
}

// Finalize projects a draft into an immutable record, computing the billable
// duration from the draft's final raw seconds.
func Finalize(d *Draft) Record {
	return Record{
		Date:                d.Date,
		DurationMinutes:     BillableMinutes(d.RawSeconds, d.Multiplier),
		Project:             d.Project,
		ProjectTask:         d.ProjectTask,
		ProjectDisplay:      d.ProjectDisplay,
		ProjectTaskDisplay:  d.ProjectTaskDisplay,
		Role:                d.Role,
		Type:                d.Type,
		Description:         d.Description,
		ExternalComment:     d.ExternalComment,
		AnnotationDelimiter: d.AnnotationDelimiter,
		OutputSeparator:     d.OutputSeparator,
		RefineOverrides:     d.RefineOverrides,
	}
}
