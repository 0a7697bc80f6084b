package dynamics

import "github.com/timewext/timew-reports/timew"

// BuildRecords runs the full pipeline: filter, resolve, merge, absorb,
// finalize. Unended intervals and intervals carrying an excluded tag are
// skipped before sequence numbers are assigned, so merge and absorption order
// follow the surviving intervals only. The day reports are empty unless an
// absorb tag is configured.
func BuildRecords(entries []timew.Interval, configs []ProjectConfig, settings Settings, opts MergeOptions) ([]Record, []DayReport) {
	var drafts []*Draft
	sequence := 0

	for _, entry := range entries {
		if !entry.Ended() {
			continue
		}
		if HasExcludedTags(entry.Tags, settings.ExcludeTags) {
			continue
		}

		projectConfig := Resolve(entry.Tags, configs)
		draft, mergeOnEqualTags := BuildDraft(entry, projectConfig, settings, sequence)
		sequence++
		drafts = MergeInto(drafts, draft, mergeOnEqualTags, opts)
	}

	var reports []DayReport
	if settings.AbsorbTag != "" {
		drafts, reports = Absorb(drafts, settings.AbsorbTag)
	}

	records := make([]Record, 0, len(drafts))
	for _, draft := range drafts {
		records = append(records, Finalize(draft))
	}
	return records, reports
}

// HasExcludedTags reports whether any of the tags is in the exclusion set.
func HasExcludedTags(tags []string, excluded map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := excluded[tag]; ok {
			return true
		}
	}
	return false
}
