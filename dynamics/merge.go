package dynamics

import "strings"

// MergeOptions select which draft fields participate in slot equality.
type MergeOptions struct {
	// OnDisplayValues compares project and task by display name instead of
	// the internal export value. Tabular reports group by what the reader
	// sees; CSV exports group by the imported identifier.
	OnDisplayValues bool

	// IncludeFormat additionally requires equal annotation delimiter and
	// output separator, so merged descriptions stay renderable.
	IncludeFormat bool
}

// MergeInto inserts a new draft into the accumulating list, folding it into
// the first eligible slot or appending a new one. Existing drafts are
// scanned in list order and the first applicable rule wins:
//
//  1. identical descriptions: sum the time, keep the description;
//  2. the new draft's project enables merge-on-equal-tags and the combined
//     description stays within the length cap: sum and join deduplicated;
//  3. both descriptions share the same title (the part before the first
//     delimiter) within the length cap: sum and append the new draft's
//     non-title items, deduplicated.
func MergeInto(drafts []*Draft, draft *Draft, mergeOnEqualTags bool, opts MergeOptions) []*Draft {
	for _, existing := range drafts {
		if !sameSlot(existing, draft, opts) {
			continue
		}

		delimiter := existing.AnnotationDelimiter

		if existing.Description == draft.Description {
			existing.RawSeconds += draft.RawSeconds
			return drafts
		}

		withinCap := len(existing.Description)+len(draft.Description) <= MaxDescriptionLength

		if mergeOnEqualTags && withinCap {
			existing.RawSeconds += draft.RawSeconds
			existing.Description = MergeAnnotations(existing.Description, draft.Description, delimiter)
			return drafts
		}

		existingTitle, _, _ := strings.Cut(existing.Description, delimiter)
		newTitle, remainder, _ := strings.Cut(draft.Description, delimiter)

		if existingTitle == newTitle && withinCap {
			existing.RawSeconds += draft.RawSeconds
			existing.Description = MergeAnnotations(existing.Description, remainder, delimiter)
			return drafts
		}
	}

	return append(drafts, draft)
}

func sameSlot(existing, draft *Draft, opts MergeOptions) bool {
	existingProject, existingTask := existing.Project, existing.ProjectTask
	draftProject, draftTask := draft.Project, draft.ProjectTask
	if opts.OnDisplayValues {
		existingProject, existingTask = existing.ProjectDisplay, existing.ProjectTaskDisplay
		draftProject, draftTask = draft.ProjectDisplay, draft.ProjectTaskDisplay
	}

	if existing.Date != draft.Date ||
		existingProject != draftProject ||
		existingTask != draftTask ||
		existing.Role != draft.Role ||
		existing.Type != draft.Type ||
		!existing.Multiplier.Equal(draft.Multiplier) ||
		existing.Absorbable != draft.Absorbable {
		return false
	}

	if opts.IncludeFormat {
		return existing.AnnotationDelimiter == draft.AnnotationDelimiter &&
			existing.OutputSeparator == draft.OutputSeparator
	}
	return true
}

// JoinUnique joins items with the delimiter, dropping duplicates while
// keeping first-seen order.
func JoinUnique(items []string, delimiter string) string {
	var unique []string
	for _, item := range items {
		seen := false
		for _, existing := range unique {
			if existing == item {
				seen = true
				break
			}
		}
		if !seen {
			unique = append(unique, item)
		}
	}
	return strings.Join(unique, delimiter)
}

// MergeAnnotations joins two delimiter-separated strings and removes
// duplicate segments. The operation is idempotent: merging a deduplicated
// string with its own segments leaves it unchanged.
func MergeAnnotations(existing, addition, delimiter string) string {
	merged := existing + delimiter + addition
	return JoinUnique(strings.Split(merged, delimiter), delimiter)
}

// SanitizeDescription strips hidden "++...++" segments and joins the
// remaining segments with the output separator for display or export.
func SanitizeDescription(text, delimiter, separator string) string {
	if delimiter == "" {
		return text
	}
	parts := strings.Split(text, delimiter)
	visible := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, "++") && strings.HasSuffix(part, "++") {
			continue
		}
		visible = append(visible, part)
	}
	return strings.Join(visible, separator)
}
