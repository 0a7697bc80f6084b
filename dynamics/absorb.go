package dynamics

import (
	"sort"

	"golang.org/x/exp/slices"
)

// DayReport summarizes one day of absorption for diagnostic output.
type DayReport struct {
	Date string

	// SlackSeconds is the rounding headroom harvested from the day's
	// non-absorbable drafts.
	SlackSeconds int64

	// AdminRawSeconds is the absorbable time tracked that day before
	// absorption.
	AdminRawSeconds int64

	// AbsorbedSeconds is how much of the absorbable time the slack covered.
	AbsorbedSeconds int64

	// Leftover values describe absorbable time the slack could not cover.
	LeftoverRawSeconds      int64
	LeftoverExportedMinutes int64
}

// Absorb reduces absorbable drafts by the rounding slack of the other drafts
// on the same day. Each day is processed independently: the slack available
// is the sum of the 15-minute rounding headroom of the day's non-absorbable
// drafts, and it is consumed by the absorbable drafts in tracking order.
// Drafts fully absorbed are dropped. The returned drafts are restored to
// global tracking order.
func Absorb(drafts []*Draft, absorbTag string) ([]*Draft, []DayReport) {
	byDay := make(map[string][]*Draft)
	for _, draft := range drafts {
		byDay[draft.Date] = append(byDay[draft.Date], draft)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	updated := make([]*Draft, 0, len(drafts))
	var reports []DayReport

	for _, day := range days {
		dayDrafts := byDay[day]
		slices.SortStableFunc(dayDrafts, func(a, b *Draft) int {
			return a.Sequence - b.Sequence
		})

		var admin, work []*Draft
		for _, draft := range dayDrafts {
			if draft.Absorbable && draft.HasTag(absorbTag) {
				admin = append(admin, draft)
			} else {
				work = append(work, draft)
			}
		}

		if len(admin) == 0 {
			updated = append(updated, dayDrafts...)
			continue
		}

		var slackSeconds, adminRawSeconds int64
		for _, draft := range work {
			slackSeconds += SlackSeconds(draft.RawSeconds)
		}
		for _, draft := range admin {
			adminRawSeconds += draft.RawSeconds
		}

		slackRemaining := slackSeconds
		var absorbedSeconds int64
		for _, draft := range admin {
			if slackRemaining <= 0 {
				break
			}
			reduceBy := min(draft.RawSeconds, slackRemaining)
			draft.RawSeconds -= reduceBy
			slackRemaining -= reduceBy
			absorbedSeconds += reduceBy
		}

		var leftoverRaw, leftoverMinutes int64
		adminLeft := admin[:0]
		for _, draft := range admin {
			if draft.RawSeconds <= 0 {
				continue
			}
			adminLeft = append(adminLeft, draft)
			leftoverRaw += draft.RawSeconds
			leftoverMinutes += BillableMinutes(draft.RawSeconds, draft.Multiplier)
		}

		reports = append(reports, DayReport{
			Date:                    day,
			SlackSeconds:            slackSeconds,
			AdminRawSeconds:         adminRawSeconds,
			AbsorbedSeconds:         absorbedSeconds,
			LeftoverRawSeconds:      leftoverRaw,
			LeftoverExportedMinutes: leftoverMinutes,
		})

		updated = append(updated, work...)
		updated = append(updated, adminLeft...)
	}

	slices.SortStableFunc(updated, func(a, b *Draft) int {
		return a.Sequence - b.Sequence
	})
	return updated, reports
}
