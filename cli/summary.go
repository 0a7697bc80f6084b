package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"

	"github.com/timewext/timew-reports/output"
	"github.com/timewext/timew-reports/table"
	"github.com/timewext/timew-reports/timew"
)

// SummaryCmd renders the intervals as a per-day table with week labels,
// running day totals and gap rows. Intervals crossing midnight are split at
// the day boundary, and the tag and annotation columns shrink to fit the
// terminal.
type SummaryCmd struct{}

// summaryEntry is one interval segment after day splitting, in local time.
type summaryEntry struct {
	id              int
	start           time.Time
	end             *time.Time
	tags            string
	annotationRaw   string
	annotationLines []string
}

func (e summaryEntry) duration(now time.Time) time.Duration {
	if e.end == nil {
		return now.Sub(e.start).Truncate(time.Second)
	}
	return e.end.Sub(e.start)
}

func (cmd *SummaryCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)
	defer reportTelemetry()

	header, intervals, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return err
	}

	now := time.Now().Truncate(time.Second)
	rangeStart, rangeEnd := header.ReportWindow()
	entries := splitByDay(parseSummaryEntries(intervals), rangeStart, rangeEnd, now)

	widths, constrained := summaryWidths(entries, table.TerminalWidth())
	headers := []string{"Wk", "Date", "Day", "ID", "Tags", "Annotation", "Start", "End", "Time", "Total"}
	columns := make([]table.ColumnSpec, len(headers))
	for i := range columns {
		align := table.AlignLeft
		if i >= 6 {
			align = table.AlignRight
		}
		columns[i] = table.ColumnSpec{Align: align}
	}

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	renderer := table.NewRenderer(w)
	styles := renderer.Styles()

	renderer.RenderHeader(headers, widths, columns)

	rows, meta, totalAll := buildSummaryRows(entries, widths, constrained, now)

	rowStyle := func(rowIndex int, _ []string, _ int) output.Style {
		m := meta[rowIndex]
		switch m.kind {
		case summaryGapRow:
			return styles.Gap()
		case summaryMasterRow:
			style := output.Style{}
			if m.missingAnnotation {
				style.Prefix += styles.MissingAnnotation().Prefix
			}
			if m.entryIndex%2 == 1 {
				style.Prefix += styles.Stripe().Prefix
			}
			return style
		default:
			if m.entryIndex%2 == 1 {
				return styles.Stripe()
			}
			return output.Style{}
		}
	}
	renderer.RenderRows(rows, widths, columns, table.RenderOptions{RowStyle: rowStyle})

	printRightAlignedTotal(w, styles, widths, formatHMS(totalAll))

	return nil
}

func parseSummaryEntries(intervals []timew.Interval) []summaryEntry {
	entries := make([]summaryEntry, 0, len(intervals))
	for _, interval := range intervals {
		var end *time.Time
		if interval.Ended() {
			local := interval.End.Local()
			end = &local
		}

		annotationLines := []string{"-"}
		if interval.Annotation != "" {
			annotationLines = strings.Split(strings.ReplaceAll(interval.Annotation, "; ", "\n"), "\n")
		}

		entries = append(entries, summaryEntry{
			id:              interval.ID,
			start:           interval.Start.Local(),
			end:             end,
			tags:            strings.Join(interval.Tags, ", "),
			annotationRaw:   interval.Annotation,
			annotationLines: annotationLines,
		})
	}
	return entries
}

// splitByDay clips the entries to the report range and splits them at local
// midnights. The final segment of a running entry stays open.
func splitByDay(entries []summaryEntry, rangeStart, rangeEnd *time.Time, now time.Time) []summaryEntry {
	var startDate, endDate *time.Time
	if rangeStart != nil {
		day := localDate(rangeStart.Local())
		startDate = &day
	}
	if rangeEnd != nil {
		day := localDate(rangeEnd.Local())
		endDate = &day
	}

	var split []summaryEntry
	for _, entry := range entries {
		endLocal := now
		if entry.end != nil {
			endLocal = *entry.end
		}
		if !endLocal.After(entry.start) {
			continue
		}

		lastDay := localDate(endLocal)
		for day := localDate(entry.start); !day.After(lastDay); day = day.AddDate(0, 0, 1) {
			if startDate != nil && day.Before(*startDate) {
				continue
			}
			if endDate != nil && day.After(*endDate) {
				break
			}

			dayEnd := day.AddDate(0, 0, 1)
			segmentStart := entry.start
			if day.After(segmentStart) {
				segmentStart = day
			}
			segmentEnd := endLocal
			if dayEnd.Before(segmentEnd) {
				segmentEnd = dayEnd
			}
			if !segmentEnd.After(segmentStart) {
				continue
			}

			segment := entry
			segment.start = segmentStart
			if entry.end == nil && day.Equal(lastDay) && segmentEnd.Equal(endLocal) {
				segment.end = nil
			} else {
				endCopy := segmentEnd
				segment.end = &endCopy
			}
			split = append(split, segment)
		}
	}
	return split
}

// summaryWidths computes the fixed and measured column widths, shrinking the
// tag and annotation columns to the terminal when needed.
func summaryWidths(entries []summaryEntry, terminalColumns int) ([]int, bool) {
	tagsWidth := len("Tags")
	idWidth := len("ID")
	annotationWidth := len("Annotation")

	for _, entry := range entries {
		if w := runewidth.StringWidth(entry.tags); w > tagsWidth {
			tagsWidth = w
		}
		if w := runewidth.StringWidth(fmt.Sprintf("@%d", entry.id)); w > idWidth {
			idWidth = w
		}
		if entry.annotationRaw != "" {
			for _, segment := range strings.Split(strings.ReplaceAll(entry.annotationRaw, ";", "\n"), "\n") {
				if w := runewidth.StringWidth(strings.TrimSpace(segment)); w > annotationWidth {
					annotationWidth = w
				}
			}
		}
	}

	widths := []int{3, 10, 3, idWidth, tagsWidth, annotationWidth, 8, 8, 8, 8}
	if terminalColumns == 0 || tableWidth(widths) <= terminalColumns {
		return widths, false
	}

	minWidths := make([]int, len(widths))
	copy(minWidths, widths)
	tagsLimit := terminalColumns / 4
	if tagsLimit < len("Tags") {
		tagsLimit = len("Tags")
	}
	if tagsLimit < minWidths[4] {
		minWidths[4] = tagsLimit
	}
	minWidths[5] = len("Annotation")

	return table.AllocateWidths(widths, []int{4, 5}, terminalColumns, minWidths, []int{5, 4}), true
}

type summaryRowKind int

const (
	summaryMasterRow summaryRowKind = iota
	summaryContinuationRow
	summaryGapRow
)

type summaryRowMeta struct {
	kind              summaryRowKind
	entryIndex        int
	missingAnnotation bool
}

// buildSummaryRows flattens the entries into physical rows with day labels,
// per-day totals, wrapped tag and annotation columns, and gap rows between
// non-adjacent entries of the same day.
func buildSummaryRows(entries []summaryEntry, widths []int, constrained bool, now time.Time) ([][]string, []summaryRowMeta, time.Duration) {
	var rows [][]string
	var meta []summaryRowMeta
	var totalAll, totalDay time.Duration

	for i, entry := range entries {
		var next *summaryEntry
		if i+1 < len(entries) {
			next = &entries[i+1]
		}

		isNewDay := i == 0 || !localDate(entries[i-1].start).Equal(localDate(entry.start))
		if isNewDay {
			totalDay = 0
		}

		duration := entry.duration(now)
		totalDay += duration
		totalAll += duration

		var weekLabel, dateLabel, dayLabel string
		if isNewDay {
			_, week := entry.start.ISOWeek()
			weekLabel = fmt.Sprintf("W%d", week)
			dateLabel = entry.start.Format("2006-01-02")
			dayLabel = entry.start.Format("Mon")
		}

		endLabel := "-"
		if entry.end != nil {
			endLabel = entry.end.Format("15:04:05")
		}
		totalLabel := ""
		if next == nil || localDate(next.start).After(localDate(entry.start)) {
			totalLabel = formatHMS(totalDay)
		}

		annotationLines := entry.annotationLines
		tagLines := []string{entry.tags}
		if constrained {
			annotationLines = wrapAnnotationLines(entry.annotationLines, widths[5])
			tagLines = table.WrapText(entry.tags, widths[4])
		}
		maxLines := max(len(annotationLines), len(tagLines))
		if maxLines == 0 {
			annotationLines = []string{"-"}
			tagLines = []string{""}
			maxLines = 1
		}

		missing := len(annotationLines) > 0 && annotationLines[0] == "-"

		for lineIndex := 0; lineIndex < maxLines; lineIndex++ {
			var tagLine, annotationLine string
			if lineIndex < len(tagLines) {
				tagLine = tagLines[lineIndex]
			}
			if lineIndex < len(annotationLines) {
				annotationLine = annotationLines[lineIndex]
			}

			if lineIndex == 0 {
				rows = append(rows, []string{
					weekLabel,
					dateLabel,
					dayLabel,
					fmt.Sprintf("@%d", entry.id),
					tagLine,
					annotationLine,
					entry.start.Format("15:04:05"),
					endLabel,
					formatHMS(duration),
					totalLabel,
				})
				meta = append(meta, summaryRowMeta{kind: summaryMasterRow, entryIndex: i, missingAnnotation: missing})
			} else {
				rows = append(rows, []string{"", "", "", "", tagLine, annotationLine, "", "", "", ""})
				meta = append(meta, summaryRowMeta{kind: summaryContinuationRow, entryIndex: i})
			}
		}

		if gap := gapRow(entry, next); gap != nil {
			rows = append(rows, gap)
			meta = append(meta, summaryRowMeta{kind: summaryGapRow, entryIndex: i})
		}
	}

	return rows, meta, totalAll
}

// gapRow returns a filler row for untracked time between two entries on the
// same day, or nil when the entries touch or the day changes.
func gapRow(entry summaryEntry, next *summaryEntry) []string {
	if next == nil || entry.end == nil {
		return nil
	}
	if localDate(next.start).After(localDate(entry.start)) {
		return nil
	}
	if entry.end.Equal(next.start) {
		return nil
	}

	gap := next.start.Sub(*entry.end)
	return []string{
		"", "", "",
		"-", "-", "-",
		entry.end.Format("15:04:05"),
		next.start.Format("15:04:05"),
		formatHMS(gap),
		"",
	}
}

// wrapAnnotationLines wraps each annotation line to the width, marking
// continuation chunks with a leading ellipsis.
func wrapAnnotationLines(lines []string, width int) []string {
	if width <= 0 {
		return lines
	}
	var wrapped []string
	for _, line := range lines {
		chunks := table.WrapText(line, width)
		if len(chunks) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		wrapped = append(wrapped, chunks[0])
		for _, chunk := range chunks[1:] {
			if width <= 1 {
				wrapped = append(wrapped, runewidth.Truncate(chunk, width, ""))
			} else {
				wrapped = append(wrapped, "…"+runewidth.Truncate(chunk, width-1, ""))
			}
		}
	}
	return wrapped
}

func formatHMS(d time.Duration) string {
	seconds := int64(d / time.Second)
	if seconds < 0 {
		seconds = -seconds
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

func localDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
