package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/timewext/timew-reports/csvio"
	"github.com/timewext/timew-reports/dynamics"
	"github.com/timewext/timew-reports/output"
	"github.com/timewext/timew-reports/refine"
	"github.com/timewext/timew-reports/table"
	"github.com/timewext/timew-reports/telemetry"
)

// DynamicsCmd groups the payroll export reports.
type DynamicsCmd struct {
	Csv     DynamicsCsvCmd     `cmd:"" help:"Export time entries as import-ready CSV."`
	Summary DynamicsSummaryCmd `cmd:"" help:"Show time entries as a table."`
}

var dynamicsCSVHeader = []string{
	"Date",
	"Duration",
	"Project",
	"Project Task",
	"Role",
	"Type",
	"Description",
	"External Comments",
}

// DynamicsCsvCmd writes the import CSV: merge on internal id values, format
// settings participate in merge slots, and the last row carries no trailing
// newline.
type DynamicsCsvCmd struct{}

func (cmd *DynamicsCsvCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)
	defer reportTelemetry()

	header, entries, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return err
	}

	settings := dynamics.ResolveSettings(header)
	configs, err := dynamics.LoadProjects(settings.ConfigFile)
	if err != nil {
		return err
	}

	buildTimer := telemetry.FromContext(runCtx).Start("build records")
	records, dayReports := dynamics.BuildRecords(entries, configs, settings, dynamics.MergeOptions{
		IncludeFormat: true,
	})
	buildTimer.End()
	logAbsorption(dayReports)

	refineRecords(runCtx, records, settings.Refine)

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	_, _ = fmt.Fprintln(w, csvio.Row(dynamicsCSVHeader))
	for i, record := range records {
		row := record.CSVRow()
		row[6] = dynamics.SanitizeDescription(row[6], record.AnnotationDelimiter, record.OutputSeparator)
		if i == len(records)-1 {
			_, _ = fmt.Fprint(w, csvio.Row(row))
		} else {
			_, _ = fmt.Fprintln(w, csvio.Row(row))
		}
	}

	return nil
}

// refineRecords runs the descriptions through the configured refiner. With
// refinement disabled this is a no-op.
func refineRecords(ctx context.Context, records []dynamics.Record, settings refine.Settings) {
	refiner := refine.New(settings)
	if _, ok := refiner.(refine.Noop); ok {
		return
	}

	timer := telemetry.FromContext(ctx).Start("refine descriptions")
	defer timer.End()

	for i := range records {
		record := &records[i]
		record.Description = refiner.Refine(
			record.Description,
			record.AnnotationDelimiter,
			record.OutputSeparator,
			map[string]string{
				"date":         record.Date,
				"project":      record.Project,
				"project_task": record.ProjectTask,
				"role":         record.Role,
				"type":         record.Type,
			},
			record.RefineOverrides,
		)
	}
}

func logAbsorption(reports []dynamics.DayReport) {
	for _, report := range reports {
		log.Debug().
			Str("date", report.Date).
			Int64("slack_seconds", report.SlackSeconds).
			Int64("admin_raw_seconds", report.AdminRawSeconds).
			Int64("absorbed_seconds", report.AbsorbedSeconds).
			Int64("leftover_raw_seconds", report.LeftoverRawSeconds).
			Int64("leftover_minutes", report.LeftoverExportedMinutes).
			Msg("absorbed into day slack")
	}
}

// DynamicsSummaryCmd renders the records as a striped table: merge on
// display values, format settings excluded from merge slots, and the table
// output separator as the fallback.
type DynamicsSummaryCmd struct{}

func (cmd *DynamicsSummaryCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)
	defer reportTelemetry()

	header, entries, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return err
	}

	settings := dynamics.ResolveSettings(header)
	settings.SeparatorFallback = dynamics.TableOutputSeparator
	configs, err := dynamics.LoadProjects(settings.ConfigFile)
	if err != nil {
		return err
	}

	records, dayReports := dynamics.BuildRecords(entries, configs, settings, dynamics.MergeOptions{
		OnDisplayValues: true,
	})
	logAbsorption(dayReports)

	headers := []string{"Date", "Project", "Project Task", "Role", "Type", "Description", "External Comments", "Duration"}
	columns := make([]table.ColumnSpec, len(headers))
	for i := range columns {
		columns[i] = table.ColumnSpec{Align: table.AlignLeft}
	}
	columns[len(columns)-1].Align = table.AlignRight

	rows, masterIndexes, totalMinutes := buildDynamicsTableRows(records)

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	renderer := table.NewRenderer(w)
	styles := renderer.Styles()

	rowStyle := func(rowIndex int, row []string, lineIndex int) output.Style {
		// Rows missing a description get the highlight instead of the
		// stripe, but only on the primary line carrying the duration.
		if row[5] == "" && row[7] != "" {
			return styles.MissingAnnotation()
		}
		if masterIndexes[rowIndex]%2 == 1 {
			return styles.Stripe()
		}
		return output.Style{}
	}

	widths, _ := table.ComputeWidths(rows, headers, columns, 0, nil)
	renderer.RenderHeader(headers, widths, columns)
	renderer.RenderRows(rows, widths, columns, table.RenderOptions{RowStyle: rowStyle})

	printRightAlignedTotal(w, styles, widths, fmt.Sprintf("%d:%02d:00", totalMinutes/60, totalMinutes%60))

	return nil
}

// buildDynamicsTableRows flattens the records into physical table rows. A
// record with a multi-line description or external comment spans several
// rows; only the first carries the date and duration. The returned indexes
// map each physical row to its record ordinal, for record-level striping.
func buildDynamicsTableRows(records []dynamics.Record) (rows [][]string, masterIndexes []int, totalMinutes int64) {
	for recordIndex, record := range records {
		totalMinutes += record.DurationMinutes

		display := dynamics.SanitizeDescription(record.Description, record.AnnotationDelimiter, record.OutputSeparator)
		descriptionLines := strings.Split(display, record.OutputSeparator)
		externalLines := []string{""}
		if record.ExternalComment != "" {
			externalLines = strings.Split(record.ExternalComment, "\n")
		}

		maxLines := max(len(descriptionLines), len(externalLines))
		for lineIndex := 0; lineIndex < maxLines; lineIndex++ {
			row := make([]string, 8)
			if lineIndex == 0 {
				row[0] = record.Date
				row[1] = truncateCell(record.ProjectDisplay)
				row[2] = truncateCell(record.ProjectTaskDisplay)
				row[3] = record.Role
				row[4] = record.Type
				row[7] = record.FormattedDuration()
			}
			if lineIndex < len(descriptionLines) {
				row[5] = descriptionLines[lineIndex]
			}
			if lineIndex < len(externalLines) {
				row[6] = externalLines[lineIndex]
			}
			rows = append(rows, row)
			masterIndexes = append(masterIndexes, recordIndex)
		}
	}
	return rows, masterIndexes, totalMinutes
}

// truncateCell limits wide project and task names so the table stays
// readable.
func truncateCell(value string) string {
	const maxWidth = 32
	if runewidth.StringWidth(value) <= maxWidth {
		return value
	}
	return runewidth.Truncate(value, maxWidth, "…")
}
