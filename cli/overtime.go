package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/timewext/timew-reports/csvio"
	"github.com/timewext/timew-reports/output"
	"github.com/timewext/timew-reports/overtime"
	"github.com/timewext/timew-reports/table"
)

// OvertimeCmd groups the overtime balance reports.
type OvertimeCmd struct {
	Csv     OvertimeCsvCmd     `cmd:"" help:"Export the daily overtime balance as CSV."`
	Summary OvertimeSummaryCmd `cmd:"" help:"Show the daily overtime balance as a table."`
}

// overtimeSummaries reads the input, loads and validates the work schedule,
// and builds the per-day summaries for both overtime reports.
func overtimeSummaries(globals *Globals, ctx *kong.Context) ([]overtime.DaySummary, func(), error) {
	runCtx, reportTelemetry := withTelemetry(globals, ctx.Stderr)

	header, entries, err := readInput(runCtx, os.Stdin)
	if err != nil {
		return nil, reportTelemetry, err
	}

	config := overtime.LoadConfig()
	if err := config.Validate(); err != nil {
		printError(ctx.Stderr, err.Error())
		return nil, reportTelemetry, NewCommandError(1)
	}

	startDate, endDate := header.RangeDates()
	return overtime.BuildSummaries(entries, config, startDate, endDate), reportTelemetry, nil
}

// overtimeDayCells renders the shared From/To/Pause/Expected/Actual/Overtime
// cells of a day summary.
func overtimeDayCells(day overtime.DaySummary) (from, to, pause, expected, actual, balance string) {
	if day.FromSecondOfDay != nil {
		from = overtime.FormatClock(*day.FromSecondOfDay)
	}
	if day.ToSecondOfDay != nil {
		to = overtime.FormatClock(*day.ToSecondOfDay)
	}
	if day.PauseSeconds != nil {
		pause = overtime.FormatDuration(*day.PauseSeconds)
	}
	expected = overtime.FormatDuration(day.ExpectedSeconds)
	actual = overtime.FormatDuration(day.ActualSeconds)
	balance = overtime.FormatSignedDuration(day.OvertimeSeconds)
	return
}

// OvertimeCsvCmd writes one CSV row per day, last row without a trailing
// newline.
type OvertimeCsvCmd struct{}

func (cmd *OvertimeCsvCmd) Run(ctx *kong.Context, globals *Globals) error {
	days, reportTelemetry, err := overtimeSummaries(globals, ctx)
	defer reportTelemetry()
	if err != nil {
		return err
	}

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	header := []string{"Date", "From", "To", "Pause", "Expected", "Actual", "Overtime"}
	_, _ = fmt.Fprintln(w, csvio.Row(header))

	for i, day := range days {
		from, to, pause, expected, actual, balance := overtimeDayCells(day)
		row := []string{day.Date.Format("2006-01-02"), from, to, pause, expected, actual, balance}
		if i == len(days)-1 {
			_, _ = fmt.Fprint(w, csvio.Row(row))
		} else {
			_, _ = fmt.Fprintln(w, csvio.Row(row))
		}
	}

	return nil
}

// OvertimeSummaryCmd renders a weekly grouped table with colored balances.
type OvertimeSummaryCmd struct{}

func (cmd *OvertimeSummaryCmd) Run(ctx *kong.Context, globals *Globals) error {
	days, reportTelemetry, err := overtimeSummaries(globals, ctx)
	defer reportTelemetry()
	if err != nil {
		return err
	}

	headers := []string{"Wk", "Date", "Day", "From", "To", "Pause", "Expected", "Actual", "Overtime", "Total"}
	columns := make([]table.ColumnSpec, len(headers))
	for i := range columns {
		align := table.AlignRight
		if i < 3 {
			align = table.AlignLeft
		}
		columns[i] = table.ColumnSpec{Align: align}
	}

	w := bufio.NewWriter(ctx.Stdout)
	defer w.Flush()

	renderer := table.NewRenderer(w)
	styles := renderer.Styles()

	if len(days) == 0 {
		widths, _ := table.ComputeWidths(nil, headers, columns, 0, nil)
		renderer.RenderHeader(headers, widths, columns)
		return nil
	}

	rows, overtimeValues, weeklyTotals := buildOvertimeRows(days)

	var totalExpected, totalActual, totalOvertime int64
	for _, day := range days {
		totalExpected += day.ExpectedSeconds
		totalActual += day.ActualSeconds
		totalOvertime += day.OvertimeSeconds
	}
	totalRow := []string{
		"", "", "", "", "", "",
		overtime.FormatDuration(totalExpected),
		overtime.FormatDuration(totalActual),
		"",
		overtime.FormatSignedDuration(totalOvertime),
	}

	widths, _ := table.ComputeWidths(append(append([][]string{}, rows...), totalRow), headers, columns, 0, nil)
	renderer.RenderHeader(headers, widths, columns)

	signStyle := func(seconds int64) output.Style {
		if seconds < 0 {
			return styles.Negative()
		}
		if seconds > 0 {
			return styles.Positive()
		}
		return output.Style{}
	}

	cellStyle := func(rowIndex, colIndex int, _ string, _ []string, lineIndex int) output.Style {
		if lineIndex != 0 {
			return output.Style{}
		}
		switch colIndex {
		case 8:
			return signStyle(overtimeValues[rowIndex])
		case 9:
			if weeklyTotals[rowIndex] == nil {
				return output.Style{}
			}
			return signStyle(*weeklyTotals[rowIndex])
		}
		return output.Style{}
	}
	renderer.RenderRows(rows, widths, columns, table.RenderOptions{Stripe: true, CellStyle: cellStyle})

	// Overline only the columns the total row fills.
	underline := styles.Underline()
	overline := make([]string, len(widths))
	for i, width := range widths {
		spaces := strings.Repeat(" ", width)
		if totalRow[i] != "" {
			overline[i] = underline.Apply(spaces)
		} else {
			overline[i] = spaces
		}
	}
	_, _ = fmt.Fprintln(w, strings.Join(overline, " "))

	totalStyle := func(_ int, colIndex int, _ string, _ []string, lineIndex int) output.Style {
		if colIndex == 9 && lineIndex == 0 {
			return signStyle(totalOvertime)
		}
		return output.Style{}
	}
	renderer.RenderRows([][]string{totalRow}, widths, columns, table.RenderOptions{CellStyle: totalStyle})

	return nil
}

// buildOvertimeRows renders the day summaries, showing the week label on the
// first day of each week and the running weekly balance on the last.
func buildOvertimeRows(days []overtime.DaySummary) (rows [][]string, overtimeValues []int64, weeklyTotals []*int64) {
	lastWeek := ""
	var weekTotal int64

	for i, day := range days {
		weekCell := ""
		if day.WeekLabel != lastWeek {
			weekCell = day.WeekLabel
			weekTotal = 0
		}
		weekTotal += day.OvertimeSeconds

		weekEnds := i+1 == len(days) || days[i+1].WeekLabel != day.WeekLabel
		var weeklyTotal *int64
		weeklyCell := ""
		if weekEnds {
			total := weekTotal
			weeklyTotal = &total
			weeklyCell = overtime.FormatSignedDuration(total)
		}

		from, to, pause, expected, actual, balance := overtimeDayCells(day)
		rows = append(rows, []string{
			weekCell,
			day.Date.Format("2006-01-02"),
			day.WeekdayLabel,
			from,
			to,
			pause,
			expected,
			actual,
			balance,
			weeklyCell,
		})
		overtimeValues = append(overtimeValues, day.OvertimeSeconds)
		weeklyTotals = append(weeklyTotals, weeklyTotal)
		lastWeek = day.WeekLabel
	}

	return rows, overtimeValues, weeklyTotals
}
