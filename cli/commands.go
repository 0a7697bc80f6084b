package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Debug     bool `help:"Enable debug logging on stderr." env:"TIMEWARRIOR_EXT_DEBUG"`
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Csv      CsvCmd      `cmd:"" help:"Export raw intervals as CSV."`
	Dynamics DynamicsCmd `cmd:"" help:"Dynamics time entry reports."`
	Zoho     ZohoCmd     `cmd:"" help:"Export a Zoho Projects time log CSV."`
	Overtime OvertimeCmd `cmd:"" help:"Overtime balance reports."`
	Summary  SummaryCmd  `cmd:"" help:"Per-day interval table with totals and gaps."`
	Config   ConfigCmd   `cmd:"" help:"Manage project configuration files."`
}
