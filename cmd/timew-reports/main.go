package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/timewext/timew-reports/cli"
)

var root struct {
	Version kong.VersionFlag `help:"Show version information"`

	cli.Commands
}

func main() {
	// Optional .env next to the working directory, so report settings can
	// live alongside the Timewarrior extension scripts.
	_ = godotenv.Load()

	ctx := kong.Parse(&root,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("timew-reports"),
		kong.Description("Timewarrior report extensions for payroll, Zoho and overtime exports."),
		kong.UsageOnError(),
		kong.Bind(&root.Globals),
	)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if root.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	err := ctx.Run()

	var cmdErr *cli.CommandError
	if errors.As(err, &cmdErr) {
		os.Exit(cmdErr.ExitCode())
	}
	ctx.FatalIfErrorf(err)
}

func buildVersion() string {
	if cli.Version == "" {
		cli.Version = "dev"
	}
	if cli.CommitSHA == "" {
		return cli.Version
	}
	return fmt.Sprintf("%s (%s)", cli.Version, cli.CommitSHA)
}
