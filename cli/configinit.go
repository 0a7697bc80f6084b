package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// ConfigCmd groups configuration file management.
type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a sample project configuration file."`
}

// ConfigInitCmd writes a starter project configuration. An existing file is
// only replaced after an interactive confirmation.
type ConfigInitCmd struct {
	Path string `help:"Destination path for the configuration file." arg:"" optional:"" default:".dynamics_config.json"`
}

const sampleProjectConfig = `[
  {
    "timew_tags": ["acme", "dev"],
    "project": "ACME Development",
    "project_id": "PRJ-1001",
    "project_task": "Implementation",
    "project_task_id": "TSK-2001",
    "role": "Developer",
    "type": "Work",
    "multiplier": 1.0,
    "merge_on_equal_tags": true
  },
  {
    "timew_tags": ["acme", "meeting"],
    "project": "ACME Development",
    "project_task": "Meetings",
    "role": "Developer",
    "description_prefix": "Meeting",
    "external_comment": "Weekly sync",
    "annotation_delimiter": "; ",
    "annotation_output_separator": "\n"
  },
  {
    "timew_tags": [],
    "project": "Internal",
    "project_task": "Administration",
    "role": "Developer",
    "multiplier": 0.5
  }
]
`

func (cmd *ConfigInitCmd) Run(ctx *kong.Context, globals *Globals) error {
	if _, err := os.Stat(cmd.Path); err == nil {
		confirm, err := promptYesNo(fmt.Sprintf("Overwrite %s?", cmd.Path))
		if err != nil {
			return err
		}
		if !confirm {
			printInfof(ctx.Stdout, "Left %s untouched", cmd.Path)
			return nil
		}
	}

	if err := os.WriteFile(cmd.Path, []byte(sampleProjectConfig), 0o644); err != nil {
		printError(ctx.Stderr, fmt.Sprintf("failed to write %s: %v", cmd.Path, err))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("Wrote %s", cmd.Path))
	return nil
}
