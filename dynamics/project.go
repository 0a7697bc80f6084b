package dynamics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/timewext/timew-reports/refine"
	"github.com/timewext/timew-reports/tagmatch"
)

// ProjectConfig maps a set of tracking tags to the billing attributes of the
// exported record. Pointer fields distinguish "absent" from "present but
// empty", which matters for the id/display split and the description prefix.
type ProjectConfig struct {
	TimewTags []string `json:"timew_tags"`

	Project       string  `json:"project"`
	ProjectID     *string `json:"project_id"`
	ProjectTask   string  `json:"project_task"`
	ProjectTaskID *string `json:"project_task_id"`
	Role          string  `json:"role"`
	Type          string  `json:"type"`

	Multiplier        *decimal.Decimal `json:"multiplier"`
	DescriptionPrefix *string          `json:"description_prefix"`
	ExternalComment   string           `json:"external_comment"`
	MergeOnEqualTags  bool             `json:"merge_on_equal_tags"`

	AnnotationDelimiter string `json:"annotation_delimiter"`
	OutputSeparator     string `json:"annotation_output_separator"`

	RefineEnabled     *bool        `json:"llm_enabled"`
	RefineModel       *string      `json:"llm_model"`
	RefineTemperature *json.Number `json:"llm_temperature"`
	RefineTimeout     *json.Number `json:"llm_timeout"`
	RefineEndpoint    *string      `json:"llm_endpoint"`
	RefineProvider    *string      `json:"llm_provider"`
	RefineAPIKey      *string      `json:"llm_api_key"`
}

// ProjectValue returns the export value for the project column: the internal
// id when configured, otherwise the display name.
func (pc ProjectConfig) ProjectValue() string {
	if pc.ProjectID != nil {
		return *pc.ProjectID
	}
	return pc.Project
}

// ProjectTaskValue returns the export value for the task column.
func (pc ProjectConfig) ProjectTaskValue() string {
	if pc.ProjectTaskID != nil {
		return *pc.ProjectTaskID
	}
	return pc.ProjectTask
}

// ProjectDisplay returns the human-readable project name, falling back to
// the export value.
func (pc ProjectConfig) ProjectDisplay() string {
	if pc.Project != "" {
		return pc.Project
	}
	return pc.ProjectValue()
}

// ProjectTaskDisplay returns the human-readable task name.
func (pc ProjectConfig) ProjectTaskDisplay() string {
	if pc.ProjectTask != "" {
		return pc.ProjectTask
	}
	return pc.ProjectTaskValue()
}

// EntryType returns the configured entry type or the default.
func (pc ProjectConfig) EntryType() string {
	if pc.Type == "" {
		return DefaultType
	}
	return pc.Type
}

// EffectiveMultiplier returns the billing multiplier, defaulting to 1.
func (pc ProjectConfig) EffectiveMultiplier() decimal.Decimal {
	if pc.Multiplier != nil {
		return *pc.Multiplier
	}
	return decimal.NewFromInt(1)
}

// RefineOverrides collects the per-project refiner adjustments. Numeric
// fields that fail to parse are dropped rather than failing the record.
func (pc ProjectConfig) RefineOverrides() refine.Overrides {
	overrides := refine.Overrides{
		Enabled:  pc.RefineEnabled,
		Model:    pc.RefineModel,
		Endpoint: pc.RefineEndpoint,
		APIKey:   pc.RefineAPIKey,
	}
	if pc.RefineProvider != nil {
		provider := strings.ToLower(strings.TrimSpace(*pc.RefineProvider))
		overrides.Provider = &provider
	}
	if pc.RefineTemperature != nil {
		if value, err := pc.RefineTemperature.Float64(); err == nil {
			overrides.Temperature = &value
		}
	}
	if pc.RefineTimeout != nil {
		if value, err := pc.RefineTimeout.Float64(); err == nil {
			overrides.Timeout = &value
		}
	}
	return overrides
}

// LoadProjects reads the project configuration collection from a JSON file.
// Relative paths resolve against the directory of the running executable, so
// the configuration can live next to the installed extension.
func LoadProjects(path string) ([]ProjectConfig, error) {
	resolved, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read project configuration: %w", err)
	}

	var configs []ProjectConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("invalid project configuration %s: %w", resolved, err)
	}
	return configs, nil
}

func resolveConfigPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("cannot locate executable directory: %w", err)
	}
	return filepath.Join(filepath.Dir(executable), path), nil
}

// Fallback project values used when no configuration matches.
const (
	noMatchNotePrefix = "NO PROJECT FOUND FOR THESE TAGS: "
	noTagsNote        = "NO TAGS DEFINED TO THIS TIME ENTRY"
)

// Resolve returns the configuration matching the interval's tags, or a
// synthesized fallback naming the unmatched tags.
func Resolve(tags []string, configs []ProjectConfig) ProjectConfig {
	if matched, ok := tagmatch.Best(tags, configs, func(pc ProjectConfig) []string {
		return pc.TimewTags
	}); ok {
		return matched
	}

	note := noTagsNote
	if len(tags) > 0 {
		note = noMatchNotePrefix + strings.Join(tags, ", ")
	}
	return ProjectConfig{
		Project:     note,
		ProjectTask: "-",
		Role:        "-",
	}
}
