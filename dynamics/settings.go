// Package dynamics turns tracked intervals into billing records: it resolves
// a project configuration per interval from its tags, computes billable
// durations under 15-minute rounding, merges compatible records, and can
// absorb a designated category into the rounding slack of the rest of the
// same day.
package dynamics

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/timewext/timew-reports/refine"
	"github.com/timewext/timew-reports/timew"
)

// Built-in defaults for the report settings.
const (
	DefaultAnnotationDelimiter = "; "
	DefaultOutputSeparator     = "\n"

	// TableOutputSeparator is the output separator default of the tabular
	// view, which keeps the inner delimiter visible at line breaks.
	TableOutputSeparator = ";\n"

	DefaultConfigFilename = ".dynamics_config.json"
	DefaultType           = "Work"

	// MaxDescriptionLength caps the combined description length beyond
	// which records are no longer merged.
	MaxDescriptionLength = 500
)

// Header keys for the report settings. Each key also resolves from the
// environment as "TIMEWARRIOR_" + key uppercased with dots replaced by
// underscores.
const (
	ConfigFileKey          = "reports.dynamics.config_file"
	AnnotationDelimiterKey = "reports.dynamics.annotation_delimiter"
	OutputSeparatorKey     = "reports.dynamics.annotation_output_separator"
	ExcludeTagsKey         = "reports.dynamics.exclude_tags"
	AbsorbTagKey           = "reports.dynamics.absorb_tag"

	RefineEnabledKey     = "reports.dynamics.llm.enabled"
	RefineProviderKey    = "reports.dynamics.llm.provider"
	RefineEndpointKey    = "reports.dynamics.llm.endpoint"
	RefineModelKey       = "reports.dynamics.llm.model"
	RefineTemperatureKey = "reports.dynamics.llm.temperature"
	RefineTimeoutKey     = "reports.dynamics.llm.timeout"
	RefineAPIKeyKey      = "reports.dynamics.llm.openai_api_key"
)

const envPrefix = "TIMEWARRIOR_"

// Settings is the per-run report configuration resolved from the report
// header and the environment.
type Settings struct {
	ConfigFile string

	// Run-level overrides for the annotation delimiter and the output
	// separator. Nil means no override; per-project values apply.
	AnnotationDelimiterOverride *string
	OutputSeparatorOverride     *string

	// SeparatorFallback replaces DefaultOutputSeparator when set. The
	// tabular view uses TableOutputSeparator here.
	SeparatorFallback string

	ExcludeTags map[string]struct{}
	AbsorbTag   string

	Refine refine.Settings
}

// ResolveSettings reads the report settings from the header and the
// environment. Value-style settings resolve default < header < env;
// override-style settings resolve env first, then header, else stay unset.
func ResolveSettings(header timew.Header) Settings {
	settings := Settings{
		ConfigFile:                  resolveValue(header, ConfigFileKey, DefaultConfigFilename),
		AnnotationDelimiterOverride: resolveOverride(header, AnnotationDelimiterKey),
		OutputSeparatorOverride:     resolveOverride(header, OutputSeparatorKey),
		ExcludeTags:                 parseExcludeTags(resolveValue(header, ExcludeTagsKey, "")),
		Refine:                      resolveRefineSettings(header),
	}

	if absorb := resolveOverride(header, AbsorbTagKey); absorb != nil {
		settings.AbsorbTag = strings.TrimSpace(*absorb)
	}

	return settings
}

func resolveRefineSettings(header timew.Header) refine.Settings {
	enabled := parseBool(resolveValue(header, RefineEnabledKey, "false"))

	provider := strings.ToLower(strings.TrimSpace(resolveValue(header, RefineProviderKey, refine.ProviderOllama)))
	if provider != refine.ProviderOllama && provider != refine.ProviderOpenAI {
		provider = refine.ProviderOllama
	}

	endpoint := resolveValue(header, RefineEndpointKey, "")
	model := resolveValue(header, RefineModelKey, "")
	if provider == refine.ProviderOpenAI {
		if endpoint == "" {
			endpoint = refine.DefaultOpenAIEndpoint
		}
		if model == "" {
			model = refine.DefaultOpenAIModel
		}
	} else {
		if endpoint == "" {
			endpoint = refine.DefaultOllamaEndpoint
		}
		if model == "" {
			model = refine.DefaultOllamaModel
		}
	}

	temperature := parseFloat(resolveValue(header, RefineTemperatureKey, ""), refine.DefaultTemperature)
	timeoutSeconds := parseFloat(resolveValue(header, RefineTimeoutKey, ""), refine.DefaultTimeout.Seconds())

	return refine.Settings{
		Enabled:     enabled,
		Provider:    provider,
		Endpoint:    endpoint,
		Model:       model,
		Temperature: temperature,
		Timeout:     time.Duration(timeoutSeconds * float64(time.Second)),
		APIKey:      resolveValue(header, RefineAPIKeyKey, ""),
	}
}

// EnvKey derives the environment variable name for a dotted header key.
func EnvKey(headerKey string) string {
	return envPrefix + strings.ReplaceAll(strings.ToUpper(headerKey), ".", "_")
}

// resolveValue resolves a value-style setting: the header value replaces the
// default, and the environment replaces both.
func resolveValue(header timew.Header, key, fallback string) string {
	value := fallback
	if headerValue, ok := header.Get(key); ok {
		value = headerValue
	}
	if envValue, ok := envValueFor(key); ok {
		value = envValue
	}
	return value
}

// resolveOverride resolves an override-style setting: environment first,
// then the header, else nil.
func resolveOverride(header timew.Header, key string) *string {
	if envValue, ok := envValueFor(key); ok {
		return &envValue
	}
	if headerValue, ok := header.Get(key); ok {
		return &headerValue
	}
	return nil
}

func envValueFor(key string) (string, bool) {
	raw, ok := os.LookupEnv(EnvKey(key))
	if !ok {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func parseExcludeTags(raw string) map[string]struct{} {
	tags := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags[tag] = struct{}{}
		}
	}
	return tags
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseFloat(value string, fallback float64) float64 {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
