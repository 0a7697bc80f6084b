package dynamics

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/timewext/timew-reports/refine"
	"github.com/timewext/timew-reports/timew"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "TIMEWARRIOR_REPORTS_DYNAMICS_CONFIG_FILE", EnvKey(ConfigFileKey))
	assert.Equal(t, "TIMEWARRIOR_REPORTS_DYNAMICS_LLM_ENABLED", EnvKey(RefineEnabledKey))
}

func TestResolveSettingsDefaults(t *testing.T) {
	settings := ResolveSettings(timew.Header{})

	assert.Equal(t, DefaultConfigFilename, settings.ConfigFile)
	assert.Zero(t, settings.AnnotationDelimiterOverride)
	assert.Zero(t, settings.OutputSeparatorOverride)
	assert.Equal(t, "", settings.AbsorbTag)
	assert.Equal(t, 0, len(settings.ExcludeTags))
}

func TestResolveSettingsValuePrecedence(t *testing.T) {
	header := timew.Header{ConfigFileKey: "header.json"}

	t.Run("header beats default", func(t *testing.T) {
		assert.Equal(t, "header.json", ResolveSettings(header).ConfigFile)
	})

	t.Run("env beats header", func(t *testing.T) {
		t.Setenv(EnvKey(ConfigFileKey), "env.json")
		assert.Equal(t, "env.json", ResolveSettings(header).ConfigFile)
	})
}

func TestResolveSettingsOverridePrecedence(t *testing.T) {
	t.Run("unset stays nil", func(t *testing.T) {
		assert.Zero(t, ResolveSettings(timew.Header{}).AnnotationDelimiterOverride)
	})

	t.Run("header sets the override", func(t *testing.T) {
		header := timew.Header{AnnotationDelimiterKey: "/"}
		got := ResolveSettings(header).AnnotationDelimiterOverride
		assert.NotZero(t, got)
		assert.Equal(t, "/", *got)
	})

	t.Run("env beats header", func(t *testing.T) {
		t.Setenv(EnvKey(AnnotationDelimiterKey), " | ")
		header := timew.Header{AnnotationDelimiterKey: "/"}
		got := ResolveSettings(header).AnnotationDelimiterOverride
		assert.NotZero(t, got)
		assert.Equal(t, "|", *got)
	})
}

func TestResolveSettingsExcludeTags(t *testing.T) {
	header := timew.Header{ExcludeTagsKey: "pause, lunch ,,private"}
	settings := ResolveSettings(header)

	assert.Equal(t, 3, len(settings.ExcludeTags))
	_, ok := settings.ExcludeTags["lunch"]
	assert.True(t, ok)
}

func TestResolveSettingsAbsorbTag(t *testing.T) {
	header := timew.Header{AbsorbTagKey: "  admin  "}
	assert.Equal(t, "admin", ResolveSettings(header).AbsorbTag)
}

func TestResolveSettingsRefineDefaults(t *testing.T) {
	t.Run("disabled with ollama defaults", func(t *testing.T) {
		settings := ResolveSettings(timew.Header{}).Refine
		assert.False(t, settings.Enabled)
		assert.Equal(t, refine.ProviderOllama, settings.Provider)
		assert.Equal(t, refine.DefaultOllamaEndpoint, settings.Endpoint)
		assert.Equal(t, refine.DefaultOllamaModel, settings.Model)
		assert.Equal(t, refine.DefaultTemperature, settings.Temperature)
		assert.Equal(t, refine.DefaultTimeout, settings.Timeout)
	})

	t.Run("openai provider defaults", func(t *testing.T) {
		header := timew.Header{
			RefineEnabledKey:  "true",
			RefineProviderKey: "OpenAI",
			RefineAPIKeyKey:   "sk-test",
		}
		settings := ResolveSettings(header).Refine
		assert.True(t, settings.Enabled)
		assert.Equal(t, refine.ProviderOpenAI, settings.Provider)
		assert.Equal(t, refine.DefaultOpenAIEndpoint, settings.Endpoint)
		assert.Equal(t, refine.DefaultOpenAIModel, settings.Model)
		assert.Equal(t, "sk-test", settings.APIKey)
	})

	t.Run("unknown provider falls back to ollama", func(t *testing.T) {
		header := timew.Header{RefineProviderKey: "claude"}
		assert.Equal(t, refine.ProviderOllama, ResolveSettings(header).Refine.Provider)
	})

	t.Run("custom temperature and timeout", func(t *testing.T) {
		header := timew.Header{
			RefineTemperatureKey: "0.7",
			RefineTimeoutKey:     "5",
		}
		settings := ResolveSettings(header).Refine
		assert.Equal(t, 0.7, settings.Temperature)
		assert.Equal(t, 5*time.Second, settings.Timeout)
	})

	t.Run("unparseable values keep defaults", func(t *testing.T) {
		header := timew.Header{
			RefineTemperatureKey: "warm",
			RefineTimeoutKey:     "soon",
		}
		settings := ResolveSettings(header).Refine
		assert.Equal(t, refine.DefaultTemperature, settings.Temperature)
		assert.Equal(t, refine.DefaultTimeout, settings.Timeout)
	})
}
