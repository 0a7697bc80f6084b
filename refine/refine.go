// Package refine rewrites report descriptions for clarity using a text
// generation endpoint, either a local ollama instance or the OpenAI API.
//
// Refinement is strictly best-effort: any failure (timeout, connection
// error, malformed response, a segment-count mismatch) falls back to the
// original description. Report output never depends on the endpoint being
// reachable.
package refine

import "time"

// Providers understood by the refiner.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Built-in endpoint and model defaults per provider.
const (
	DefaultOllamaEndpoint = "http://127.0.0.1:11434/api/generate"
	DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultOllamaModel    = "llama3"
	DefaultOpenAIModel    = "gpt-4o-mini"

	DefaultTemperature = 0.2
	DefaultTimeout     = 2 * time.Second
)

// Settings is the run-level refiner configuration.
type Settings struct {
	Enabled     bool
	Provider    string
	Endpoint    string
	Model       string
	Temperature float64
	Timeout     time.Duration
	APIKey      string
}

// Overrides are per-record adjustments sourced from a project
// configuration. Nil fields fall through to the run-level settings.
type Overrides struct {
	Enabled     *bool
	Provider    *string
	Endpoint    *string
	Model       *string
	Temperature *float64
	Timeout     *float64
	APIKey      *string
}

// Refiner rewrites a delimiter-separated description. Implementations must
// preserve the segment count and pass hidden "++...++" segments through
// verbatim, and must return the description unchanged on any failure.
type Refiner interface {
	Refine(description, delimiter, separator string, context map[string]string, overrides Overrides) string
}

// Noop is the disabled refiner; it returns every description unchanged.
type Noop struct{}

// Refine returns the description as-is.
func (Noop) Refine(description, _, _ string, _ map[string]string, _ Overrides) string {
	return description
}

// New returns a refiner for the given settings, or Noop when disabled.
func New(settings Settings) Refiner {
	if !settings.Enabled {
		return Noop{}
	}
	return newClient(settings)
}
