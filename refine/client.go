package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const systemPrompt = "You rewrite time tracking descriptions for clarity while keeping the original meaning. " +
	"You must respond with JSON only."

// client calls a generation endpoint and caches results for the lifetime of
// the process. It is not safe for concurrent use; reports are single-pass.
type client struct {
	settings Settings
	http     *resty.Client
	cache    map[string]string
}

func newClient(settings Settings) *client {
	return &client{
		settings: settings,
		http:     resty.New(),
		cache:    make(map[string]string),
	}
}

// effective holds the per-call settings after applying record overrides.
type effective struct {
	provider    string
	endpoint    string
	model       string
	temperature float64
	timeout     time.Duration
	apiKey      string
}

func (c *client) resolve(overrides Overrides) (effective, bool) {
	eff := effective{
		provider:    c.settings.Provider,
		endpoint:    c.settings.Endpoint,
		model:       c.settings.Model,
		temperature: c.settings.Temperature,
		timeout:     c.settings.Timeout,
		apiKey:      c.settings.APIKey,
	}

	if overrides.Enabled != nil && !*overrides.Enabled {
		return eff, false
	}
	if overrides.Provider != nil {
		provider := strings.ToLower(strings.TrimSpace(*overrides.Provider))
		if provider == ProviderOllama || provider == ProviderOpenAI {
			eff.provider = provider
		}
	}
	if overrides.Endpoint != nil {
		eff.endpoint = *overrides.Endpoint
	}
	if overrides.Model != nil {
		eff.model = *overrides.Model
	}
	if overrides.Temperature != nil {
		eff.temperature = *overrides.Temperature
	}
	if overrides.Timeout != nil {
		eff.timeout = time.Duration(*overrides.Timeout * float64(time.Second))
	}
	if overrides.APIKey != nil {
		eff.apiKey = *overrides.APIKey
	}

	if eff.provider == ProviderOpenAI {
		if eff.endpoint == "" {
			eff.endpoint = DefaultOpenAIEndpoint
		}
		if eff.model == "" {
			eff.model = DefaultOpenAIModel
		}
	} else {
		if eff.endpoint == "" {
			eff.endpoint = DefaultOllamaEndpoint
		}
		if eff.model == "" {
			eff.model = DefaultOllamaModel
		}
	}

	if eff.model == "" || eff.endpoint == "" {
		return eff, false
	}
	if eff.provider == ProviderOpenAI && eff.apiKey == "" {
		return eff, false
	}
	return eff, true
}

// Refine rewrites the visible segments of the description. Hidden "++...++"
// segments never leave the process.
func (c *client) Refine(description, delimiter, separator string, reportContext map[string]string, overrides Overrides) string {
	eff, ok := c.resolve(overrides)
	if !ok {
		return description
	}

	segments := []string{description}
	if delimiter != "" {
		segments = strings.Split(description, delimiter)
	}
	if len(segments) == 0 {
		return description
	}

	hidden := make([]bool, len(segments))
	var visible []string
	for i, segment := range segments {
		if isHiddenSegment(segment) {
			hidden[i] = true
			continue
		}
		visible = append(visible, strings.TrimSpace(segment))
	}
	if len(visible) == 0 {
		return description
	}

	key := cacheKey(description, delimiter, separator, eff, reportContext, visible)
	if cached, ok := c.cache[key]; ok {
		return cached
	}

	refined, err := c.call(eff, buildPrompt(description, visible, delimiter, separator, reportContext))
	if err != nil {
		log.Debug().Err(err).Str("endpoint", eff.endpoint).Msg("description refinement failed")
		return description
	}
	if len(refined) != len(visible) {
		log.Debug().Int("want", len(visible)).Int("got", len(refined)).Msg("refinement segment count mismatch")
		return description
	}

	reconstructed := make([]string, 0, len(segments))
	next := 0
	for i, segment := range segments {
		if hidden[i] {
			reconstructed = append(reconstructed, segment)
			continue
		}
		cleaned := strings.TrimSpace(refined[next])
		next++
		if cleaned == "" {
			cleaned = strings.TrimSpace(segment)
		}
		reconstructed = append(reconstructed, cleaned)
	}

	result := reconstructed[0]
	if delimiter != "" {
		result = strings.Join(reconstructed, delimiter)
	}

	c.cache[key] = result
	return result
}

func isHiddenSegment(segment string) bool {
	return strings.HasPrefix(segment, "++") && strings.HasSuffix(segment, "++")
}

func cacheKey(description, delimiter, separator string, eff effective, reportContext map[string]string, visible []string) string {
	pairs := make([]string, 0, len(reportContext))
	for key, value := range reportContext {
		if value != "" {
			pairs = append(pairs, key+"="+value)
		}
	}
	sort.Strings(pairs)

	return strings.Join([]string{
		description,
		delimiter,
		separator,
		eff.model,
		fmt.Sprintf("%.3f", eff.temperature),
		eff.provider,
		eff.endpoint,
		strings.Join(pairs, "\x1e"),
		strings.Join(visible, "\x1e"),
	}, "\x1f")
}

func buildPrompt(description string, visible []string, delimiter, separator string, reportContext map[string]string) string {
	keys := make([]string, 0, len(reportContext))
	for key, value := range reportContext {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	contextBlock := "None"
	if len(keys) > 0 {
		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, titleCase(key)+": "+reportContext[key])
		}
		contextBlock = strings.Join(lines, "\n")
	}

	segmentsJSON, _ := json.Marshal(visible)

	delimiterLabel := delimiter
	if delimiterLabel == "" {
		delimiterLabel = "[none]"
	}

	instructions := fmt.Sprintf(
		"Rewrite each segment for clarity while keeping the original meaning. "+
			"Return a JSON array with exactly %d strings in the same order. "+
			"Do not add, remove, or reorder segments. Keep numbers, IDs, and names unchanged. "+
			"Each string must stay concise and professional. Respond with JSON only.",
		len(visible),
	)

	return fmt.Sprintf(
		"%s\n\nDelimiter: %s\nOutput separator: %s\nContext:\n%s\n\nOriginal description string:\n%s\n\nSegments JSON:\n%s\n",
		instructions, delimiterLabel, separator, contextBlock, description, segmentsJSON,
	)
}

// titleCase capitalizes the first letter of each alphabetic run, so
// "project_task" becomes "Project_Task".
func titleCase(value string) string {
	var b strings.Builder
	startOfRun := true
	for _, r := range value {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if isAlpha && startOfRun {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			startOfRun = false
		} else if !isAlpha {
			startOfRun = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *client) call(eff effective, prompt string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), eff.timeout)
	defer cancel()

	request := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json")

	var output string
	switch eff.provider {
	case ProviderOpenAI:
		var parsed openAIResponse
		response, err := request.
			SetHeader("Authorization", "Bearer "+eff.apiKey).
			SetBody(openAIRequest{
				Model: eff.model,
				Messages: []chatMessage{
					{Role: "system", Content: systemPrompt},
					{Role: "user", Content: prompt},
				},
				Temperature: eff.temperature,
			}).
			SetResult(&parsed).
			Post(eff.endpoint)
		if err != nil {
			return nil, err
		}
		if response.IsError() {
			return nil, fmt.Errorf("endpoint returned status %d", response.StatusCode())
		}
		if len(parsed.Choices) == 0 {
			return nil, fmt.Errorf("response contained no choices")
		}
		output = parsed.Choices[0].Message.Content
	default:
		var parsed ollamaResponse
		response, err := request.
			SetBody(ollamaRequest{
				Model:   eff.model,
				Prompt:  prompt,
				System:  systemPrompt,
				Stream:  false,
				Options: map[string]any{"temperature": eff.temperature},
			}).
			SetResult(&parsed).
			Post(eff.endpoint)
		if err != nil {
			return nil, err
		}
		if response.IsError() {
			return nil, fmt.Errorf("endpoint returned status %d", response.StatusCode())
		}
		output = parsed.Response
	}

	var segments []string
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &segments); err != nil {
		return nil, fmt.Errorf("model output is not a JSON string array: %w", err)
	}
	return segments, nil
}
