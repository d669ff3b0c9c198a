package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/founding-ai/orchestra/agent/contract"
	openrouterx "github.com/founding-ai/orchestra/pkg/openrouter"
)

// Config selects models for the agent roster. One default model serves every
// agent; the two special cases (router classification, multimodal renovation)
// are per-field overrides, not subclasses.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"google/gemini-3-pro-preview"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"4000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	IntentModel       string  `envconfig:"INTENT_MODEL" split_words:"true"`
	RenovationModel   string  `envconfig:"RENOVATION_MODEL" split_words:"true"`
	IntentTemperature float32 `envconfig:"INTENT_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contract.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contract.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model config for one agent.
func (c Config) OpenRouterFor(id contract.AgentID) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch id {
	case contract.AgentIntent:
		if v := strings.TrimSpace(c.IntentModel); v != "" {
			modelName = v
		}
		if c.IntentTemperature >= 0 {
			temp = c.IntentTemperature
		}
	case contract.AgentRenovation:
		if v := strings.TrimSpace(c.RenovationModel); v != "" {
			modelName = v
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
