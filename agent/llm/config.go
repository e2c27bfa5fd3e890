package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/financial-document-analyzer/agent/contract"
	openrouterx "github.com/tanpawarit/financial-document-analyzer/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"gpt-4"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"120s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" split_words:"true" default:"5"`
	BreakerTimeout     time.Duration `envconfig:"BREAKER_TIMEOUT" split_words:"true" default:"30s"`
	ProbeOnStart       bool          `envconfig:"PROBE_ON_START" split_words:"true" default:"false"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("%w: llm temperature must not be negative", contractx.ErrValidation)
	}
	return nil
}

// OpenRouter maps the shared settings onto the chat model builder config.
func (c Config) OpenRouter() openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) Breaker() BreakerConfig {
	return BreakerConfig{
		Name:        "llm:" + strings.TrimSpace(c.Model),
		MaxFailures: c.BreakerMaxFailures,
		Timeout:     c.BreakerTimeout,
	}
}
