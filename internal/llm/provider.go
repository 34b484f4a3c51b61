// Package llm talks to the text generation service. The rest of the module
// only sees the Generator capability so tests can substitute canned output.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Generator sends one prompt and returns the model's raw text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// HTTPDoer abstracts the HTTP client used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"

	defaultOllamaBaseURL = "http://localhost:11434"
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaModel   = "llama3"
)

type Config struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	// Bearer API key, or OAuth2 client credentials when TokenURL is set.
	APIKey       string `yaml:"api_key"`
	TokenURL     string `yaml:"token_url"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// New builds the provider named by cfg.Provider (default ollama).
func New(cfg Config) (Generator, error) {
	client := HTTPClient(cfg)
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOllama:
		return NewOllama(cfg.BaseURL, cfg.Model, cfg.Temperature, client), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.Model, cfg.Temperature, client)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// HTTPClient returns a client that authenticates every request: OAuth2
// client credentials when a token URL is configured, otherwise a static
// bearer token when an API key is set.
func HTTPClient(cfg Config) *http.Client {
	var h *http.Client
	switch {
	case cfg.TokenURL != "":
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		h = cc.Client(context.Background())
	case cfg.APIKey != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
		h = oauth2.NewClient(context.Background(), ts)
	default:
		h = &http.Client{}
	}
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	return h
}
