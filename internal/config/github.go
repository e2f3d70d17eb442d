package config

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/hubgram/pkg/log"
)

const (
	RenderModeAPI   = "api"
	RenderModeLocal = "local"
)

type GitHubConfig struct {
	ClientID      string `env:"HUBGRAM_GITHUB_CLIENT_ID"`
	ClientSecret  string `env:"HUBGRAM_GITHUB_CLIENT_SECRET"`
	WebhookSecret string `env:"HUBGRAM_GITHUB_WEBHOOK_SECRET"`
	// Token used for the markdown API. Unauthenticated calls are rate limited.
	Token      string `env:"HUBGRAM_GITHUB_TOKEN"`
	APIURL     string `env:"HUBGRAM_GITHUB_API_URL" envDefault:"https://api.github.com/"`
	RenderMode string `env:"HUBGRAM_GITHUB_RENDER_MODE" envDefault:"api"`
	// HMAC key for OAuth state tokens
	StateSecret string   `env:"HUBGRAM_STATE_SECRET"`
	Scopes      []string `env:"HUBGRAM_GITHUB_SCOPES" envDefault:"repo" envSeparator:","`
}

func NewGitHubConfig(ctx context.Context) *GitHubConfig {
	c := &GitHubConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse GitHub config")
	}
	if !strings.HasSuffix(c.APIURL, "/") {
		c.APIURL += "/"
	}
	return c
}

func (c GitHubConfig) OAuthEnabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// GetStateSecret falls back to the client secret so a minimal setup still
// signs its state tokens.
func (c GitHubConfig) GetStateSecret() string {
	if c.StateSecret != "" {
		return c.StateSecret
	}
	return c.ClientSecret
}
