package config

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/hubgram/pkg/log"
)

type HTTPConfig struct {
	Addr string `env:"HUBGRAM_HTTP_ADDR" envDefault:":8080"`
	// Externally reachable base URL, used for the OAuth redirect
	PublicURL string `env:"HUBGRAM_PUBLIC_URL"`
}

func NewHTTPConfig(ctx context.Context) *HTTPConfig {
	c := &HTTPConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse HTTP config")
	}
	c.PublicURL = strings.TrimSuffix(c.PublicURL, "/")
	return c
}

func (c HTTPConfig) OAuthRedirectURL() string {
	if c.PublicURL == "" {
		return ""
	}
	return c.PublicURL + OAuthCallbackPath
}

const (
	WebhookPath       = "/github/webhook"
	OAuthCallbackPath = "/github/oauth/callback"
)
