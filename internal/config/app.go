package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/hubgram/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"HUBGRAM_RUNTIME_PATH" envDefault:".hubgram"`

	// Maximum number of chats a single event is sent to concurrently
	FanOutLimit int `env:"HUBGRAM_FANOUT_LIMIT" envDefault:"8"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "hubgram.db")
}

func (c AppConfig) GetFanOutLimit() int {
	if c.FanOutLimit < 1 {
		return 1
	}
	return c.FanOutLimit
}
