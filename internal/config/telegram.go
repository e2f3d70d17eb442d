package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/hubgram/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"HUBGRAM_TELEGRAM_TOKEN,required,notEmpty"`
	// Empty means the default https://api.telegram.org
	APIURL string `env:"HUBGRAM_TELEGRAM_API_URL"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
