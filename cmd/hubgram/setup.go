package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sandevgo/hubgram/internal/config"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/internal/providers/github"
	"github.com/sandevgo/hubgram/internal/service/command"
	ghsvc "github.com/sandevgo/hubgram/internal/service/github"
	"github.com/sandevgo/hubgram/internal/service/menu"
	"github.com/sandevgo/hubgram/internal/storage/sqlite"
	"github.com/sandevgo/hubgram/internal/transport/telegram"
	"github.com/sandevgo/hubgram/internal/transport/webhook"
	"github.com/sandevgo/hubgram/pkg/conv"
	"github.com/sandevgo/hubgram/pkg/log"
	"github.com/sandevgo/hubgram/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	tgCfg := config.NewTelegramConfig(ctx)
	ghCfg := config.NewGitHubConfig(ctx)
	httpCfg := config.NewHTTPConfig(ctx)

	// 2. Storage
	db, chats, sessions, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. GitHub
	client, err := github.NewClient(ghCfg.APIURL, ghCfg.Token, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize GitHub client")
	}
	renderer := initRenderer(ctx, ghCfg, client)

	state, exchanger := initOAuth(ctx, ghCfg, httpCfg)

	// 4. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := ghsvc.NewMetrics(reg)

	// 5. Telegram
	bot, err := telegram.NewBot(ctx, tgCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	sender := bot.Sender()

	// 6. Menus
	registry := menu.NewRegistry(
		menu.NewSettings(sessions),
		menu.NewLogin(sessions, exchanger),
	)
	nav := menu.NewNavigator(registry, sessions, sender, menu.SettingsMenu)

	// 7. Event handling
	dispatcher := ghsvc.NewDispatcher(sender, appCfg.GetFanOutLimit(), metrics)
	handler := ghsvc.NewHandler(renderer, conv.NewGitHubPolicy(), chats, dispatcher, metrics)

	router := command.New(command.NewCommands(chats, sessions, client))
	bot.Register(router, nav)
	services = append(services, bot)

	// 8. Webhook server
	var auth webhook.AuthCompleter
	var codec core.StateCodec
	if exchanger != nil {
		auth = ghsvc.NewAuthFlow(exchanger, sessions, nav, []string{menu.SettingsMenu, menu.LoginMenu}, metrics)
		codec = state
	}
	server := webhook.NewServer(httpCfg, ghCfg.WebhookSecret, handler, auth, codec, reg)
	services = append(services, server)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, *sqlite.ChatsRepo, *sqlite.SessionsRepo, error) {
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, nil, err
	}
	return db, sqlite.NewChatsRepo(db), sqlite.NewSessionsRepo(db), nil
}

func initRenderer(ctx context.Context, cfg *config.GitHubConfig, client *github.Client) core.MarkdownRenderer {
	if cfg.RenderMode == config.RenderModeLocal {
		log.FromCtx(ctx).Info().Msg("rendering markdown locally")
		return github.NewLocalRenderer()
	}
	if cfg.Token == "" {
		log.FromCtx(ctx).Warn().Msg("HUBGRAM_GITHUB_TOKEN is not set, markdown API calls are rate limited")
	}
	return client
}

// initOAuth returns a nil exchanger when login is not configured.
func initOAuth(ctx context.Context, ghCfg *config.GitHubConfig, httpCfg *config.HTTPConfig) (core.StateCodec, core.TokenExchanger) {
	logger := log.FromCtx(ctx)

	if !ghCfg.OAuthEnabled() {
		logger.Info().Msg("github oauth is not configured, login is disabled")
		return nil, nil
	}
	if httpCfg.OAuthRedirectURL() == "" {
		logger.Warn().Msg("HUBGRAM_PUBLIC_URL is not set, login is disabled")
		return nil, nil
	}

	state, err := github.NewStateCodec(ghCfg.GetStateSecret())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize oauth state")
	}

	return state, github.NewOAuth(github.OAuthOptions{
		ClientID:     ghCfg.ClientID,
		ClientSecret: ghCfg.ClientSecret,
		RedirectURL:  httpCfg.OAuthRedirectURL(),
		Scopes:       ghCfg.Scopes,
	}, state)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
