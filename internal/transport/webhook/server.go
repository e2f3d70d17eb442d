package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/go-github/v73/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandevgo/hubgram/internal/config"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
)

const shutdownTimeout = 10 * time.Second

type EventHandler interface {
	HandleEvent(ctx context.Context, ev core.Event) error
}

type AuthCompleter interface {
	CompleteAuth(ctx context.Context, cb core.AuthCallback) error
}

// Server receives GitHub webhook deliveries and OAuth redirects.
type Server struct {
	addr     string
	secret   []byte
	events   EventHandler
	auth     AuthCompleter
	state    core.StateCodec
	gatherer prometheus.Gatherer
	server   *http.Server
}

// NewServer returns a server for events. auth and state may both be nil, in
// which case the OAuth callback is not mounted.
func NewServer(
	cfg *config.HTTPConfig,
	webhookSecret string,
	events EventHandler,
	auth AuthCompleter,
	state core.StateCodec,
	gatherer prometheus.Gatherer,
) *Server {
	return &Server{
		addr:     cfg.Addr,
		secret:   []byte(webhookSecret),
		events:   events,
		auth:     auth,
		state:    state,
		gatherer: gatherer,
	}
}

// Handler builds the chi mux with all routes wired.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Post(config.WebhookPath, s.handleWebhook)
	if s.auth != nil && s.state != nil {
		r.Get(config.OAuthCallbackPath, s.handleOAuthCallback)
	}

	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("starting webhook server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An empty secret skips signature validation.
	body, err := github.ValidatePayload(r, s.secret)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("rejected webhook delivery")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	ev := core.Event{
		Type:       core.EventType(github.WebHookType(r)),
		DeliveryID: github.DeliveryID(r),
	}
	if ev.Type == "" {
		http.Error(w, "missing event type", http.StatusBadRequest)
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&ev.Payload); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	logger := log.FromCtx(ctx).With().
		Str("event", string(ev.Type)).
		Str("delivery", ev.DeliveryID).
		Logger()
	ctx = logger.WithContext(ctx)

	if err := s.events.HandleEvent(ctx, ev); err != nil {
		logger.Error().Err(err).Msg("failed to handle event")
		http.Error(w, "failed to handle event", http.StatusInternalServerError)
		return
	}

	writeText(w, http.StatusOK, "ok")
}

func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		log.FromCtx(ctx).Info().Str("error", e).Msg("github login was denied")
		writeText(w, http.StatusOK, "Login cancelled. You can close this page.")
		return
	}

	cb := core.AuthCallback{Code: q.Get("code"), State: q.Get("state")}
	userID, messageID, err := s.state.Decode(cb.State)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("rejected oauth callback")
		writeText(w, http.StatusBadRequest, "This login link is invalid or has expired.")
		return
	}
	cb.UserID, cb.MessageID = userID, messageID

	if err := s.auth.CompleteAuth(ctx, cb); err != nil {
		log.FromCtx(ctx).Error().Err(err).Int64("user_id", userID).Msg("failed to complete github login")
		writeText(w, http.StatusBadGateway, "GitHub login failed. Please try again from the bot.")
		return
	}

	writeText(w, http.StatusOK, "Logged in to GitHub. You can return to Telegram.")
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
