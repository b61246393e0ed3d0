// Package server hosts the HTTP surface: the Telegram webhook endpoint,
// the liveness probe, the secret-guarded webhook maintenance endpoints and
// the metrics page. Webhook responses are always 200 "ok": internal
// failures become chat messages, never HTTP errors, so the gateway never
// retries a logically-handled update.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sinax/internal/domain"
	"sinax/internal/gateway"
	"sinax/internal/metrics"
)

const maxBodyBytes = 1 << 20 // Telegram updates are small; 1MB is generous

// UpdateHandler consumes one classified update to completion.
type UpdateHandler interface {
	Handle(ctx context.Context, upd domain.Update)
}

// WebhookManager registers and deregisters this service's webhook URL with
// the messaging gateway.
type WebhookManager interface {
	RegisterWebhook(ctx context.Context, url string) error
	RemoveWebhook(ctx context.Context) error
}

type Server struct {
	host        string
	port        int
	webhookPath string
	webhookURL  string
	adminSecret string

	handler   UpdateHandler
	manager   WebhookManager
	collector *metrics.Collector
	logger    *slog.Logger

	srv *http.Server
}

type Config struct {
	Host        string
	Port        int
	WebhookPath string
	WebhookURL  string // public base URL, e.g. https://sinax.example.com
	AdminSecret string
	Handler     UpdateHandler
	Manager     WebhookManager
	Collector   *metrics.Collector
	Logger      *slog.Logger
}

func New(cfg Config) *Server {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/telegram-webhook"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Collector == nil {
		cfg.Collector = metrics.NewCollector()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Server{
		host:        cfg.Host,
		port:        cfg.Port,
		webhookPath: cfg.WebhookPath,
		webhookURL:  cfg.WebhookURL,
		adminSecret: cfg.AdminSecret,
		handler:     cfg.Handler,
		manager:     cfg.Manager,
		collector:   cfg.Collector,
		logger:      cfg.Logger,
	}
}

// Routes builds the HTTP mux. Exposed for handler tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleLiveness)
	mux.HandleFunc(s.webhookPath, s.handleWebhook)
	mux.HandleFunc("/webhook/register", s.handleRegister)
	mux.HandleFunc("/webhook/remove", s.handleRemove)
	mux.HandleFunc("/metrics", s.collector.Handler())
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("webhook server starting", "addr", s.srv.Addr, "path", s.webhookPath)

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	io.WriteString(w, "SINAX is up")
}

// handleWebhook acknowledges every delivery with 200 "ok". GET serves as a
// liveness string for gateway probes; POST bodies that don't contain a
// recognizable message are acknowledged without action so the gateway does
// not retry them forever.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer io.WriteString(w, "ok")

	if r.Method != http.MethodPost {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.logger.Warn("webhook body read failed", "err", err)
		return
	}
	defer r.Body.Close()

	var raw tgbotapi.Update
	if err := json.Unmarshal(body, &raw); err != nil {
		s.logger.Warn("webhook body is not a telegram update", "err", err)
		return
	}

	upd, ok := gateway.ParseUpdate(raw)
	if !ok {
		s.logger.Debug("webhook update carries no message, acknowledged")
		return
	}

	s.logger.Info("update received", "chat_id", upd.ChatID, "kind", upd.Kind, "text_len", len(upd.Text))
	s.handler.Handle(r.Context(), upd)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if s.webhookURL == "" {
		http.Error(w, "telegram.webhookURL is not configured", http.StatusBadRequest)
		return
	}

	url := strings.TrimRight(s.webhookURL, "/") + s.webhookPath
	if err := s.manager.RegisterWebhook(r.Context(), url); err != nil {
		s.logger.Error("webhook registration failed", "err", err)
		http.Error(w, "webhook registration failed", http.StatusBadGateway)
		return
	}
	io.WriteString(w, "webhook registered")
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := s.manager.RemoveWebhook(r.Context()); err != nil {
		s.logger.Error("webhook removal failed", "err", err)
		http.Error(w, "webhook removal failed", http.StatusBadGateway)
		return
	}
	io.WriteString(w, "webhook removed")
}

// authorized checks the shared-secret query parameter. An unset secret
// disables the maintenance endpoints entirely.
func (s *Server) authorized(r *http.Request) bool {
	if s.adminSecret == "" {
		return false
	}
	got := r.URL.Query().Get("secret")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.adminSecret)) == 1
}
