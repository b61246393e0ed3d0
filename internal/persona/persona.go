// Package persona resolves the system instructions sent with every
// completion request. Selection is an ordered chain of sources; the first
// one that yields non-empty text wins.
package persona

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultPersona is the built-in SINAX instruction text, used when no
// override and no remote persona are configured.
const DefaultPersona = "تو «SINAX» هستی: دستیار صنعتی/فنی. پاسخ‌ها حرفه‌ای، مختصر و عمل‌گرا باشند. " +
	"ساختار: خلاصه، فرض‌ها/داده‌ها، گام‌های راه‌حل، ایمنی/استاندارد، گام بعدی. " +
	"اعداد و واحدها را دقیق نگه دار و فرض‌های خودت را جدا از داده‌های کاربر بنویس. " +
	"If the user writes in English, answer in English with the same structure."

const remoteFetchTimeout = 10 * time.Second

// Source yields persona text, or empty when it has nothing to offer.
type Source interface {
	Name() string
	Resolve(ctx context.Context) (string, error)
}

// Static returns fixed text.
type Static string

func (Static) Name() string { return "static" }

func (s Static) Resolve(context.Context) (string, error) { return string(s), nil }

// Remote fetches persona text over HTTP GET with a bounded timeout.
type Remote struct {
	URL    string
	Client *http.Client
}

func (Remote) Name() string { return "remote" }

func (r Remote) Resolve(ctx context.Context) (string, error) {
	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: remoteFetchTimeout}
	}
	ctx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", fmt.Errorf("persona request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("persona fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("persona fetch: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("persona read: %w", err)
	}
	return string(body), nil
}

// Resolver evaluates sources in order and caches nothing itself; callers
// resolve once at startup and treat the result as immutable configuration.
type Resolver struct {
	sources []Source
	logger  *slog.Logger
}

type ResolverConfig struct {
	Override string // explicit config override, highest priority
	URL      string // optional remote persona location
	Client   *http.Client
	Logger   *slog.Logger
}

func NewResolver(cfg ResolverConfig) *Resolver {
	var sources []Source
	if strings.TrimSpace(cfg.Override) != "" {
		sources = append(sources, Static(cfg.Override))
	}
	if cfg.URL != "" {
		sources = append(sources, Remote{URL: cfg.URL, Client: cfg.Client})
	}
	sources = append(sources, Static(DefaultPersona))

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{sources: sources, logger: logger}
}

// Resolve walks the source chain. Source failures are swallowed and logged;
// the built-in default guarantees a non-empty result.
func (r *Resolver) Resolve(ctx context.Context) string {
	for _, src := range r.sources {
		text, err := src.Resolve(ctx)
		if err != nil {
			r.logger.Debug("persona source failed", "source", src.Name(), "err", err)
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			r.logger.Info("persona resolved", "source", src.Name(), "len", len(trimmed))
			return trimmed
		}
	}
	return DefaultPersona
}
