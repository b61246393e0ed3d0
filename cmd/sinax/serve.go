package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sinax/internal/config"
	"sinax/internal/gateway"
	"sinax/internal/media"
	"sinax/internal/metrics"
	"sinax/internal/persona"
	"sinax/internal/provider"
	"sinax/internal/relay"
	"sinax/internal/server"
	"sinax/internal/topic"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.RequireCredentials(cfg); err != nil {
		return err // fatal: never serve traffic without credentials
	}

	logger = newLevelLogger(cfg.General.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tg, err := gateway.NewTelegram(gateway.TelegramConfig{
		Token:  cfg.Telegram.Token,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	httpc := provider.SharedHTTPClient(0)
	openai := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		APIBase:     cfg.OpenAI.APIBase,
		Model:       cfg.OpenAI.Model,
		VisionModel: cfg.OpenAI.VisionModel,
		Client:      httpc,
		Logger:      logger,
	})
	whisper := provider.NewWhisper(provider.WhisperConfig{
		APIKey:  cfg.OpenAI.APIKey,
		APIBase: cfg.OpenAI.APIBase,
		Model:   cfg.OpenAI.TranscribeModel,
		Client:  httpc,
		Logger:  logger,
	})

	personaText := persona.NewResolver(persona.ResolverConfig{
		Override: cfg.Persona.Override,
		URL:      cfg.Persona.URL,
		Logger:   logger,
	}).Resolve(ctx)

	collector := metrics.NewCollector()

	router := relay.New(relay.Config{
		Gateway:   tg,
		Completer: openai,
		Media: media.NewPreprocessor(media.Config{
			Gateway:     tg,
			Transcriber: whisper,
			Vision:      openai,
			HTTPClient:  httpc,
			Logger:      logger,
		}),
		Topics:          topic.NewCache(cfg.Topics.Capacity),
		Persona:         personaText,
		MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
		Collector:       collector,
		Logger:          logger,
	})

	// Auto-register the webhook when a public URL is configured; the
	// maintenance endpoints remain available either way.
	if cfg.Telegram.WebhookURL != "" {
		url := strings.TrimRight(cfg.Telegram.WebhookURL, "/") + cfg.Telegram.WebhookPath
		if err := tg.RegisterWebhook(ctx, url); err != nil {
			logger.Warn("webhook auto-registration failed", "err", err)
		}
	}

	srv := server.New(server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		WebhookPath: cfg.Telegram.WebhookPath,
		WebhookURL:  cfg.Telegram.WebhookURL,
		AdminSecret: cfg.Telegram.AdminSecret,
		Handler:     router,
		Manager:     tg,
		Collector:   collector,
		Logger:      logger,
	})
	return srv.Run(ctx)
}
