package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sinax/internal/config"
	"sinax/internal/gateway"
	"sinax/internal/provider"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check config, Telegram and OpenAI connectivity",
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fmt.Printf("config: ok (%s)\n", resolveConfigPath())

	if err := config.RequireCredentials(cfg); err != nil {
		fmt.Printf("credentials: %v\n", err)
		return nil
	}
	fmt.Println("credentials: ok")

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	tg, err := gateway.NewTelegram(gateway.TelegramConfig{Token: cfg.Telegram.Token, Logger: logger})
	if err != nil {
		fmt.Printf("telegram: %v\n", err)
	} else {
		fmt.Printf("telegram: ok (@%s)\n", tg.BotUsername())
	}

	openai := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:  cfg.OpenAI.APIKey,
		APIBase: cfg.OpenAI.APIBase,
		Model:   cfg.OpenAI.Model,
		Logger:  logger,
	})
	if err := openai.Healthy(ctx); err != nil {
		fmt.Printf("openai: %v\n", err)
	} else {
		fmt.Printf("openai: ok (%s)\n", cfg.OpenAI.Model)
	}
	return nil
}
