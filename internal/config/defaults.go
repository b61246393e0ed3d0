package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Telegram: TelegramConfig{
			WebhookPath: "/telegram-webhook",
		},
		OpenAI: OpenAIConfig{
			APIBase:         "https://api.openai.com/v1",
			Model:           "gpt-4.1-mini",
			TranscribeModel: "whisper-1",
			MaxOutputTokens: 800,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Topics: TopicsConfig{
			Capacity: 256,
		},
	}
}
