package main

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// config holds the settings read from the environment (and .env if present).
type config struct {
	LogLevel          string `env:"LOG_LEVEL,default=INFO" validate:"required"`
	JWTSecret         string `env:"JWT_SECRET,default=dev-secret" validate:"required"`
	LLMProvider       string `env:"LLM_PROVIDER,default=openai" validate:"oneof=openai ollama"`
	LLMAPIKey         string `env:"LLM_API_KEY"`
	LLMModel          string `env:"LLM_MODEL,default=gpt-5" validate:"required"`
	LLMBaseURL        string `env:"LLM_BASE_URL,default=https://api.openai.com/v1" validate:"required,url"`
	LLMTimeoutSeconds int    `env:"LLM_TIMEOUT_SECONDS,default=30" validate:"min=1,max=600"`
}

func loadConfig() (config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var cfg config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

func (c config) gateway() gatewayConfig {
	return gatewayConfig{
		Provider: c.LLMProvider,
		APIKey:   c.LLMAPIKey,
		Model:    c.LLMModel,
		BaseURL:  c.LLMBaseURL,
		Timeout:  time.Duration(c.LLMTimeoutSeconds) * time.Second,
	}
}
