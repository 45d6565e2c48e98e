package config

import (
	"fmt"
	"os"
)

type Config struct {
	DBSource      string
	Port          string
	Env           string
	AuthJWTSecret string
	WebhookToken  string
	SearchBaseURL string
	SearchAPIKey  string
}

func Load() (*Config, error) {
	dbSource := os.Getenv("DB_SOURCE")
	if dbSource == "" {
		return nil, fmt.Errorf("DB_SOURCE environment variable is required")
	}

	jwtSecret := os.Getenv("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET environment variable is required")
	}

	webhookToken := os.Getenv("WEBHOOK_TOKEN")
	if webhookToken == "" {
		return nil, fmt.Errorf("WEBHOOK_TOKEN environment variable is required")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	return &Config{
		DBSource:      dbSource,
		Port:          port,
		Env:           env,
		AuthJWTSecret: jwtSecret,
		WebhookToken:  webhookToken,
		SearchBaseURL: os.Getenv("SEARCH_BASE_URL"),
		SearchAPIKey:  os.Getenv("SEARCH_API_KEY"),
	}, nil
}
