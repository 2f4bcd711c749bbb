// Command mint-token prints a bearer token for the local API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/chatbook/internal/auth"
	"github.com/mmynk/chatbook/internal/config"
	"github.com/mmynk/chatbook/pkg/logging"
)

func main() {
	clientID := flag.String("client", "mockup", "client id to embed in the token")
	envFile := flag.String("env", ".env", "env file to read API_SECRET from")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	if cfg.APISecret == "" {
		slog.Error("API_SECRET is not set; the server runs without authentication")
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.APISecret, cfg.TokenTTL).Generate(*clientID)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}

	slog.Debug("Token generated", "client_id", *clientID, "ttl", cfg.TokenTTL)
	fmt.Println(token)
}
