// Command token prints a bearer token for the API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ledgercert/internal/auth"
	"github.com/MrJamesThe3rd/ledgercert/internal/config"
)

func main() {
	subject := flag.String("subject", "owner", "token subject")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	token, err := auth.NewService(cfg.Auth.Secret, cfg.App.Name).Issue(*subject, cfg.Auth.TokenTTL)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
