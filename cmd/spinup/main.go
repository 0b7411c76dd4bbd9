package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v3"
)

func main() {
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:                  "spinup",
		Usage:                 "Provision and configure Shopify storefronts from config files",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			NewValidateCommand(),
			NewCreateCommand(),
			NewListCommand(),
			NewStatusCommand(),
			NewServeCommand(),
			NewWhitelistCommand(),
			NewThemeCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

// dataDir returns the spinup data directory, creating it if needed.
func dataDir() (string, error) {
	dir := os.Getenv("SPINUP_DATA_DIR")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".spinup")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// storesDir is where per-store build state lives.
func storesDir(dir string) string {
	return filepath.Join(dir, "stores")
}
