package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"

	"spinup/internal/config"
)

func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Validate a store config file without touching any shop",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the store config YAML file",
				Required: true,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.String("config")

			cfg, err := config.Resolve(path)
			if err != nil {
				var cfgErr *config.Error
				if errors.As(err, &cfgErr) && cfgErr.Kind == config.KindValidation {
					color.Red("Config is invalid:")
					for _, violation := range cfgErr.Violations {
						fmt.Printf("  - %s\n", violation)
					}
					return errors.New("validation failed")
				}
				return err
			}

			color.Green("✓ %s is valid", path)
			fmt.Printf("  Store: %s <%s>\n", cfg.Store.Name, cfg.Store.Email)
			if cfg.Products != nil {
				fmt.Printf("  Products: %s\n", cfg.Products.Source)
			}
			if cfg.Theme != nil && cfg.Theme.Settings != nil && cfg.Theme.Settings.Preset != "" {
				fmt.Printf("  Theme preset: %s\n", cfg.Theme.Settings.Preset)
			}
			return nil
		},
	}
}
