package main

import (
	"context"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"spinup/internal/application"
	"spinup/internal/infrastructure/auth"
	"spinup/internal/infrastructure/state"
)

func NewCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Build a store from a config file: theme, products, collections",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the store config YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "shop-domain",
				Aliases:  []string{"s"},
				Usage:    "Shop domain (name or full *.myshopify.com domain)",
				Required: true,
				Sources:  cli.EnvVars("SHOPIFY_SHOP"),
			},
			&cli.StringFlag{
				Name:    "access-token",
				Usage:   "Admin API access token (overrides the stored token)",
				Sources: cli.EnvVars("SHOPIFY_ACCESS_TOKEN"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}

			configPath, err := filepath.Abs(command.String("config"))
			if err != nil {
				return err
			}

			logger := newLogger()
			states := state.NewManager(storesDir(dir), logger)
			tokens := auth.NewTokenStore(auth.DefaultTokenPath(dir))

			provisioner := application.NewProvisioner(states, tokens, logger)
			return provisioner.Provision(ctx, application.ProvisionOptions{
				ConfigPath: configPath,
				Shop:       command.String("shop-domain"),
				Token:      command.String("access-token"),
			})
		},
	}
}
