package main

import (
	"context"
	"errors"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"spinup/internal/infrastructure/auth"
	"spinup/internal/infrastructure/shopify"
	"spinup/internal/ports"
	"spinup/internal/server"
)

var defaultScopes = []string{
	"read_products",
	"write_products",
	"read_themes",
	"write_themes",
	"read_inventory",
	"write_inventory",
	"write_publications",
}

func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the OAuth install server so shops can grant access",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
				Value:   3000,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "Shopify app client ID",
				Sources: cli.EnvVars("SHOPIFY_CLIENT_ID"),
			},
			&cli.StringFlag{
				Name:    "client-secret",
				Usage:   "Shopify app client secret",
				Sources: cli.EnvVars("SHOPIFY_CLIENT_SECRET"),
			},
			&cli.StringFlag{
				Name:    "redirect-uri",
				Usage:   "OAuth redirect URI registered on the app",
				Sources: cli.EnvVars("SHOPIFY_REDIRECT_URI"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			clientID := command.String("client-id")
			clientSecret := command.String("client-secret")
			if clientID == "" || clientSecret == "" {
				return errors.New("SHOPIFY_CLIENT_ID and SHOPIFY_CLIENT_SECRET must be set")
			}

			port := command.Int("port")
			redirectURI := command.String("redirect-uri")
			if redirectURI == "" {
				redirectURI = fmt.Sprintf("http://localhost:%d/auth/callback", port)
			}

			dir, err := dataDir()
			if err != nil {
				return err
			}

			logger := newLogger()
			tokens := auth.NewTokenStore(auth.DefaultTokenPath(dir))
			whitelist := auth.NewWhitelist(auth.DefaultWhitelistPath(dir))
			oauth := auth.NewOAuthHandler(auth.Credentials{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Scopes:       defaultScopes,
				RedirectURI:  redirectURI,
			})

			var validator ports.TokenValidator = shopify.NewRESTValidator(clientID, clientSecret, logger)

			srv := server.New(oauth, whitelist, tokens, validator, logger)
			return srv.Start(fmt.Sprintf(":%d", port))
		},
	}
}
