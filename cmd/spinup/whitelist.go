package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"

	"spinup/internal/infrastructure/auth"
)

func NewWhitelistCommand() *cli.Command {
	openWhitelist := func() (*auth.Whitelist, error) {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		return auth.NewWhitelist(auth.DefaultWhitelistPath(dir)), nil
	}

	return &cli.Command{
		Name:  "whitelist",
		Usage: "Manage the shops allowed to install through the auth server",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Allow a shop to install",
				ArgsUsage: "<shop>",
				Action: func(ctx context.Context, command *cli.Command) error {
					shop := command.Args().First()
					if shop == "" {
						return errors.New("usage: spinup whitelist add <shop>")
					}
					wl, err := openWhitelist()
					if err != nil {
						return err
					}
					if err := wl.Add(shop); err != nil {
						return err
					}
					color.Green("✓ whitelisted %s", shop)
					return nil
				},
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a shop from the whitelist",
				ArgsUsage: "<shop>",
				Action: func(ctx context.Context, command *cli.Command) error {
					shop := command.Args().First()
					if shop == "" {
						return errors.New("usage: spinup whitelist remove <shop>")
					}
					wl, err := openWhitelist()
					if err != nil {
						return err
					}
					if err := wl.Remove(shop); err != nil {
						return err
					}
					color.Green("✓ removed %s", shop)
					return nil
				},
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List whitelisted shops",
				Action: func(ctx context.Context, command *cli.Command) error {
					wl, err := openWhitelist()
					if err != nil {
						return err
					}
					shops, err := wl.List()
					if err != nil {
						return err
					}
					if len(shops) == 0 {
						fmt.Println("Whitelist is empty.")
						return nil
					}
					for _, shop := range shops {
						fmt.Println(shop)
					}
					return nil
				},
			},
		},
	}
}
