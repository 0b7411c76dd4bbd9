package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"

	"spinup/internal/config"
	"spinup/internal/domain"
	"spinup/internal/theme"
)

func NewThemeCommand() *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Work with the shop's themes through the Shopify CLI",
		Commands: []*cli.Command{
			newThemePushCommand(),
			newThemeListCommand(),
		},
	}
}

func newThemePushCommand() *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Push the theme, optionally customized from a store config first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "shop",
				Aliases:  []string{"s"},
				Usage:    "Shop domain to push to",
				Required: true,
				Sources:  cli.EnvVars("SHOPIFY_SHOP"),
			},
			&cli.StringFlag{
				Name:  "path",
				Usage: "Theme source directory",
				Value: "./themes/spinup",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Store config YAML; when set, the theme is customized into a temp dir before pushing",
			},
			&cli.BoolFlag{
				Name:  "unpublished",
				Usage: "Upload as a new unpublished theme instead of overwriting the live one",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			themeDir := command.String("path")

			if configPath := command.String("config"); configPath != "" {
				configPath, err := filepath.Abs(configPath)
				if err != nil {
					return err
				}
				cfg, err := config.Resolve(configPath)
				if err != nil {
					return err
				}

				outputPath, err := os.MkdirTemp("", "spinup-theme-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(outputPath)

				err = theme.Customize(theme.CustomizeOptions{
					ConfigPath: configPath,
					Config:     cfg,
					ThemePath:  themeDir,
					OutputPath: outputPath,
					Logger:     newLogger(),
				})
				if err != nil {
					return err
				}
				themeDir = outputPath
			}

			shop := domain.NormalizeDomain(command.String("shop"))
			color.Cyan("Pushing theme to %s", shop)
			return theme.Push(ctx, theme.PushOptions{
				ThemeDir:    themeDir,
				Shop:        shop,
				Unpublished: command.Bool("unpublished"),
			})
		},
	}
}

func newThemeListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List the shop's themes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "shop",
				Aliases:  []string{"s"},
				Usage:    "Shop domain to list themes for",
				Required: true,
				Sources:  cli.EnvVars("SHOPIFY_SHOP"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return theme.ListThemes(ctx, domain.NormalizeDomain(command.String("shop")))
		},
	}
}
