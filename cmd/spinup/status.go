package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	cli "github.com/urfave/cli/v3"

	"spinup/internal/domain"
	"spinup/internal/infrastructure/state"
)

func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show per-step build status for a store",
		ArgsUsage: "<store-name>",
		Action: func(ctx context.Context, command *cli.Command) error {
			name := command.Args().First()
			if name == "" {
				return errors.New("usage: spinup status <store-name>")
			}

			dir, err := dataDir()
			if err != nil {
				return err
			}

			states := state.NewManager(storesDir(dir), newLogger())
			st, err := states.Load(name)
			if err != nil {
				return err
			}
			if st == nil {
				return fmt.Errorf("no state found for store %q", name)
			}

			color.Cyan("%s (%s)", st.StoreName, st.ShopDomain)
			fmt.Printf("Config: %s\n", st.ConfigPath)
			fmt.Printf("Updated: %s\n\n", st.UpdatedAt.Format("2006-01-02 15:04:05"))

			for _, step := range domain.StepOrder {
				stepState := st.Steps[step]
				status := domain.StatusPending
				if stepState != nil {
					status = stepState.Status
				}
				switch status {
				case domain.StatusComplete:
					color.Green("  ✓ %s", step)
				case domain.StatusInProgress:
					color.Cyan("  … %s", step)
				case domain.StatusPartial:
					color.Yellow("  ⚠ %s", step)
				case domain.StatusFailed:
					color.Red("  ✗ %s", step)
				default:
					fmt.Printf("  ○ %s\n", step)
				}
				if stepState == nil {
					continue
				}
				if stepState.Error != "" {
					fmt.Printf("      error: %s\n", stepState.Error)
				}
				for _, key := range []string{"note", "total", "created", "failed"} {
					if value, ok := stepState.Data[key]; ok {
						fmt.Printf("      %s: %v\n", key, value)
					}
				}
			}

			if next := state.FindNextIncompleteStep(st); next != "" {
				fmt.Printf("\nNext step: %s\n", next)
			} else {
				color.Green("\nAll steps complete.")
			}
			return nil
		},
	}
}
