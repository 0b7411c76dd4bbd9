package main

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"

	"spinup/internal/domain"
	"spinup/internal/infrastructure/state"
)

func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stores with saved build state",
		Action: func(ctx context.Context, command *cli.Command) error {
			dir, err := dataDir()
			if err != nil {
				return err
			}

			states := state.NewManager(storesDir(dir), newLogger())
			names, err := states.ListStores()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No stores yet. Run `spinup create` to build one.")
				return nil
			}

			for _, name := range names {
				st, err := states.Load(name)
				if err != nil || st == nil {
					continue
				}
				done := 0
				for _, step := range domain.StepOrder {
					if s := st.Steps[step]; s != nil && s.Status == domain.StatusComplete {
						done++
					}
				}
				shop := st.ShopDomain
				if shop == "" {
					shop = "(no shop)"
				}
				fmt.Printf("%-24s %s  %d/%d steps complete\n", name, shop, done, len(domain.StepOrder))
			}
			return nil
		},
	}
}
