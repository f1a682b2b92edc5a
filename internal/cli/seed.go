package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaiso/ifs/internal/seed"
)

// NewSeedCmd создаёт команду заполнения пустой таблицы.
func NewSeedCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate an empty flights table with demo flights",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			inserted, err := seed.New(seed.Config{Store: store, Logger: env.Logger()}).SeedIfEmpty(cmd.Context())
			if err != nil {
				return err
			}

			out := env.Output()
			if inserted {
				out.Success("Flights seeded")
			} else {
				out.Success("Flights table is not empty, nothing to do")
			}
			return nil
		},
	}
}

// NewMigrateCmd создаёт команду создания схемы.
// Схема создаётся при открытии хранилища.
func NewMigrateCmd(env Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the flights schema if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closeFn, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			env.Output().Success("Schema ready (" + cfg.DB.Driver + ")")
			return nil
		},
	}
}
