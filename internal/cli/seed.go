package cli

import (
	"fmt"

	"eco-quiz-engine/internal/bank"
	"eco-quiz-engine/internal/config"
	"eco-quiz-engine/internal/domain"
	"eco-quiz-engine/internal/infra/postgres"
	"eco-quiz-engine/internal/pkg/logger"
	"github.com/spf13/cobra"
)

// NewSeedCmd stores a question bank in Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store a question bank (the built-in eco bank by default) in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Mode)
			if err != nil {
				return err
			}
			defer log.Sync()

			b, err := readBank(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, log); err != nil {
				return err
			}

			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			if err := postgres.NewSeeder(db).SaveBank(cmd.Context(), b); err != nil {
				return err
			}
			log.Info("bank seeded", "bank_id", b.ID, "entries", len(b.Entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML bank to seed (defaults to the built-in eco bank)")
	return cmd
}

func readBank(file string) (domain.Bank, error) {
	if file == "" {
		return bank.Default(), nil
	}
	b, err := bank.LoadFile(file)
	if err != nil {
		return domain.Bank{}, fmt.Errorf("read %s: %w", file, err)
	}
	return b, nil
}
