package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"cert-quiz-service/internal/config"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewSeedCmd loads the bundled sample question set into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sample questions into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	total := 0
	for examType, questions := range sampleQuestions() {
		for _, q := range questions {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("marshal question %s: %w", q.ID, err)
			}
			if _, err := db.ExecContext(ctx,
				`INSERT INTO questions (exam_type, id, status, data) VALUES (?, ?, ?, ?::jsonb)
				 ON CONFLICT (exam_type, id) DO UPDATE SET status=EXCLUDED.status, data=EXCLUDED.data`,
				examType, q.ID, q.Status, string(data)); err != nil {
				return fmt.Errorf("insert question %s: %w", q.ID, err)
			}
			total++
		}
	}
	log.Printf("seeded %d questions", total)
	return nil
}
