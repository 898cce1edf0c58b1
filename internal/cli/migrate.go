package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"slide-quiz/internal/config"
	"slide-quiz/internal/infra/file"
	"slide-quiz/internal/infra/postgres"
	pgmigrations "slide-quiz/internal/infra/postgres/migrations"
	redisinfra "slide-quiz/internal/infra/redis"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// NewMigrateCmd applies database migrations and optionally seeds question sets.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seedDir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(cmd.Context(), cfg, seedDir)
		},
	}
	cmd.Flags().StringVar(&seedDir, "seed-dir", "", "directory of question documents to upsert after migrating")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, seedDir string) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)

	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("migrations applied")

	if seedDir == "" {
		return nil
	}
	return seed(ctx, cfg, postgres.NewStore(db), seedDir)
}

func seed(ctx context.Context, cfg config.Config, store *postgres.Store, dir string) error {
	topics, err := store.Seed(ctx, file.NewLoader(dir))
	if err != nil {
		return err
	}
	log.Printf("seeded %d question sets from %s", len(topics), dir)

	if cfg.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()
	cache := redisinfra.NewRepository(client, nil, 0)
	for _, topic := range topics {
		if err := cache.Invalidate(ctx, topic); err != nil {
			log.Printf("invalidate cached %s: %v", topic, err)
		}
	}
	return nil
}
