// Command bibliadm is the operator CLI: it applies the schema and can seed a
// small demo dataset through the same bulk write path the service uses.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/biblioteca-dev/biblioteca/internal/config"
	"github.com/biblioteca-dev/biblioteca/internal/logging"
	"github.com/biblioteca-dev/biblioteca/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:   "bibliadm",
		Short: "Administer the biblioteca database",
	}

	root.AddCommand(migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore shares the server's configuration path so the CLI talks to the
// same database the service does.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}

	return store.New(pool, slog.Default()), pool.Close, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the entity tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			return st.Migrate(ctx)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert a small demo dataset through the bulk writer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := st.Migrate(ctx); err != nil {
				return err
			}
			return seed(ctx, st)
		},
	}
}
