// kipusctl runs one-off maintenance against the Kipus database.
//
//	kipusctl migrate up|down|status
//	kipusctl seed
//	kipusctl create-admin --email admin@kipus.cl --name "Admin" --password ...
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	databaseURL string
	logger      = slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))
)

var rootCmd = &cobra.Command{
	Use:           "kipusctl",
	Short:         "Kipus database maintenance",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
}

// openPool connects using --database-url, falling back to DATABASE_URL.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is not set: pass --database-url or set DATABASE_URL")
	}
	return postgres.NewPool(ctx, databaseURL)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "kipusctl: %v\n", err)
		stop()
		os.Exit(1)
	}
}
