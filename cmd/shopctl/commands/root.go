package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

var (
	// Global flags
	envFile  string
	dbURL    string
	logLevel string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Operational commands for the storefront service",
	Long: `shopctl runs one-off maintenance tasks against the storefront database
and message broker: schema migration, admin bootstrap, token minting and
Kafka topic creation.

Settings come from the same environment variables as the server. Flags
override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		cfg = config.Load()
		if dbURL != "" {
			cfg.DatabaseURL = dbURL
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		slog.SetDefault(logging.NewWithWriter(os.Stderr, cfg.LogLevel).With("service", "shopctl"))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (defaults to LOG_LEVEL)")
}

// openRepo connects to the configured database and migrates it. The returned
// func closes the pool.
func openRepo(ctx context.Context) (*repo.GormRepo, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("database url is required: set DATABASE_URL or pass --db")
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL, cfg.DBLogLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.Migrate(db); err != nil {
		pkgdb.Close(db)
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return &repo.GormRepo{DB: db}, func() { pkgdb.Close(db) }, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	return logging.IntoContext(cmd.Context(), slog.Default())
}
