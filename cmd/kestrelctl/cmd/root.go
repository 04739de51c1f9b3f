package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/config"
	"github.com/kestrelhq/kestrel/internal/database"
	redisclient "github.com/kestrelhq/kestrel/internal/redis"
)

var rootCmd = &cobra.Command{
	Use:   "kestrelctl",
	Short: "Operations CLI for the Kestrel backend",
	Long: `kestrelctl manages organizations, users and sessions directly against
the database, bypassing the HTTP API. It reads the same environment
(.env) as the server binaries.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		// Keep repository cache logging out of the command output.
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(orgsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// connect opens the database and Redis the way the server binaries do.
func connect() (*config.Config, *sql.DB, *redisclient.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	rdb, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return cfg, db, rdb, nil
}
