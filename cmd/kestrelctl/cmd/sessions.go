package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelhq/kestrel/internal/repository"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage sessions",
}

var sessionsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired sessions",
	Long: `Delete sessions whose expiry has passed. The API server runs this on a
schedule; the command exists for manual runs and for deployments without it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, rdb, err := connect()
		if err != nil {
			return err
		}
		defer db.Close()
		defer rdb.Close()

		sessions := repository.NewSessionRepository(db, rdb.Client, cfg.SessionCacheTTL)
		count, err := sessions.DeleteExpired(context.Background())
		if err != nil {
			return fmt.Errorf("failed to purge sessions: %w", err)
		}

		fmt.Printf("Purged %d expired sessions\n", count)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsPurgeCmd)
}
