// Package cli implements the jars command line tool.
package cli

import (
	"context"
	"fmt"

	"github.com/savingsjars/backend/internal/config"
	"github.com/savingsjars/backend/internal/server"
	"github.com/savingsjars/backend/internal/services"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jars",
	Short: "Savings jars ledger",
	Long: `jars manages a savings ledger: goals, contributions, work sessions and a safe.
It can run the HTTP API or operate on the configured storage directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.ReadFile(cfgFile)
		config.BindEnv()
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .env)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// withLedger opens the configured ledger for the duration of fn.
func withLedger(ctx context.Context, fn func(*services.LedgerStore) error) error {
	ledger, closeStore, err := server.OpenLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ledger)
}
