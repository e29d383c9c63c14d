package cli

import (
	"fmt"
	"time"

	"github.com/savingsjars/backend/internal/middleware"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().String("subject", "owner", "Token subject")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default jwt.expiry_hours)")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		if ttl <= 0 {
			ttl = time.Duration(cfg.JWT.ExpiryHours) * time.Hour
		}

		token, err := middleware.GenerateToken([]byte(cfg.JWT.SecretKey), subject, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
