package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/savingsjars/backend/internal/services"
	"github.com/savingsjars/backend/internal/snapshot"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().StringP("format", "f", "", "json or toml (default: from the output extension, else json)")
	importCmd.Flags().StringP("format", "f", "", "json or toml (default: from the file extension)")
	clearCmd.Flags().Bool("yes", false, "Do not ask for confirmation")
}

// resolveFormat prefers an explicit flag over the file extension.
func resolveFormat(cmd *cobra.Command, path string) (snapshot.Format, error) {
	if raw, _ := cmd.Flags().GetString("format"); raw != "" {
		return snapshot.ParseFormat(raw)
	}
	return snapshot.FormatFromPath(path), nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every ledger collection as JSON or TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		format, err := resolveFormat(cmd, output)
		if err != nil {
			return err
		}

		return withLedger(cmd.Context(), func(ledger *services.LedgerStore) error {
			snap := ledger.Export(cmd.Context())
			if output == "" {
				return snapshot.Encode(cmd.OutOrStdout(), snap, format)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			defer f.Close()
			if err := snapshot.Encode(f, snap, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d goals, %d contributions, %d sessions to %s\n",
				len(snap.Goals), len(snap.Contributions), len(snap.WorkSessions), output)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace all ledger data with the contents of a snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := resolveFormat(cmd, path)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		snap, err := snapshot.Decode(f, format)
		if err != nil {
			return err
		}

		return withLedger(cmd.Context(), func(ledger *services.LedgerStore) error {
			if err := ledger.Import(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d goals, %d contributions, %d sessions, %d safe transactions\n",
				len(snap.Goals), len(snap.Contributions), len(snap.WorkSessions), len(snap.SafeTransactions))
			return nil
		})
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every ledger collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprint(cmd.OutOrStdout(), "This deletes all goals, contributions, sessions and the safe. Type 'yes' to continue: ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if strings.TrimSpace(answer) != "yes" {
				return fmt.Errorf("aborted")
			}
		}

		return withLedger(cmd.Context(), func(ledger *services.LedgerStore) error {
			ledger.ClearAll(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared")
			return nil
		})
	},
}
