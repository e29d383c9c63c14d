package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/savingsjars/backend/internal/services"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("recalculate", false, "Refresh the average daily earning first")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show earnings, safe balance and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withLedger(ctx, func(ledger *services.LedgerStore) error {
			if recalc, _ := cmd.Flags().GetBool("recalculate"); recalc {
				ledger.RecalculateAverageDailyEarning(ctx)
			}

			earnings := ledger.EarningsStats(ctx)
			settings := ledger.GetSettings(ctx)
			safe := ledger.GetSafe(ctx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Earnings  today %s | week %s | month %s | all %s\n",
				earnings.Today, earnings.ThisWeek, earnings.ThisMonth, earnings.AllTime)
			fmt.Fprintf(out, "Average daily earning  %s\n", settings.AverageDailyEarning)
			fmt.Fprintf(out, "Safe balance  %s\n\n", safe.Balance)

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GOAL\tSAVED\tTARGET\tPROGRESS\tDAYS LEFT")
			for _, goal := range ledger.ListActiveGoals(ctx) {
				progress, err := ledger.GoalProgress(ctx, goal.ID)
				if err != nil {
					continue
				}
				days := "-"
				if progress.DaysToGoal != nil {
					days = fmt.Sprintf("%d", *progress.DaysToGoal)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s%%\t%s\n",
					goal.Name, goal.CurrentAmount, goal.TargetAmount, progress.Percentage.StringFixed(2), days)
			}
			return tw.Flush()
		})
	},
}
