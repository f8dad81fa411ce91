package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(outstandingCmd)
	rootCmd.AddCommand(sweepCmd)
}

// ─── taxbox status ──────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status USER_ID",
	Short: "Show one user's ledger account",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, closer, err := newService()
	if err != nil {
		return err
	}
	defer closer()

	userID := args[0]
	acct, err := svc.AccountOf(context.Background(), userID)
	if err != nil {
		return err
	}
	tiers, err := svc.TiersEarnedBy(context.Background(), userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "User %s\n", userID)
	fmt.Fprintf(os.Stdout, "  Total spent:   %d\n", acct.TotalSpent)
	fmt.Fprintf(os.Stdout, "  Total earned:  %d\n", acct.TotalEarned)
	fmt.Fprintf(os.Stdout, "  Tax owed:      %d\n", acct.TaxOwed)
	fmt.Fprintf(os.Stdout, "  Suspended:     %v\n", acct.SellerSuspended)
	if len(tiers) > 0 {
		fmt.Fprintf(os.Stdout, "  Tiers:         %s\n", strings.Join(tiers, ", "))
	}
	return nil
}

// ─── taxbox outstanding ─────────────────────────────────────────────────────

var outstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "List all sellers owing tax",
	RunE:  runOutstanding,
}

func runOutstanding(cmd *cobra.Command, args []string) error {
	svc, closer, err := newService()
	if err != nil {
		return err
	}
	defer closer()

	rows, err := svc.Outstanding(context.Background())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No sellers owe tax.")
		return nil
	}

	var total int64
	fmt.Fprintf(os.Stdout, "Sellers owing tax (%d):\n", len(rows))
	for _, row := range rows {
		fmt.Fprintf(os.Stdout, "  %s  %d\n", row.SellerID, row.TaxOwed)
		total += row.TaxOwed
	}
	fmt.Fprintf(os.Stdout, "Total: %d\n", total)
	return nil
}

// ─── taxbox sweep ───────────────────────────────────────────────────────────

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one reminder sweep now",
	Long: `Suspend every seller with outstanding tax and record the sweep.
Without a connected bot this sends no reminders and revokes no roles; use
it to apply suspensions when the bot was down over a scheduled sweep.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	svc, closer, err := newService()
	if err != nil {
		return err
	}
	defer closer()

	report, err := svc.RunSweep(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✅ Sweep complete: %d outstanding, %d notified, %d failed\n",
		report.Outstanding, report.Notified, report.Failed)
	return nil
}
