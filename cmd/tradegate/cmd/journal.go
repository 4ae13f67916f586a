package cmd

import (
	"fmt"

	"github.com/mkrein/tradegate/execution"
	"github.com/mkrein/tradegate/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the order journal",
	Long: `Query and display order records from a SQLite journal.

Subcommands:
  orders - List all recorded order intents and their outcomes

Example:
  tradegate journal orders --db tradegate.sqlite`,
}

var journalOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List recorded orders",
	Args:  cobra.NoArgs,
	RunE:  runJournalOrders,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalOrdersCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./tradegate.sqlite", "path to SQLite journal DB")
}

func runJournalOrders(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	orders, err := j.Orders()
	if err != nil {
		return fmt.Errorf("query orders: %w", err)
	}
	if len(orders) == 0 {
		fmt.Println("No orders recorded.")
		return nil
	}

	fmt.Printf("%-28s %-10s %-4s %10s %12s %-10s %s\n",
		"TIME", "SYMBOL", "SIDE", "SIZE", "PRICE", "STATUS", "DETAIL")
	for _, o := range orders {
		fmt.Printf("%-28s %-10s %-4s %10.2f %12.4f %-10s %s\n",
			o.CreatedAt.Format("2006-01-02 15:04:05"),
			o.Symbol, o.Side, o.Size, o.LimitPrice, o.Status, orderDetail(o))
	}
	fmt.Printf("\n%d orders\n", len(orders))
	return nil
}

func orderDetail(o execution.Record) string {
	switch o.Status {
	case execution.StatusFilled:
		return fmt.Sprintf("filled @ %.4f in %.0fms", o.FillPrice, o.LatencyMs)
	case execution.StatusRejected:
		return o.RejectReason
	}
	return ""
}
