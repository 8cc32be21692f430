package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/farroshouse/ordering/internal/coordinator/checkoutlog/sqlite"
)

var checkoutsLatest bool

var checkoutsCmd = &cobra.Command{
	Use:   "checkouts [checkout-id]",
	Short: "Show the checkout log of an order",
	Long: `Prints every recorded transition of a checkout, oldest first, with the
trace id it was written under. Reads the sqlite log at CHECKOUT_LOG_PATH.

The storefront logs by order id; the payment proxy logs provider events by
checkout session id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CheckoutLogPath == "" {
			return errors.New("CHECKOUT_LOG_PATH is not set")
		}
		repo, err := sqlite.Open(cfg.CheckoutLogPath)
		if err != nil {
			return err
		}
		defer repo.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSTATUS\tSTEP\tTRACE\tERRORS")

		if checkoutsLatest {
			e, err := repo.Latest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.UpdatedAt.Format(time.RFC3339), e.Status, e.Step, e.TraceID, e.Errors)
			return w.Flush()
		}

		history, err := repo.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(history) == 0 {
			return fmt.Errorf("%w: %q", sqlite.ErrNotFound, args[0])
		}
		for _, e := range history {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.UpdatedAt.Format(time.RFC3339), e.Status, e.Step, e.TraceID, e.Errors)
		}
		return w.Flush()
	},
}

func init() {
	checkoutsCmd.Flags().BoolVar(&checkoutsLatest, "latest", false, "only print the most recent entry")
	rootCmd.AddCommand(checkoutsCmd)
}
