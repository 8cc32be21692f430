package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/farroshouse/ordering/internal/config"
	"github.com/farroshouse/ordering/internal/pkg/telemetry"
)

const serviceName = "storefront"

var cfg *config.Storefront

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Farros House menu, cart and checkout server",
	Long: `storefront serves the Farros House menu, keeps one shopping cart per
browsing session and hands completed checkouts to the payment proxy.

Settings are read from the environment (PORT, REDIS_ADDR, PAYMENT_PROXY_URL,
GATEWAY_TIMEOUT, MENU_PATH, TAX_RATE, DELIVERY_FEE_PENCE, ...).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitLogger(serviceName)

		var err error
		cfg, err = config.LoadStorefront()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
