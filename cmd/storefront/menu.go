package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/farroshouse/ordering/internal/menu"
)

var (
	menuCategory string
	menuSearch   string
	menuSort     string
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Inspect the menu catalog",
}

var menuListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the menu the server would serve",
	Example: `  storefront menu list --category grilled --sort price-low
  MENU_PATH=./menu.yaml storefront menu list -q lamb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := menu.LoadFile(cfg.MenuPath)
		if err != nil {
			return err
		}
		items := menu.Sort(catalog.Filter(menuCategory, menuSearch), menu.SortOrder(menuSort))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSPICE")
		for _, it := range items {
			spice := "-"
			if it.SpiceLevel > 0 {
				spice = menu.SpiceLevelText(it.SpiceLevel)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Name, it.Category, it.UnitPrice.StringFixed(2), spice)
		}
		return w.Flush()
	},
}

func init() {
	menuListCmd.Flags().StringVar(&menuCategory, "category", "", "only list this category")
	menuListCmd.Flags().StringVarP(&menuSearch, "query", "q", "", "case-insensitive search term")
	menuListCmd.Flags().StringVar(&menuSort, "sort", "", "price-low, price-high, name or popular")

	menuCmd.AddCommand(menuListCmd)
	rootCmd.AddCommand(menuCmd)
}
