package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the rate catalog",
	Run: func(cmd *cobra.Command, args []string) {
		printRates(cmd, service.DefaultRates())
	},
}

func printRates(cmd *cobra.Command, rates service.RateCatalog) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\tLKR %d / kg\n", service.ServiceLabel(models.ServiceLaundry), rates.LaundryPerKg)
	fmt.Fprintf(w, "%s\tLKR %d / kg\n", service.ServiceLabel(models.ServiceDryCleaning), rates.DryCleaningPerKg)
	fmt.Fprintf(w, "%s\tLKR %d / item\n", service.ServiceLabel(models.ServicePremiumService), rates.PremiumPerItem)
	fmt.Fprintf(w, "Express\t+%d%% of subtotal\n", service.ExpressRatePercent)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Category\t%s\t%s\n",
		service.ServiceLabel(models.ServicePressing),
		service.ServiceLabel(models.ServiceWashIron),
	)
	for _, c := range rates.Categories(models.ServicePressing) {
		companion, _ := rates.CompanionPrice(models.ServicePressing, c.Name)
		fmt.Fprintf(w, "%s\tLKR %d\tLKR %d\n", c.Name, c.Price, companion)
	}
}
