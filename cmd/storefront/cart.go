package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/argea-gh/herbaprimax-V3/internal/app"
	"github.com/argea-gh/herbaprimax-V3/internal/cart"
	"github.com/argea-gh/herbaprimax-V3/internal/checkout"
	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect or change the persisted cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart and its totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return printSnapshot(cmd, a.Cart.Snapshot())
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [qty]",
	Short: "Add a product, checked against current stock",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("qty must be a whole number: %w", err)
			}
			qty = n
		}

		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.Cart.Add(cmd.Context(), args[0], qty)
		if err != nil {
			return err
		}
		return printSnapshot(cmd, snap)
	},
}

var cartResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.Cart.Reset(cmd.Context())
		return err
	},
}

var cartCheckoutLinkCmd = &cobra.Command{
	Use:   "checkout-link",
	Short: "Print the WhatsApp order link for the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		link, err := a.Links.CartLink(a.Cart.Snapshot())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}

func printSnapshot(cmd *cobra.Command, snap cart.Snapshot) error {
	out := cmd.OutOrStdout()
	if snap.Empty() {
		fmt.Fprintln(out, "cart is empty")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tSUBTOTAL")
	for _, it := range snap.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ProductID, it.Name, it.Quantity, checkout.FormatRupiah(it.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\t%d\t%s\n", snap.TotalQuantity, checkout.FormatRupiah(snap.TotalPrice))
	return tw.Flush()
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartResetCmd, cartCheckoutLinkCmd)
}
