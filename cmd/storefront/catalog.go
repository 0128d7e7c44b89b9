package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/argea-gh/herbaprimax-V3/internal/app"
	"github.com/argea-gh/herbaprimax-V3/internal/catalog"
	"github.com/argea-gh/herbaprimax-V3/internal/checkout"
	"github.com/spf13/cobra"
)

var (
	listCategory   string
	listSearch     string
	listBestseller bool
	listJSON       bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect or reset the product catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with their stock",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		products, err := a.Products.List(cmd.Context())
		if err != nil {
			return err
		}
		page := catalog.Filter(products, catalog.Query{
			Category:   listCategory,
			Search:     listSearch,
			Bestseller: listBestseller,
		})

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(page.Items)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
		for _, p := range page.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, checkout.FormatRupiah(p.Price), p.Stock)
		}
		return tw.Flush()
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the mock catalog with the built-in products",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Mock == nil {
			return errors.New("catalog seed needs the mock product source")
		}
		products, err := a.Mock.Reset(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", len(products))
		return nil
	},
}

func init() {
	catalogListCmd.Flags().StringVar(&listCategory, "category", "", "only this category")
	catalogListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "case-insensitive match on name or short text")
	catalogListCmd.Flags().BoolVar(&listBestseller, "bestseller", false, "only bestsellers")
	catalogListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	catalogCmd.AddCommand(catalogListCmd, catalogSeedCmd)
}
