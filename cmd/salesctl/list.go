package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesbook/internal/report"
	"salesbook/internal/tables"
)

var listCmd = &cobra.Command{
	Use:       "list customers|products|sales",
	Short:     "Print one of the record tables",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"customers", "products", "sales"},
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer res.Cleanup()

		t, err := tables.Snapshot(cmd.Context(), res.Store)
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), args[0], t)
	},
}

func printTable(out io.Writer, name string, t report.Tables) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	switch name {
	case "customers":
		fmt.Fprintln(tw, "ID\tNAME\tPHONE")
		for _, c := range t.Customers {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Name, c.Phone)
		}
	case "products":
		fmt.Fprintln(tw, "ID\tNAME\tPRICE")
		for _, p := range t.Products {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Price)
		}
	case "sales":
		fmt.Fprintln(tw, "DATE\tCUSTOMER\tPRODUCT\tQTY")
		for _, s := range t.Sales {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Date, customerName(t.Customers, s.CustomerID), s.ProductName, s.Quantity)
		}
	default:
		return fmt.Errorf("unknown table %q", name)
	}
	return tw.Flush()
}
