package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"salesbook/internal/cache"
	"salesbook/internal/core"
	"salesbook/internal/export"
	"salesbook/internal/report"
	"salesbook/internal/services"
	"salesbook/internal/tables"
)

var (
	customerFlag string
	startFlag    string
	endFlag      string
	outFlag      string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print monthly, product and valuation totals",
	Long: `Print the sales report for a date range and customer.

Missing dates default to the span of the recorded sales.`,
	RunE: runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the report as an XLSX workbook",
	RunE:  runExport,
}

func init() {
	for _, c := range []*cobra.Command{reportCmd, exportCmd} {
		c.Flags().StringVar(&customerFlag, "customer", "all", `customer id or "all"`)
		c.Flags().StringVar(&startFlag, "start", "", "first day, YYYY-MM-DD")
		c.Flags().StringVar(&endFlag, "end", "", "last day, YYYY-MM-DD")
	}
	exportCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output file or directory (default: generated name in the current directory)")
}

// parseSelection reads the report flags. Empty dates stay zero.
func parseSelection(customer, start, end string) (report.CustomerSelector, core.Date, core.Date, error) {
	sel := report.AllCustomers()
	if c := strings.TrimSpace(customer); c != "" && c != "all" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id < 0 {
			return sel, core.Date{}, core.Date{}, fmt.Errorf("invalid customer %q", customer)
		}
		sel = report.ForCustomer(id)
	}

	var from, to core.Date
	var err error
	if strings.TrimSpace(start) != "" {
		if from, err = core.ParseDate(start); err != nil {
			return sel, core.Date{}, core.Date{}, fmt.Errorf("invalid start date %q: %w", start, err)
		}
	}
	if strings.TrimSpace(end) != "" {
		if to, err = core.ParseDate(end); err != nil {
			return sel, core.Date{}, core.Date{}, fmt.Errorf("invalid end date %q: %w", end, err)
		}
	}
	return sel, from, to, nil
}

// buildReport resolves the flags against the store and runs the report.
func buildReport(ctx context.Context, store tables.Loader) (report.Report, []core.Customer, error) {
	sel, start, end, err := parseSelection(customerFlag, startFlag, endFlag)
	if err != nil {
		return report.Report{}, nil, err
	}

	reports := services.NewReportService(store, cache.NewLRUCache[report.Report](1, time.Minute))
	flt, err := reports.Resolve(ctx, sel, start, end)
	if err != nil {
		return report.Report{}, nil, err
	}
	rep, err := reports.Report(ctx, flt)
	if err != nil {
		return report.Report{}, nil, err
	}
	customers, err := store.LoadCustomers(ctx)
	if err != nil {
		return report.Report{}, nil, fmt.Errorf("load customers: %w", err)
	}
	return rep, customers, nil
}

func runReport(cmd *cobra.Command, _ []string) error {
	res, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer res.Cleanup()

	rep, customers, err := buildReport(cmd.Context(), res.Store)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), rep, customers)
}

func runExport(cmd *cobra.Command, _ []string) error {
	res, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer res.Cleanup()

	rep, customers, err := buildReport(cmd.Context(), res.Store)
	if err != nil {
		return err
	}

	path := outFlag
	if path == "" {
		path = export.Filename(rep.Filter)
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.Filename(rep.Filter))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteXLSX(f, rep, customers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d sales)\n", path, len(rep.Sales))
	return nil
}

func printReport(out io.Writer, rep report.Report, customers []core.Customer) error {
	fmt.Fprintf(out, "Report %s to %s", rep.Filter.Start, rep.Filter.End)
	if !rep.Filter.Customer.All() {
		fmt.Fprintf(out, ", customer %s", customerName(customers, rep.Filter.Customer.ID()))
	}
	fmt.Fprintln(out)

	if rep.Empty() {
		fmt.Fprintln(out, "No sales found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nMONTH\tQUANTITY")
	for _, m := range rep.Monthly {
		fmt.Fprintf(tw, "%s\t%d\n", m.Month, m.Quantity)
	}

	fmt.Fprintln(tw, "\nPRODUCT\tQUANTITY")
	for _, p := range rep.Products {
		fmt.Fprintf(tw, "%s\t%d\n", p.Product, p.Quantity)
	}

	fmt.Fprintln(tw, "\nDATE\tCUSTOMER\tPRODUCT\tQTY\tUNIT\tAMOUNT")
	for _, l := range rep.Valuation.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			l.Date, customerName(customers, l.CustomerID), l.Product, l.Quantity, l.UnitPrice, l.Amount)
	}
	fmt.Fprintf(tw, "TOTAL\t\t\t%d\t\t%s\n", rep.TotalQuantity(), rep.Valuation.Total)
	return tw.Flush()
}

func customerName(customers []core.Customer, id int64) string {
	for _, c := range customers {
		if c.ID == id {
			return c.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}
