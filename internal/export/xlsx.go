// Package export renders reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"salesbook/internal/core"
	"salesbook/internal/report"
)

// Sheet names of the exported workbook.
const (
	SheetMonthly  = "Monthly"
	SheetProducts = "Products"
	SheetSales    = "Sales"
)

// moneyFormat is the builtin "#,##0.00" number format.
const moneyFormat = 4

// WriteXLSX writes r as a workbook with monthly, per-product and line-item
// sheets. Customer names are resolved from customers; unknown ids fall back
// to the id itself.
func WriteXLSX(w io.Writer, r report.Report, customers []core.Customer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMonthly); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetProducts, SheetSales} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	if err := writeMonthly(f, r, bold); err != nil {
		return err
	}
	if err := writeProducts(f, r, bold); err != nil {
		return err
	}
	if err := writeSales(f, r, customers, bold, money); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename names the download for a filter, e.g. report_2024-01-01_2024-12-31.xlsx.
func Filename(flt report.Filter) string {
	name := "report"
	if !flt.Start.IsEmpty() {
		name += "_" + flt.Start.String()
	}
	if !flt.End.IsEmpty() {
		name += "_" + flt.End.String()
	}
	if !flt.Customer.All() {
		name += "_customer" + strconv.FormatInt(flt.Customer.ID(), 10)
	}
	return name + ".xlsx"
}

func writeMonthly(f *excelize.File, r report.Report, header int) error {
	rows := [][]any{{"Month", "Quantity"}}
	for _, m := range r.Monthly {
		rows = append(rows, []any{m.Month, m.Quantity})
	}
	return writeRows(f, SheetMonthly, rows, header, "B")
}

func writeProducts(f *excelize.File, r report.Report, header int) error {
	rows := [][]any{{"Product", "Quantity"}}
	for _, p := range r.Products {
		rows = append(rows, []any{p.Product, p.Quantity})
	}
	return writeRows(f, SheetProducts, rows, header, "B")
}

func writeSales(f *excelize.File, r report.Report, customers []core.Customer, header, money int) error {
	names := make(map[int64]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}

	rows := [][]any{{"Date", "Customer", "Product", "Quantity", "Unit price", "Amount"}}
	for _, l := range r.Valuation.Lines {
		customer, ok := names[l.CustomerID]
		if !ok {
			customer = strconv.FormatInt(l.CustomerID, 10)
		}
		rows = append(rows, []any{l.Date.String(), customer, l.Product, l.Quantity, l.UnitPrice.Float(), l.Amount.Float()})
	}
	rows = append(rows, []any{"Total", "", "", r.TotalQuantity(), "", r.Valuation.Total.Float()})

	if err := writeRows(f, SheetSales, rows, header, "F"); err != nil {
		return err
	}

	last := len(rows)
	if err := f.SetCellStyle(SheetSales, "E2", fmt.Sprintf("F%d", last), money); err != nil {
		return fmt.Errorf("style amounts: %w", err)
	}
	if err := f.SetCellStyle(SheetSales, fmt.Sprintf("A%d", last), fmt.Sprintf("D%d", last), header); err != nil {
		return fmt.Errorf("style total row: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, header int, lastCol string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", header); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
