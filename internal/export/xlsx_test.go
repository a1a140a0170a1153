package export

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"salesbook/internal/core"
	"salesbook/internal/report"
)

func sampleReport() (report.Report, []core.Customer) {
	customers := []core.Customer{{ID: 1, Name: "Ana", Phone: "1"}}
	t := report.Tables{
		Customers: customers,
		Products:  []core.Product{{ID: 1, Name: "Widget", Price: core.Money{Cents: 250}}},
		Sales: []core.Sale{
			{CustomerID: 1, ProductID: 1, ProductName: "Widget", Quantity: 2, Date: core.NewDate(2024, 1, 10)},
			{CustomerID: 9, ProductName: "Gone", Quantity: 1, Date: core.NewDate(2024, 2, 3)},
		},
	}
	return report.Build(t, report.Filter{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}), customers
}

func TestWriteXLSX(t *testing.T) {
	r, customers := sampleReport()

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, r, customers); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{SheetMonthly, SheetProducts, SheetSales}, f.GetSheetList()); diff != "" {
		t.Errorf("sheets mismatch (-want +got):\n%s", diff)
	}

	monthly, err := f.GetRows(SheetMonthly)
	if err != nil {
		t.Fatal(err)
	}
	wantMonthly := [][]string{{"Month", "Quantity"}, {"2024-01", "2"}, {"2024-02", "1"}}
	if diff := cmp.Diff(wantMonthly, monthly); diff != "" {
		t.Errorf("monthly mismatch (-want +got):\n%s", diff)
	}

	sales, err := f.GetRows(SheetSales, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(sales) != 4 {
		t.Fatalf("sales rows = %d, want header + 2 lines + total", len(sales))
	}
	if sales[1][1] != "Ana" || sales[2][1] != "9" {
		t.Errorf("customer columns = %q, %q", sales[1][1], sales[2][1])
	}
	if sales[2][5] != "0" {
		t.Errorf("unmatched line amount = %q, want 0", sales[2][5])
	}
	total := sales[3]
	if total[0] != "Total" || total[3] != "3" || total[5] != "5" {
		t.Errorf("total row = %v", total)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		flt  report.Filter
		want string
	}{
		{report.Filter{}, "report.xlsx"},
		{report.Filter{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 12, 31)}, "report_2024-01-01_2024-12-31.xlsx"},
		{report.Filter{Customer: report.ForCustomer(4)}, "report_customer4.xlsx"},
	}
	for _, tt := range tests {
		if got := Filename(tt.flt); got != tt.want {
			t.Errorf("Filename() = %q, want %q", got, tt.want)
		}
	}
}
