package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesbook/internal/core"
	"salesbook/internal/report"
	"salesbook/internal/tables/csvfile"
)

// seedDir writes one customer, one product and two sales into a csv store.
func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	store, err := csvfile.Open(dir, core.MaxPlusOne)
	if err != nil {
		t.Fatal(err)
	}
	c, err := store.AppendCustomer(ctx, core.Customer{Name: "Ana", Phone: "(11) 98765-4321"})
	if err != nil {
		t.Fatal(err)
	}
	p, err := store.AppendProduct(ctx, core.Product{Name: "Widget", Price: core.Money{Cents: 250}})
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range []core.Date{core.NewDate(2024, 1, 10), core.NewDate(2024, 2, 3)} {
		sale := core.Sale{CustomerID: c.ID, ProductID: p.ID, ProductName: p.Name, Quantity: 2, Date: d}
		if _, err := store.AppendSale(ctx, sale); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AMQP_URL", "")
	backendFlag, dataDirFlag, dbPathFlag = "", "", ""
	customerFlag, startFlag, endFlag, outFlag = "all", "", "", ""
	importFromFlag = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseSelection(t *testing.T) {
	sel, start, end, err := parseSelection("all", "", "")
	if err != nil || !sel.All() || !start.IsEmpty() || !end.IsEmpty() {
		t.Fatalf("defaults = %v %v %v %v", sel, start, end, err)
	}

	sel, start, _, err = parseSelection("4", "2024-02-01", "")
	if err != nil || sel.ID() != 4 || start.String() != "2024-02-01" {
		t.Fatalf("customer 4 = %v %v %v", sel, start, err)
	}

	for _, tc := range [][3]string{{"x", "", ""}, {"-1", "", ""}, {"all", "2024-13-01", ""}, {"all", "", "soon"}} {
		if _, _, _, err := parseSelection(tc[0], tc[1], tc[2]); err == nil {
			t.Errorf("parseSelection(%q) should fail", tc)
		}
	}
}

func TestPrintReportEmpty(t *testing.T) {
	var out bytes.Buffer
	f := report.Filter{Start: core.NewDate(2024, 1, 1), End: core.NewDate(2024, 1, 31), Customer: report.ForCustomer(9)}
	if err := printReport(&out, report.Build(report.Tables{}, f), nil); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "customer #9") || !strings.Contains(got, "No sales found.") {
		t.Errorf("output = %q", got)
	}
}

func TestReportCommand(t *testing.T) {
	dir := seedDir(t)

	out, err := execute(t, "report", "--backend", "csv", "--data-dir", dir)
	if err != nil {
		t.Fatalf("report error = %v\n%s", err, out)
	}
	for _, want := range []string{"Report 2024-01-10 to 2024-02-03", "2024-01", "2024-02", "Widget", "R$ 10,00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "report", "--backend", "csv", "--data-dir", dir, "--start", "2024-02-01", "--end", "2024-02-29")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "2024-01-10") || !strings.Contains(out, "R$ 5,00") {
		t.Errorf("february report:\n%s", out)
	}

	if _, err := execute(t, "report", "--backend", "csv", "--data-dir", dir, "--customer", "abc"); err == nil {
		t.Error("invalid customer should fail")
	}
}

func TestListCommand(t *testing.T) {
	dir := seedDir(t)

	out, err := execute(t, "list", "customers", "--backend", "csv", "--data-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(11) 98765-4321") {
		t.Errorf("customers:\n%s", out)
	}

	out, err = execute(t, "list", "sales", "--backend", "csv", "--data-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(out, "Ana") != 2 {
		t.Errorf("sales:\n%s", out)
	}

	if _, err := execute(t, "list", "orders", "--backend", "csv", "--data-dir", dir); err == nil {
		t.Error("unknown table should fail")
	}
}

func TestExportCommand(t *testing.T) {
	dir := seedDir(t)
	outDir := t.TempDir()

	out, err := execute(t, "export", "--backend", "csv", "--data-dir", dir, "--start", "2024-01-01", "--end", "2024-12-31", "--out", outDir)
	if err != nil {
		t.Fatalf("export error = %v\n%s", err, out)
	}

	path := filepath.Join(outDir, "report_2024-01-01_2024-12-31.xlsx")
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Monthly")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("monthly rows = %v", rows)
	}
}

func TestImportCommand(t *testing.T) {
	dir := seedDir(t)
	db := filepath.Join(t.TempDir(), "sales.db")

	out, err := execute(t, "import", "--from", dir, "--db", db)
	if err != nil {
		t.Fatalf("import error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Imported 1 customers, 1 products and 2 sales") {
		t.Errorf("import output = %q", out)
	}

	out, err = execute(t, "list", "products", "--backend", "sqlite", "--db", db)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "R$ 2,50") {
		t.Errorf("imported products:\n%s", out)
	}

	if _, err := execute(t, "import", "--from", dir, "--db", db); err == nil {
		t.Error("second import into a non-empty database should fail")
	}
	if _, err := execute(t, "import", "--from", filepath.Join(dir, "missing"), "--db", db); err == nil {
		t.Error("missing data directory should fail")
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatal(err)
	}
}
