// internal/export/text.go
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"stockroom/internal/inventory"

	"github.com/shopspring/decimal"
)

// Report kinds accepted by WriteReport.
const (
	ReportLowStock   = "low-stock"
	ReportInventory  = "inventory"
	ReportCategories = "categories"
	ReportSummary    = "summary"
)

var (
	// ErrNoData is returned by file exports when the inventory is empty.
	ErrNoData        = errors.New("no data to export")
	ErrUnknownReport = errors.New("unknown report")
)

var (
	titleRule = strings.Repeat("=", 50)
	entryRule = strings.Repeat("-", 30)
)

// WriteReport renders the named report as plain text.
func WriteReport(ctx context.Context, svc inventory.Service, kind string, w io.Writer) error {
	switch kind {
	case ReportLowStock:
		rows, err := svc.LowStockReport(ctx)
		if err != nil {
			return err
		}
		return WriteLowStockText(w, rows)
	case ReportInventory:
		report, err := svc.FullInventoryReport(ctx)
		if err != nil {
			return err
		}
		return WriteInventoryText(w, report)
	case ReportCategories:
		rows, err := svc.CategoryReport(ctx)
		if err != nil {
			return err
		}
		return WriteCategoryText(w, rows)
	case ReportSummary:
		summary, err := svc.SummaryCounts(ctx)
		if err != nil {
			return err
		}
		return WriteSummaryText(w, summary)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
}

func WriteLowStockText(w io.Writer, rows []inventory.LowStockRow) error {
	var b strings.Builder
	heading(&b, "LOW STOCK REPORT")
	if len(rows) == 0 {
		b.WriteString("No items are currently low in stock.\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "Item: %s\n", r.Name)
		fmt.Fprintf(&b, "Category: %s\n", r.Category)
		fmt.Fprintf(&b, "Current Stock: %d\n", r.Quantity)
		fmt.Fprintf(&b, "Minimum Stock: %d\n", r.MinStock)
		b.WriteString(entryRule + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteInventoryText(w io.Writer, report *inventory.InventoryReport) error {
	var b strings.Builder
	heading(&b, "FULL INVENTORY REPORT")
	if len(report.Lines) == 0 {
		b.WriteString("No items in inventory.\n")
	}
	for _, l := range report.Lines {
		fmt.Fprintf(&b, "Item: %s\n", l.Name)
		fmt.Fprintf(&b, "Category: %s\n", l.Category)
		fmt.Fprintf(&b, "Quantity: %d\n", l.Quantity)
		fmt.Fprintf(&b, "Price: %s\n", money(l.Price))
		fmt.Fprintf(&b, "Total Value: %s\n", money(l.LineValue))
		fmt.Fprintf(&b, "Supplier: %s\n", l.Supplier)
		b.WriteString(entryRule + "\n")
	}
	if len(report.Lines) > 0 {
		fmt.Fprintf(&b, "\nTOTAL INVENTORY VALUE: %s\n", money(report.TotalValue))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteCategoryText(w io.Writer, rows []inventory.CategoryReportRow) error {
	var b strings.Builder
	heading(&b, "CATEGORY REPORT")
	if len(rows) == 0 {
		b.WriteString("No categories found.\n")
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "Category: %s\n", r.Category)
		fmt.Fprintf(&b, "Number of Items: %d\n", r.ItemCount)
		fmt.Fprintf(&b, "Total Value: %s\n", money(r.TotalValue))
		b.WriteString(entryRule + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteSummaryText(w io.Writer, s *inventory.Summary) error {
	var b strings.Builder
	heading(&b, "INVENTORY SUMMARY")
	fmt.Fprintf(&b, "Total Items: %d\n", s.TotalItems)
	fmt.Fprintf(&b, "Low Stock Items: %d\n", s.LowStockCount)
	fmt.Fprintf(&b, "Categories: %d\n", s.TotalCategories)
	_, err := io.WriteString(w, b.String())
	return err
}

func heading(b *strings.Builder, title string) {
	b.WriteString(title + "\n" + titleRule + "\n\n")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
