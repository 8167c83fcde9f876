// internal/inventory/reports.go
package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FilterItems keeps the items matching f, preserving order.
func FilterItems(items []Item, f ItemFilter) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}

// BuildLowStockReport projects low-stock items into report rows. The input
// is expected in report order already.
func BuildLowStockReport(items []Item) []LowStockRow {
	rows := make([]LowStockRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, LowStockRow{
			Name:     it.Name,
			Category: it.Category,
			Quantity: it.Quantity,
			MinStock: it.MinStock,
		})
	}
	return rows
}

// BuildInventoryReport lists every item by name (ties by id) with its line
// value, and totals them.
func BuildInventoryReport(items []Item, generatedAt time.Time) *InventoryReport {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].Name != sorted[b].Name {
			return sorted[a].Name < sorted[b].Name
		}
		return sorted[a].ID < sorted[b].ID
	})

	report := &InventoryReport{
		Lines:       make([]InventoryLine, 0, len(sorted)),
		TotalValue:  decimal.Zero,
		GeneratedAt: generatedAt,
	}
	for _, it := range sorted {
		supplier := it.Supplier
		if supplier == "" {
			supplier = NotAvailable
		}
		value := it.LineValue()
		report.Lines = append(report.Lines, InventoryLine{
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			Price:     it.Price,
			MinStock:  it.MinStock,
			Supplier:  supplier,
			LineValue: value,
		})
		report.TotalValue = report.TotalValue.Add(value)
	}
	return report
}

// BuildCategoryReport returns one row per category, including empty ones,
// ordered by total value descending and then by name. Uncategorized items
// are not counted.
func BuildCategoryReport(categories []Category, items []Item) []CategoryReportRow {
	index := make(map[int64]int, len(categories))
	rows := make([]CategoryReportRow, len(categories))
	for i, c := range categories {
		index[c.ID] = i
		rows[i] = CategoryReportRow{Category: c.Name, TotalValue: decimal.Zero}
	}

	for _, it := range items {
		if it.CategoryID == nil {
			continue
		}
		i, ok := index[*it.CategoryID]
		if !ok {
			continue
		}
		rows[i].ItemCount++
		rows[i].TotalValue = rows[i].TotalValue.Add(it.LineValue())
	}

	sort.Slice(rows, func(a, b int) bool {
		if c := rows[a].TotalValue.Cmp(rows[b].TotalValue); c != 0 {
			return c > 0
		}
		return rows[a].Category < rows[b].Category
	})
	return rows
}
