// internal/inventory/service.go
package inventory

import (
	"context"
)

// Service is the inventory store: categories, items, and the reports
// derived from them. Every call runs in its own transaction.
type Service interface {
	AddCategory(ctx context.Context, name, description string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)

	AddItem(ctx context.Context, in ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error
	GetItem(ctx context.Context, id int64) (*Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	FilterItems(ctx context.Context, f ItemFilter) ([]Item, error)
	LowStockItems(ctx context.Context) ([]Item, error)
	TopLowestStock(ctx context.Context, n int) ([]StockLevel, error)

	LowStockReport(ctx context.Context) ([]LowStockRow, error)
	FullInventoryReport(ctx context.Context) (*InventoryReport, error)
	CategoryReport(ctx context.Context) ([]CategoryReportRow, error)
	SummaryCounts(ctx context.Context) (*Summary, error)
}
