// internal/inventory/domain.go
package inventory

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// NotAvailable stands in for missing display values.
	NotAvailable = "N/A"
	// UncategorizedLabel is the category display name of an item with no category.
	UncategorizedLabel = NotAvailable
)

// Upper bounds of the stored columns: INTEGER counts, NUMERIC(12,2) prices
// and VARCHAR(255) text on MySQL.
const (
	maxCount   = math.MaxInt32
	maxTextLen = 255
)

// maxPrice is the largest value NUMERIC(12,2) holds.
var maxPrice = decimal.RequireFromString("9999999999.99")

const (
	entityCategory = "category"
	entityItem     = "item"
)

// Category groups items. Names are unique, compared case-sensitively.
type Category struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// Item is a stocked article. CategoryID is nil for uncategorized items;
// Category always holds the display name.
type Item struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	CategoryID *int64          `json:"category_id"`
	Category   string          `json:"category"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int             `json:"min_stock"`
	Supplier   string          `json:"supplier"`
	DateAdded  time.Time       `json:"date_added"`
	LowStock   bool            `json:"low_stock"`
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (i Item) IsLowStock() bool {
	return i.Quantity <= i.MinStock
}

// LineValue is quantity × price.
func (i Item) LineValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemInput carries the mutable fields of an item for add and update.
type ItemInput struct {
	Name       string          `json:"name"`
	CategoryID *int64          `json:"category_id"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int             `json:"min_stock"`
	Supplier   string          `json:"supplier"`
}

func (in ItemInput) normalize() (ItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Supplier = strings.TrimSpace(in.Supplier)

	switch {
	case in.Name == "":
		return in, &ValidationError{Field: "name", Reason: "item name is required"}
	case utf8.RuneCountInString(in.Name) > maxTextLen:
		return in, &ValidationError{Field: "name", Reason: "must be at most 255 characters"}
	case utf8.RuneCountInString(in.Supplier) > maxTextLen:
		return in, &ValidationError{Field: "supplier", Reason: "must be at most 255 characters"}
	case in.Quantity < 0:
		return in, &ValidationError{Field: "quantity", Reason: "must not be negative"}
	case in.Quantity > maxCount:
		return in, &ValidationError{Field: "quantity", Reason: "is too large"}
	case in.Price.IsNegative():
		return in, &ValidationError{Field: "price", Reason: "must not be negative"}
	case in.MinStock < 0:
		return in, &ValidationError{Field: "min_stock", Reason: "must not be negative"}
	case in.MinStock > maxCount:
		return in, &ValidationError{Field: "min_stock", Reason: "is too large"}
	}

	in.Price = in.Price.Round(2)
	if in.Price.GreaterThan(maxPrice) {
		return in, &ValidationError{Field: "price", Reason: "must not exceed " + maxPrice.StringFixed(2)}
	}
	return in, nil
}

func normalizeCategory(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", "", &ValidationError{Field: "name", Reason: "category name is required"}
	case name == UncategorizedLabel:
		return "", "", &ValidationError{Field: "name", Reason: "is reserved for uncategorized items"}
	case utf8.RuneCountInString(name) > maxTextLen:
		return "", "", &ValidationError{Field: "name", Reason: "must be at most 255 characters"}
	}
	return name, strings.TrimSpace(description), nil
}

// ItemFilter restricts a listing. Empty fields do not restrict.
type ItemFilter struct {
	// NameContains matches item names case-insensitively.
	NameContains string
	// Category matches the category display name exactly, so
	// UncategorizedLabel selects items without a category.
	Category string
}

// Matches reports whether i satisfies every set field of f.
func (f ItemFilter) Matches(i Item) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(i.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	return true
}

// StockLevel is a (name, quantity) point for stock charts.
type StockLevel struct {
	Name     string `json:"name" db:"name"`
	Quantity int    `json:"quantity" db:"quantity"`
}

type LowStockRow struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"min_stock"`
}

type InventoryLine struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	MinStock  int             `json:"min_stock"`
	Supplier  string          `json:"supplier"`
	LineValue decimal.Decimal `json:"line_value"`
}

type InventoryReport struct {
	Lines       []InventoryLine `json:"lines"`
	TotalValue  decimal.Decimal `json:"total_value"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type CategoryReportRow struct {
	Category   string          `json:"category"`
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type Summary struct {
	TotalItems      int `json:"total_items"`
	LowStockCount   int `json:"low_stock_count"`
	TotalCategories int `json:"total_categories"`
}
