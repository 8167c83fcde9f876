// internal/inventory/implementation.go
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"stockroom/internal/journal"
	"stockroom/internal/storage"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const itemSelect = `
	SELECT i.id, i.name, i.category_id,
		COALESCE(c.name, '') AS category_name,
		COALESCE(i.quantity, 0) AS quantity,
		COALESCE(i.price, 0) AS price,
		COALESCE(i.min_stock, 0) AS min_stock,
		COALESCE(i.supplier, '') AS supplier,
		i.date_added
	FROM items i
	LEFT JOIN categories c ON c.id = i.category_id
`

type itemRow struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	CategoryID   sql.NullInt64   `db:"category_id"`
	CategoryName string          `db:"category_name"`
	Quantity     int             `db:"quantity"`
	Price        decimal.Decimal `db:"price"`
	MinStock     int             `db:"min_stock"`
	Supplier     string          `db:"supplier"`
	DateAdded    time.Time       `db:"date_added"`
}

func (r itemRow) toItem() Item {
	it := Item{
		ID:        r.ID,
		Name:      r.Name,
		Category:  UncategorizedLabel,
		Quantity:  r.Quantity,
		Price:     r.Price,
		MinStock:  r.MinStock,
		Supplier:  r.Supplier,
		DateAdded: r.DateAdded.UTC(),
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.Int64
		it.CategoryID = &id
		it.Category = r.CategoryName
	}
	it.LowStock = it.IsLowStock()
	return it
}

// service implements the Service interface.
type service struct {
	db        *sqlx.DB
	journal   *journal.Journal
	logger    *log.Logger
	tracer    trace.Tracer
	mutations metric.Int64Counter
	now       func() time.Time
}

// NewService creates the inventory store on top of db. Mutations are
// journaled through j in the same transaction.
func NewService(db *sqlx.DB, j *journal.Journal, logger *log.Logger) Service {
	mutations, err := otel.Meter("stockroom/inventory").Int64Counter(
		"inventory.mutations",
		metric.WithDescription("Committed inventory mutations"),
	)
	if err != nil {
		logger.Printf("failed to create mutation counter, metrics disabled: %v", err)
		mutations, _ = noop.NewMeterProvider().Meter("stockroom/inventory").Int64Counter("inventory.mutations")
	}

	return &service{
		db:        db,
		journal:   j,
		logger:    logger,
		tracer:    otel.Tracer("stockroom/inventory"),
		mutations: mutations,
		now:       time.Now,
	}
}

// read runs fn in a read-only transaction.
func (s *service) read(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return s.inTx(ctx, op, true, fn)
}

// write runs fn in a read-write transaction and counts the mutation once committed.
func (s *service) write(ctx context.Context, op string, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	if err := s.inTx(ctx, op, false, fn); err != nil {
		return err
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	return nil
}

func (s *service) inTx(ctx context.Context, op string, readOnly bool, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	ctx, span := s.tracer.Start(ctx, "inventory."+op,
		trace.WithAttributes(attribute.Bool("tx.read_only", readOnly)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		return &StorageError{Op: op, Err: fmt.Errorf("begin transaction: %w", err)}
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		if isDomainError(err) {
			return err
		}
		s.logger.Printf("%s failed: %v", op, err)
		return &StorageError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Printf("%s commit failed: %v", op, err)
		return &StorageError{Op: op, Err: fmt.Errorf("commit transaction: %w", err)}
	}
	return nil
}

func (s *service) record(ctx context.Context, tx *sqlx.Tx, entityType string, id int64, action string, payload any) error {
	entry, err := journal.NewEntry(entityType, id, action, payload)
	if err != nil {
		return err
	}
	return s.journal.Record(ctx, tx, entry)
}

// AddCategory creates a category with a unique name.
func (s *service) AddCategory(ctx context.Context, name, description string) (*Category, error) {
	name, description, err := normalizeCategory(name, description)
	if err != nil {
		return nil, err
	}

	category := &Category{Name: name, Description: description}
	err = s.write(ctx, "add_category", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureNameFree(ctx, tx, name, 0); err != nil {
			return err
		}

		id, err := storage.InsertID(ctx, tx, `INSERT INTO categories (name, description) VALUES (?, ?)`, name, description)
		if err != nil {
			if storage.IsUniqueViolation(err) {
				return &DuplicateNameError{Name: name}
			}
			return fmt.Errorf("insert category: %w", err)
		}
		category.ID = id

		return s.record(ctx, tx, entityCategory, id, journal.ActionCreated, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category and replaces its description.
func (s *service) UpdateCategory(ctx context.Context, id int64, name, description string) (*Category, error) {
	name, description, err := normalizeCategory(name, description)
	if err != nil {
		return nil, err
	}

	category := &Category{ID: id, Name: name, Description: description}
	err = s.write(ctx, "update_category", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, tx, name, id); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE categories SET name = ?, description = ? WHERE id = ?`), name, description, id)
		if err != nil {
			if storage.IsUniqueViolation(err) {
				return &DuplicateNameError{Name: name}
			}
			return fmt.Errorf("update category: %w", err)
		}

		return s.record(ctx, tx, entityCategory, id, journal.ActionUpdated, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category and detaches its items in the same
// transaction. The items themselves are kept.
func (s *service) DeleteCategory(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_category", func(ctx context.Context, tx *sqlx.Tx) error {
		category, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}

		// The foreign key does this too; tables created without it still detach.
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE items SET category_id = NULL WHERE category_id = ?`), id)
		if err != nil {
			return fmt.Errorf("detach items: %w", err)
		}
		detached, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("detach items: %w", err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM categories WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}

		return s.record(ctx, tx, entityCategory, id, journal.ActionDeleted, struct {
			Category      *Category `json:"category"`
			DetachedItems int64     `json:"detached_items"`
		}{category, detached})
	})
}

// ListCategories returns every category ordered by name.
func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	err := s.read(ctx, "list_categories", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		categories, err = listCategories(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory returns a single category.
func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	var category *Category
	err := s.read(ctx, "get_category", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		category, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// AddItem stocks a new item, stamping its date_added.
func (s *service) AddItem(ctx context.Context, in ItemInput) (*Item, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var item *Item
	err = s.write(ctx, "add_item", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureCategoryRef(ctx, tx, in.CategoryID); err != nil {
			return err
		}

		dateAdded := s.now().UTC().Truncate(time.Microsecond)
		id, err := storage.InsertID(ctx, tx, `
			INSERT INTO items (name, category_id, quantity, price, min_stock, supplier, date_added)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.Name, in.CategoryID, in.Quantity, in.Price, in.MinStock, in.Supplier, dateAdded,
		)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}

		if item, err = getItem(ctx, tx, id); err != nil {
			return err
		}
		return s.record(ctx, tx, entityItem, id, journal.ActionCreated, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem replaces every mutable field of an item. date_added is kept.
func (s *service) UpdateItem(ctx context.Context, id int64, in ItemInput) (*Item, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var item *Item
	err = s.write(ctx, "update_item", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := getItem(ctx, tx, id); err != nil {
			return err
		}
		if err := ensureCategoryRef(ctx, tx, in.CategoryID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE items
			SET name = ?, category_id = ?, quantity = ?, price = ?, min_stock = ?, supplier = ?
			WHERE id = ?`),
			in.Name, in.CategoryID, in.Quantity, in.Price, in.MinStock, in.Supplier, id,
		)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}

		if item, err = getItem(ctx, tx, id); err != nil {
			return err
		}
		return s.record(ctx, tx, entityItem, id, journal.ActionUpdated, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *service) DeleteItem(ctx context.Context, id int64) error {
	return s.write(ctx, "delete_item", func(ctx context.Context, tx *sqlx.Tx) error {
		item, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM items WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}

		return s.record(ctx, tx, entityItem, id, journal.ActionDeleted, item)
	})
}

// GetItem returns a single item with its category display name.
func (s *service) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item *Item
	err := s.read(ctx, "get_item", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		item, err = getItem(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns every item ordered by id.
func (s *service) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.read(ctx, "list_items", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		items, err = listItems(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FilterItems returns the items, ordered by id, that match f.
func (s *service) FilterItems(ctx context.Context, f ItemFilter) ([]Item, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	return FilterItems(items, f), nil
}

// LowStockItems returns the items at or below their minimum stock, lowest
// quantity first.
func (s *service) LowStockItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := s.read(ctx, "low_stock_items", func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		items, err = lowStockItems(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// TopLowestStock returns the n items with the smallest quantities.
func (s *service) TopLowestStock(ctx context.Context, n int) ([]StockLevel, error) {
	if n < 0 {
		return nil, &ValidationError{Field: "n", Reason: "must not be negative"}
	}
	levels := []StockLevel{}
	if n == 0 {
		return levels, nil
	}

	err := s.read(ctx, "top_lowest_stock", func(ctx context.Context, tx *sqlx.Tx) error {
		return tx.SelectContext(ctx, &levels, tx.Rebind(`
			SELECT name, COALESCE(quantity, 0) AS quantity
			FROM items
			ORDER BY quantity ASC, id ASC
			LIMIT ?`), n)
	})
	if err != nil {
		return nil, err
	}
	return levels, nil
}

// LowStockReport lists the low-stock items in LowStockItems order.
func (s *service) LowStockReport(ctx context.Context) ([]LowStockRow, error) {
	items, err := s.LowStockItems(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLowStockReport(items), nil
}

// FullInventoryReport lists all items by name with their values.
func (s *service) FullInventoryReport(ctx context.Context) (*InventoryReport, error) {
	var report *InventoryReport
	err := s.read(ctx, "full_inventory_report", func(ctx context.Context, tx *sqlx.Tx) error {
		items, err := listItems(ctx, tx)
		if err != nil {
			return err
		}
		report = BuildInventoryReport(items, s.now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// CategoryReport totals item counts and values per category.
func (s *service) CategoryReport(ctx context.Context) ([]CategoryReportRow, error) {
	var rows []CategoryReportRow
	err := s.read(ctx, "category_report", func(ctx context.Context, tx *sqlx.Tx) error {
		categories, err := listCategories(ctx, tx)
		if err != nil {
			return err
		}
		items, err := listItems(ctx, tx)
		if err != nil {
			return err
		}
		rows = BuildCategoryReport(categories, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SummaryCounts counts items, low-stock items, and categories.
func (s *service) SummaryCounts(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.read(ctx, "summary_counts", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &summary.TotalItems, `SELECT COUNT(*) FROM items`); err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if err := tx.GetContext(ctx, &summary.LowStockCount, `SELECT COUNT(*) FROM items WHERE quantity <= min_stock`); err != nil {
			return fmt.Errorf("count low stock items: %w", err)
		}
		if err := tx.GetContext(ctx, &summary.TotalCategories, `SELECT COUNT(*) FROM categories`); err != nil {
			return fmt.Errorf("count categories: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func getCategory(ctx context.Context, tx *sqlx.Tx, id int64) (*Category, error) {
	category := &Category{}
	err := tx.GetContext(ctx, category, tx.Rebind(`
		SELECT id, name, COALESCE(description, '') AS description
		FROM categories
		WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: entityCategory, ID: id}
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

func listCategories(ctx context.Context, tx *sqlx.Tx) ([]Category, error) {
	categories := []Category{}
	err := tx.SelectContext(ctx, &categories, `SELECT id, name, COALESCE(description, '') AS description FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	// Sorted here so the order is byte-wise whatever the column collation.
	sort.Slice(categories, func(a, b int) bool { return categories[a].Name < categories[b].Name })
	return categories, nil
}

// ensureNameFree fails if a category other than excludeID is called name.
func ensureNameFree(ctx context.Context, tx *sqlx.Tx, name string, excludeID int64) error {
	var id int64
	err := tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM categories WHERE name = ? AND id <> ?`), name, excludeID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check category name: %w", err)
	}
	return &DuplicateNameError{Name: name}
}

// ensureCategoryRef rejects a category id that does not exist.
func ensureCategoryRef(ctx context.Context, tx *sqlx.Tx, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := getCategory(ctx, tx, *categoryID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &ValidationError{Field: "category_id", Reason: fmt.Sprintf("category %d does not exist", *categoryID)}
		}
		return err
	}
	return nil
}

func getItem(ctx context.Context, tx *sqlx.Tx, id int64) (*Item, error) {
	var row itemRow
	err := tx.GetContext(ctx, &row, tx.Rebind(itemSelect+` WHERE i.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Entity: entityItem, ID: id}
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	item := row.toItem()
	return &item, nil
}

func listItems(ctx context.Context, tx *sqlx.Tx) ([]Item, error) {
	return selectItems(ctx, tx, itemSelect+` ORDER BY i.id ASC`)
}

func lowStockItems(ctx context.Context, tx *sqlx.Tx) ([]Item, error) {
	return selectItems(ctx, tx, itemSelect+`
		WHERE i.quantity <= i.min_stock
		ORDER BY i.quantity ASC, i.id ASC`)
}

func selectItems(ctx context.Context, tx *sqlx.Tx, query string, args ...any) ([]Item, error) {
	var rows []itemRow
	if err := tx.SelectContext(ctx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, nil
}
