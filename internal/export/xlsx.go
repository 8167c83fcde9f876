// internal/export/xlsx.go
package export

import (
	"fmt"
	"io"

	"stockroom/internal/inventory"

	"github.com/xuri/excelize/v2"
)

const inventorySheet = "Inventory"

var xlsxHeader = []any{"Item Name", "Category", "Quantity", "Price", "Min Stock", "Supplier", "Date Added"}

// WriteInventoryXLSX writes one workbook row per item, in the order given.
func WriteInventoryXLSX(w io.Writer, items []inventory.Item) error {
	if len(items) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(inventorySheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(inventorySheet, "A", "G", 18); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}

	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			it.Name,
			it.Category,
			it.Quantity,
			it.Price.InexactFloat64(),
			it.MinStock,
			it.Supplier,
			it.DateAdded.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
