// cmd/stockctl/main_test.go
package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"stockroom/internal/export"
	"stockroom/internal/inventory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	inventory.Service
	items []inventory.Item
}

func (f *fakeService) ListItems(context.Context) ([]inventory.Item, error) {
	return f.items, nil
}

func (f *fakeService) FullInventoryReport(context.Context) (*inventory.InventoryReport, error) {
	return inventory.BuildInventoryReport(f.items, time.Now()), nil
}

func TestRun(t *testing.T) {
	svc := &fakeService{items: []inventory.Item{
		{ID: 1, Name: "Drill", Category: "N/A", Quantity: 2, Price: decimal.NewFromInt(80), MinStock: 1},
	}}
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, run(ctx, svc, export.ReportInventory, "text", &buf))
	assert.Contains(t, buf.String(), "TOTAL INVENTORY VALUE: $160.00")

	buf.Reset()
	require.NoError(t, run(ctx, svc, export.ReportInventory, "pdf", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	require.NoError(t, run(ctx, svc, export.ReportInventory, "xlsx", &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestRunRejects(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	assert.Error(t, run(ctx, &fakeService{}, export.ReportLowStock, "pdf", &buf))
	assert.Error(t, run(ctx, &fakeService{}, export.ReportInventory, "csv", &buf))
	assert.ErrorIs(t, run(ctx, &fakeService{}, export.ReportInventory, "xlsx", &buf), export.ErrNoData)
}
