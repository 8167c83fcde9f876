// cmd/stockctl/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"stockroom/internal/config"
	"stockroom/internal/export"
	"stockroom/internal/inventory"
	"stockroom/internal/journal"
	"stockroom/internal/storage"
)

func main() {
	report := flag.String("report", export.ReportInventory, "report to produce: low-stock, inventory, categories or summary")
	format := flag.String("format", "text", "output format: text, xlsx or pdf (xlsx and pdf need -report inventory)")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	logger := log.New(os.Stderr, "[stockctl] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Dialect, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.Fatalf("Failed to create schema: %v", err)
	}

	svc := inventory.NewService(db, journal.NewJournal(db), logger)

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Fatalf("Failed to create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	if err := run(ctx, svc, *report, *format, w); err != nil {
		if errors.Is(err, export.ErrNoData) {
			logger.Printf("No data to export!")
			return
		}
		logger.Fatalf("Export failed: %v", err)
	}
	if *out != "" {
		logger.Printf("Data exported to %s", *out)
	}
}

func run(ctx context.Context, svc inventory.Service, report, format string, w io.Writer) error {
	if format != "text" && report != export.ReportInventory {
		return fmt.Errorf("format %q is only available for the %s report", format, export.ReportInventory)
	}

	switch format {
	case "text":
		return export.WriteReport(ctx, svc, report, w)
	case "xlsx":
		items, err := svc.ListItems(ctx)
		if err != nil {
			return err
		}
		return export.WriteInventoryXLSX(w, items)
	case "pdf":
		full, err := svc.FullInventoryReport(ctx)
		if err != nil {
			return err
		}
		return export.WriteInventoryPDF(w, full)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
