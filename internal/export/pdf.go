// internal/export/pdf.go
package export

import (
	"io"
	"strconv"

	"stockroom/internal/inventory"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin  = 50.0
	lineHeight = 16.0
)

var (
	pdfHeader    = []string{"Item", "Category", "Qty", "Price", "Min Stock", "Supplier"}
	columnWidths = []float64{120, 100, 50, 70, 60, 112}
)

// WriteInventoryPDF renders the inventory report as a Letter-sized table.
// The column header is repeated at the top of every page.
func WriteInventoryPDF(w io.Writer, report *inventory.InventoryReport) error {
	if len(report.Lines) == 0 {
		return ErrNoData
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle("Inventory Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			tableHeader(pdf)
		}
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 22, "Inventory Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineHeight, "Generated on: "+report.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(lineHeight)
	tableHeader(pdf)

	for _, l := range report.Lines {
		cells := []string{
			l.Name,
			l.Category,
			strconv.Itoa(l.Quantity),
			money(l.Price),
			strconv.Itoa(l.MinStock),
			l.Supplier,
		}
		for i, c := range cells {
			pdf.CellFormat(columnWidths[i], lineHeight, fit(pdf, tr, c, columnWidths[i]), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// tableHeader draws the bold column titles with a rule beneath and leaves
// the row font selected.
func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range pdfHeader {
		pdf.CellFormat(columnWidths[i], lineHeight, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 9)
}

// fit encodes the UTF-8 string s with tr, shortening it by whole runes and
// appending an ellipsis until it fits in width.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	const pad = 4
	if encoded := tr(s); pdf.GetStringWidth(encoded) <= width-pad {
		return encoded
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width-pad {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
