// internal/export/handler.go
package export

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"stockroom/internal/inventory"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service inventory.Service
	logger  *log.Logger
}

func NewHandler(service inventory.Service, logger *log.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Mount registers the download routes under /export.
func (h *Handler) Mount(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Get("/inventory.xlsx", h.handleXLSX)
		r.Get("/inventory.pdf", h.handlePDF)
		r.Get("/{report}.txt", h.handleText)
	})
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteInventoryXLSX(&buf, items); err != nil {
		h.writeError(w, err)
		return
	}
	h.send(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "inventory_export.xlsx", &buf)
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.FullInventoryReport(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteInventoryPDF(&buf, report); err != nil {
		h.writeError(w, err)
		return
	}
	h.send(w, "application/pdf", "inventory_report.pdf", &buf)
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := WriteReport(r.Context(), h.service, chi.URLParam(r, "report"), &buf); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	buf.WriteTo(w)
}

// send writes a rendered file as an attachment.
func (h *Handler) send(w http.ResponseWriter, contentType, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Printf("failed to send %s: %v", filename, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoData):
		http.Error(w, "No data to export", http.StatusNotFound)
	case errors.Is(err, ErrUnknownReport):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Printf("export failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
