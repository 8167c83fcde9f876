// internal/journal/handler.go
package journal

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// Streamer reads journal entries. *Journal satisfies it.
type Streamer interface {
	Stream(ctx context.Context, afterID int64, limit int) ([]Entry, error)
}

type Handler struct {
	journal Streamer
	logger  *log.Logger
}

func NewHandler(journal Streamer, logger *log.Logger) *Handler {
	return &Handler{journal: journal, logger: logger}
}

// HandleStream serves GET /journal?after=<id>&limit=<n>.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var afterID int64
	if s := q.Get("after"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			http.Error(w, "invalid after cursor", http.StatusBadRequest)
			return
		}
		afterID = v
	}

	var limit int
	if s := q.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	entries, err := h.journal.Stream(r.Context(), afterID, limit)
	if err != nil {
		h.logger.Printf("journal stream failed: %v", err)
		http.Error(w, "failed to read journal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}
