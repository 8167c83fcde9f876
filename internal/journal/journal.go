// internal/journal/journal.go
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrInvalidEntry = errors.New("invalid journal entry")

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	defaultStreamLimit = 100
	maxStreamLimit     = 1000
)

// Entry records one committed mutation of an inventory record.
type Entry struct {
	ID         int64           `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	Action     string          `json:"action"`
	Payload    json.RawMessage `json:"payload"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type entryRow struct {
	ID         int64     `db:"id"`
	EntityType string    `db:"entity_type"`
	EntityID   int64     `db:"entity_id"`
	Action     string    `db:"action"`
	Payload    string    `db:"payload"`
	RecordedAt time.Time `db:"recorded_at"`
}

// NewEntry builds an entry whose payload is the JSON encoding of v.
func NewEntry(entityType string, entityID int64, action string, v any) (Entry, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal journal payload: %w", err)
	}
	return Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Payload:    payload,
	}, nil
}

func (e Entry) validate() error {
	switch {
	case e.EntityType == "":
		return fmt.Errorf("%w: missing entity type", ErrInvalidEntry)
	case e.Action == "":
		return fmt.Errorf("%w: missing action", ErrInvalidEntry)
	case len(e.Payload) == 0:
		return fmt.Errorf("%w: missing payload", ErrInvalidEntry)
	}
	return nil
}

// Journal is an append-only log of inventory mutations. Entries are written
// inside the transaction of the mutation they describe.
type Journal struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

// NewJournal creates a journal backed by db.
func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{
		db:     db,
		tracer: otel.Tracer("stockroom/journal"),
	}
}

// Record appends e within tx. Nothing is visible until tx commits.
func (j *Journal) Record(ctx context.Context, tx *sqlx.Tx, e Entry) error {
	ctx, span := j.tracer.Start(ctx, "journal.record",
		trace.WithAttributes(
			attribute.String("entity.type", e.EntityType),
			attribute.Int64("entity.id", e.EntityID),
			attribute.String("action", e.Action),
		),
	)
	defer span.End()

	if err := e.validate(); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO inventory_journal (entity_type, entity_id, action, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`), e.EntityType, e.EntityID, e.Action, string(e.Payload), time.Now().UTC().Truncate(time.Microsecond))
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Stream returns up to limit entries with an id greater than afterID, oldest
// first. A non-positive limit selects the default page size.
func (j *Journal) Stream(ctx context.Context, afterID int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultStreamLimit
	}
	if limit > maxStreamLimit {
		limit = maxStreamLimit
	}

	ctx, span := j.tracer.Start(ctx, "journal.stream",
		trace.WithAttributes(
			attribute.Int64("after.id", afterID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	var rows []entryRow
	err := j.db.SelectContext(ctx, &rows, j.db.Rebind(`
		SELECT id, entity_type, entity_id, action, payload, recorded_at
		FROM inventory_journal
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, Entry{
			ID:         r.ID,
			EntityType: r.EntityType,
			EntityID:   r.EntityID,
			Action:     r.Action,
			Payload:    json.RawMessage(r.Payload),
			RecordedAt: r.RecordedAt.UTC(),
		})
	}

	span.SetAttributes(attribute.Int("entries.streamed", len(entries)))
	return entries, nil
}
