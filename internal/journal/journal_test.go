// internal/journal/journal_test.go
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("category", 7, ActionDeleted, map[string]int{"detached_items": 3})
	require.NoError(t, err)

	assert.Equal(t, "category", e.EntityType)
	assert.Equal(t, int64(7), e.EntityID)
	assert.Equal(t, ActionDeleted, e.Action)
	assert.JSONEq(t, `{"detached_items":3}`, string(e.Payload))
	assert.NoError(t, e.validate())
}

func TestNewEntryRejectsUnencodablePayload(t *testing.T) {
	_, err := NewEntry("item", 1, ActionCreated, make(chan int))
	assert.Error(t, err)
}

func TestEntryValidate(t *testing.T) {
	base := Entry{EntityType: "item", EntityID: 1, Action: ActionCreated, Payload: json.RawMessage(`{}`)}

	missingType := base
	missingType.EntityType = ""
	assert.ErrorIs(t, missingType.validate(), ErrInvalidEntry)

	missingAction := base
	missingAction.Action = ""
	assert.ErrorIs(t, missingAction.validate(), ErrInvalidEntry)

	missingPayload := base
	missingPayload.Payload = nil
	assert.ErrorIs(t, missingPayload.validate(), ErrInvalidEntry)
}

type fakeStreamer struct {
	afterID int64
	limit   int
	entries []Entry
	err     error
}

func (f *fakeStreamer) Stream(_ context.Context, afterID int64, limit int) ([]Entry, error) {
	f.afterID, f.limit = afterID, limit
	return f.entries, f.err
}

func TestHandleStream(t *testing.T) {
	fake := &fakeStreamer{entries: []Entry{
		{ID: 5, EntityType: "item", EntityID: 2, Action: ActionUpdated, Payload: json.RawMessage(`{"name":"Widget"}`)},
	}}
	h := NewHandler(fake, log.New(io.Discard, "", 0))

	rec := httptest.NewRecorder()
	h.HandleStream(rec, httptest.NewRequest(http.MethodGet, "/journal?after=4&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), fake.afterID)
	assert.Equal(t, 10, fake.limit)

	var got []Entry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
	assert.JSONEq(t, `{"name":"Widget"}`, string(got[0].Payload))
}

func TestHandleStreamBadCursor(t *testing.T) {
	h := NewHandler(&fakeStreamer{}, log.New(io.Discard, "", 0))

	for _, target := range []string{"/journal?after=abc", "/journal?after=-1", "/journal?limit=x"} {
		rec := httptest.NewRecorder()
		h.HandleStream(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHandleStreamFailure(t *testing.T) {
	h := NewHandler(&fakeStreamer{err: errors.New("boom")}, log.New(io.Discard, "", 0))

	rec := httptest.NewRecorder()
	h.HandleStream(rec, httptest.NewRequest(http.MethodGet, "/journal", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
