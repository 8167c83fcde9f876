// cmd/stockroom/main_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/inventory"
	"stockroom/internal/journal"
	"stockroom/internal/storage/storagetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	token string
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	db := storagetest.Open(t, "inventory_journal", "items", "categories", "users")

	_, err := auth.SeedAdmin(context.Background(), db, "admin", "admin")
	require.NoError(t, err)

	cfg := &config.Config{TokenTTL: time.Hour, LoginRatePerMinute: 100}
	srv := httptest.NewServer(newRouter(db, cfg, "test-secret", log.New(io.Discard, "", 0)))
	t.Cleanup(srv.Close)

	ts := &testServer{Server: srv}
	resp := ts.do(t, http.MethodPost, "/login", map[string]string{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	ts.token = login.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestInventoryFlow(t *testing.T) {
	ts := setupTestServer(t)

	// Mutations need a token.
	anon := &testServer{Server: ts.Server}
	assert.Equal(t, http.StatusUnauthorized, anon.do(t, http.MethodPost, "/categories", map[string]string{"name": "Tools"}).StatusCode)

	resp := ts.do(t, http.MethodPost, "/categories", map[string]string{"name": "Tools", "description": "hand tools"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	category := decode[inventory.Category](t, resp)

	resp = ts.do(t, http.MethodPost, "/items", map[string]any{
		"name": "Hammer", "category_id": category.ID, "quantity": 2, "price": "9.99", "min_stock": 5, "supplier": "Acme",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[inventory.Item](t, resp)
	assert.True(t, item.LowStock)
	assert.Equal(t, "Tools", item.Category)

	resp = anon.do(t, http.MethodGet, "/items/low-stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	low := decode[[]inventory.Item](t, resp)
	require.Len(t, low, 1)
	assert.Equal(t, item.ID, low[0].ID)

	resp = anon.do(t, http.MethodGet, "/reports/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, inventory.Summary{TotalItems: 1, LowStockCount: 1, TotalCategories: 1}, decode[inventory.Summary](t, resp))

	resp = anon.do(t, http.MethodGet, "/export/inventory.txt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "TOTAL INVENTORY VALUE: $19.98")

	// Deleting the category leaves the item uncategorized.
	require.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, fmt.Sprintf("/categories/%d", category.ID), nil).StatusCode)

	resp = anon.do(t, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[inventory.Item](t, resp)
	assert.Nil(t, updated.CategoryID)
	assert.Equal(t, inventory.UncategorizedLabel, updated.Category)

	resp = anon.do(t, http.MethodGet, "/journal", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	entries := decode[[]journal.Entry](t, resp)
	require.Len(t, entries, 3)
	assert.Equal(t, journal.ActionDeleted, entries[2].Action)
}

func TestConcurrentAddCategoryAllowsOneName(t *testing.T) {
	ts := setupTestServer(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	codes := map[int]int{}

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(map[string]string{"name": "Fasteners"})
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/categories", bytes.NewReader(body))
			req.Header.Set("Authorization", "Bearer "+ts.token)
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			resp.Body.Close()
			mu.Lock()
			codes[resp.StatusCode]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, codes[http.StatusCreated], "only one concurrent add should succeed")
	assert.Equal(t, 9, codes[http.StatusConflict])

	resp := ts.do(t, http.MethodGet, "/categories", nil)
	assert.Len(t, decode[[]inventory.Category](t, resp), 1)
}
