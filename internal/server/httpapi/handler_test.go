package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/auth"
	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/server/repositories/syncentries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func entry(t *testing.T, op models.SyncOp, draftID string) *models.SyncQueueEntry {
	t.Helper()
	e, err := models.NewSyncQueueEntry(created, models.SyncPayload{Op: op, DraftID: draftID})
	require.NoError(t, err)
	return e
}

func post(t *testing.T, h http.Handler, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/sync", bytes.NewReader(b))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	h := New(syncentries.NewMemoryRepository(), logging.Nop()).Routes()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSync_StoresAndDeduplicates(t *testing.T) {
	repo := syncentries.NewMemoryRepository()
	h := New(repo, logging.Nop(), WithClock(func() time.Time { return created.Add(time.Hour) })).Routes()

	batch := models.SyncBatch{Entries: []*models.SyncQueueEntry{
		entry(t, models.SyncOpDraftSave, "d1"),
		entry(t, models.SyncOpDraftUpdate, "d1"),
	}}

	rec := post(t, h, batch, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res models.SyncResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, models.SyncResult{Accepted: 2}, res)

	rec = post(t, h, batch, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.Equal(t, models.SyncResult{Accepted: 0, Duplicates: 2}, res)

	hist, err := repo.ByDraft(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, anonymousDevice, hist[0].DeviceID)
	assert.True(t, hist[0].ReceivedAt.Equal(created.Add(time.Hour)))
}

func TestSync_RejectsWholeBatch(t *testing.T) {
	repo := syncentries.NewMemoryRepository()
	h := New(repo, logging.Nop()).Routes()

	bad, err := models.NewSyncQueueEntry(created, models.SyncPayload{Op: "post.publish", DraftID: "d1"})
	require.NoError(t, err)

	rec := post(t, h, models.SyncBatch{Entries: []*models.SyncQueueEntry{entry(t, models.SyncOpDraftSave, "d1"), bad}}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "entry 1")

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	req := httptest.NewRequest(http.MethodPost, "/api/sync", strings.NewReader("{nope"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSync_RequiresDeviceToken(t *testing.T) {
	secret := []byte("shared")
	repo := syncentries.NewMemoryRepository()
	h := New(repo, logging.Nop(), WithSecret(secret)).Routes()
	batch := models.SyncBatch{Entries: []*models.SyncQueueEntry{entry(t, models.SyncOpDraftDelete, "d9")}}

	rec := post(t, h, batch, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := auth.GenerateToken("phone", []byte("wrong"), time.Minute)
	require.NoError(t, err)
	rec = post(t, h, batch, http.Header{"Authorization": {"Bearer " + forged}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := auth.GenerateToken("phone", secret, time.Minute)
	require.NoError(t, err)
	rec = post(t, h, batch, http.Header{"Authorization": {"Bearer " + tok}})
	require.Equal(t, http.StatusOK, rec.Code)

	hist, err := repo.ByDraft(context.Background(), "d9")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "phone", hist[0].DeviceID)
}
