// Package httpapi serves the sync endpoints devices talk to:
//
//	GET  /api/ping   liveness, 204
//	POST /api/sync   a models.SyncBatch; 200 with a models.SyncResult
//
// A batch is validated as a whole and stored as a whole; any invalid entry
// rejects the batch with 422 so the device keeps its queue intact.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/auth"
	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"github.com/dmitrijs2005/offlinefeed/internal/server/repositories/syncentries"
)

const (
	maxBatchBytes   = 4 << 20
	anonymousDevice = "anonymous"
)

type Option func(*Handler)

// WithSecret requires a device token signed with secret on /api/sync.
func WithSecret(secret []byte) Option {
	return func(h *Handler) { h.secret = secret }
}

// WithClock overrides the receive timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

type Handler struct {
	repo   syncentries.Repository
	log    logging.Logger
	secret []byte
	now    func() time.Time
}

func New(repo syncentries.Repository, log logging.Logger, opts ...Option) *Handler {
	h := &Handler{repo: repo, log: log.With("module", "httpapi"), now: time.Now}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Routes returns the API mux wrapped in request logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ping", h.ping)
	mux.HandleFunc("POST /api/sync", h.sync)
	return h.logRequests(mux)
}

func (h *Handler) ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	device, err := h.device(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var batch models.SyncBatch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes)).Decode(&batch); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "batch too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "malformed batch", http.StatusBadRequest)
		return
	}

	received := h.now().UTC()
	entries := make([]*syncentries.Entry, 0, len(batch.Entries))
	for i, e := range batch.Entries {
		entry, err := toEntry(e, device, received)
		if err != nil {
			http.Error(w, fmt.Sprintf("entry %d: %v", i, err), http.StatusUnprocessableEntity)
			return
		}
		entries = append(entries, entry)
	}

	inserted, err := h.repo.Insert(ctx, entries)
	if err != nil {
		h.log.Error(ctx, "storing sync batch failed", "device", device, "error", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	res := models.SyncResult{Accepted: inserted, Duplicates: int64(len(entries)) - inserted}
	h.log.Info(ctx, "sync batch stored", "device", device, "accepted", res.Accepted, "duplicates", res.Duplicates)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func (h *Handler) device(r *http.Request) (string, error) {
	if len(h.secret) == 0 {
		return anonymousDevice, nil
	}
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tok == "" {
		return "", auth.ErrInvalidToken
	}
	return auth.DeviceFromToken(tok, h.secret)
}

func toEntry(e *models.SyncQueueEntry, device string, received time.Time) (*syncentries.Entry, error) {
	if e == nil {
		return nil, errors.New("null entry")
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	var p models.SyncPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	if !p.Op.Known() {
		return nil, fmt.Errorf("unknown op %q", p.Op)
	}
	if p.DraftID == "" {
		return nil, errors.New("draftId is required")
	}
	return &syncentries.Entry{
		ID:         e.ID,
		DeviceID:   device,
		Op:         p.Op,
		DraftID:    p.DraftID,
		Payload:    e.Payload,
		CreatedAt:  e.CreatedAt,
		ReceivedAt: received,
	}, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.log.Debug(r.Context(), "request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
