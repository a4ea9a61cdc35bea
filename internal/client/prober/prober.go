// Package prober audits every storage backend (request buckets, the
// persistent store, the ephemeral session store) for diagnostics. Audits are
// read-only; WriteProbe and PurgeEverything are the only writers and are
// only ever run on explicit request.
package prober

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/buckets"
	"github.com/dmitrijs2005/offlinefeed/internal/client/ephemeral"
	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
)

const canaryKey = "persistence-probe"

// BucketStore is the subset of buckets.Store the prober reads and writes.
type BucketStore interface {
	Names() ([]string, error)
	ForEach(bucket string, fn func(key string, raw []byte) error) error
	Get(bucket, key string) (*buckets.Entry, error)
	Put(bucket, key string, e *buckets.Entry) error
	DeleteBucket(name string) error
}

// PersistentStore is the subset of store.Store the prober uses.
type PersistentStore interface {
	Tables(ctx context.Context) ([]string, error)
	EstimateUsage(ctx context.Context) (models.StorageEstimate, error)
	Put(ctx context.Context, table models.Table, rec models.Record) error
	Get(ctx context.Context, table models.Table, key string) (models.Record, error)
	ClearAll(ctx context.Context) error
}

type BucketAudit struct {
	Name       string `json:"name"`
	EntryCount int    `json:"entryCount"`
	TotalBytes int64  `json:"totalBytes"`
	NonEmpty   bool   `json:"nonEmpty"`
}

type StoreAudit struct {
	TableNames     []string `json:"tableNames"`
	EstimatedBytes int64    `json:"estimatedBytes"`
}

type EphemeralAudit struct {
	KeyCount   int   `json:"keyCount"`
	TotalBytes int64 `json:"totalBytes"`
}

// ProbeResult reports which backends still hold the canary.
type ProbeResult struct {
	BucketSurvived bool      `json:"bucketSurvived"`
	StoreSurvived  bool      `json:"storeSurvived"`
	Timestamp      time.Time `json:"timestamp"`
}

// Report aggregates all three audits.
type Report struct {
	Buckets   []BucketAudit  `json:"buckets"`
	Store     StoreAudit     `json:"store"`
	Ephemeral EphemeralAudit `json:"ephemeral"`
}

type Prober struct {
	buckets   BucketStore
	store     PersistentStore
	ephemeral ephemeral.Store
	log       logging.Logger
	now       func() time.Time
}

func New(b BucketStore, s PersistentStore, e ephemeral.Store, log logging.Logger) *Prober {
	if log == nil {
		log = logging.Nop()
	}
	return &Prober{buckets: b, store: s, ephemeral: e, log: log.With("component", "prober"), now: time.Now}
}

// AuditBuckets enumerates every bucket and sums stored body sizes. An entry
// that cannot be decoded is logged and counted with zero bytes.
func (p *Prober) AuditBuckets(ctx context.Context) ([]BucketAudit, error) {
	names, err := p.buckets.Names()
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	out := make([]BucketAudit, 0, len(names))
	for _, name := range names {
		a := BucketAudit{Name: name}
		err := p.buckets.ForEach(name, func(key string, raw []byte) error {
			a.EntryCount++
			e, err := buckets.Decode(raw)
			if err != nil {
				p.log.Warn(ctx, "unmeasurable bucket entry", "bucket", name, "key", key, "error", err)
				return nil
			}
			a.TotalBytes += int64(len(e.Body))
			return nil
		})
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return out, fmt.Errorf("walk bucket %s: %w", name, err)
		}
		a.NonEmpty = a.EntryCount > 0
		out = append(out, a)
	}
	return out, nil
}

func (p *Prober) AuditPersistentStore(ctx context.Context) (StoreAudit, error) {
	var a StoreAudit
	names, err := p.store.Tables(ctx)
	if err != nil {
		return a, err
	}
	a.TableNames = names
	est, err := p.store.EstimateUsage(ctx)
	if err != nil {
		return a, err
	}
	a.EstimatedBytes = est.Used
	return a, nil
}

// AuditEphemeralStore is expected to report zero keys right after a fresh
// session starts.
func (p *Prober) AuditEphemeralStore(ctx context.Context) (EphemeralAudit, error) {
	var a EphemeralAudit
	keys, err := p.ephemeral.Keys(ctx)
	if err != nil {
		return a, err
	}
	size, err := p.ephemeral.Size(ctx)
	if err != nil {
		return a, err
	}
	a.KeyCount, a.TotalBytes = len(keys), size
	return a, nil
}

// Report runs every audit. A failing audit is logged, leaves its section
// zero, and is joined into the returned error.
func (p *Prober) Report(ctx context.Context) (Report, error) {
	var (
		r    Report
		errs []error
		err  error
	)
	if r.Buckets, err = p.AuditBuckets(ctx); err != nil {
		errs = append(errs, fmt.Errorf("buckets: %w", err))
	}
	if r.Store, err = p.AuditPersistentStore(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if r.Ephemeral, err = p.AuditEphemeralStore(ctx); err != nil {
		errs = append(errs, fmt.Errorf("ephemeral: %w", err))
	}
	if len(errs) > 0 {
		p.log.Warn(ctx, "audit incomplete", "error", errors.Join(errs...))
	}
	return r, errors.Join(errs...)
}

type canary struct {
	Timestamp time.Time `json:"timestamp"`
}

// WriteProbe writes one canary into the probe bucket and one into the cache
// table, to be read back after a restart by ReadProbe.
func (p *Prober) WriteProbe(ctx context.Context) (time.Time, error) {
	ts := p.now().UTC().Truncate(time.Millisecond)
	payload, err := json.Marshal(canary{Timestamp: ts})
	if err != nil {
		return time.Time{}, err
	}

	if err := p.buckets.Put(buckets.ProbeBucket, canaryKey, &buckets.Entry{
		Status:   200,
		Body:     payload,
		StoredAt: ts,
	}); err != nil {
		return time.Time{}, fmt.Errorf("write bucket canary: %w", err)
	}
	if err := p.store.Put(ctx, models.TableCache, &models.CacheEntry{
		CacheKey:  canaryKey,
		Payload:   payload,
		ExpiresAt: ts.AddDate(100, 0, 0),
	}); err != nil {
		return time.Time{}, fmt.Errorf("write store canary: %w", err)
	}
	p.log.Info(ctx, "persistence probe written", "timestamp", ts)
	return ts, nil
}

// ReadProbe reports which backends still hold the canary. A missing canary
// is a result, not an error.
func (p *Prober) ReadProbe(ctx context.Context) (ProbeResult, error) {
	var res ProbeResult

	e, err := p.buckets.Get(buckets.ProbeBucket, canaryKey)
	switch {
	case err == nil:
		res.BucketSurvived = true
		res.Timestamp = decodeCanary(e.Body, e.StoredAt)
	case !errors.Is(err, common.ErrNotFound):
		return res, fmt.Errorf("read bucket canary: %w", err)
	}

	rec, err := p.store.Get(ctx, models.TableCache, canaryKey)
	switch {
	case err == nil:
		res.StoreSurvived = true
		if ce, ok := rec.(*models.CacheEntry); ok && res.Timestamp.IsZero() {
			res.Timestamp = decodeCanary(ce.Payload, time.Time{})
		}
	case errors.Is(err, common.ErrNotFound):
	case errors.Is(err, common.ErrStorageUnavailable):
		p.log.Warn(ctx, "store unavailable during probe read", "error", err)
	default:
		return res, fmt.Errorf("read store canary: %w", err)
	}
	return res, nil
}

func decodeCanary(raw []byte, fallback time.Time) time.Time {
	var c canary
	if err := json.Unmarshal(raw, &c); err != nil || c.Timestamp.IsZero() {
		return fallback
	}
	return c.Timestamp
}

// PurgeEverything deletes every bucket, truncates the persistent store and
// clears the ephemeral store. It is irreversible. Every backend is attempted
// even if an earlier one fails.
func (p *Prober) PurgeEverything(ctx context.Context) error {
	var errs []error

	names, err := p.buckets.Names()
	if err != nil {
		errs = append(errs, fmt.Errorf("list buckets: %w", err))
	}
	for _, n := range names {
		if err := p.buckets.DeleteBucket(n); err != nil {
			errs = append(errs, fmt.Errorf("delete bucket %s: %w", n, err))
		}
	}
	if err := p.store.ClearAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear store: %w", err))
	}
	if err := p.ephemeral.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear ephemeral: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		p.log.Error(ctx, "purge incomplete", "error", err)
		return err
	}
	p.log.Warn(ctx, "all local data purged", "buckets", len(names))
	return nil
}
