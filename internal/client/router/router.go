// Package router is the request-interception layer. Router implements
// http.RoundTripper: every outbound request is classified by URL shape and
// served by one of the caching strategies, backed by per-class buckets.
package router

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/client/buckets"
	"github.com/dmitrijs2005/offlinefeed/internal/common"
	"github.com/dmitrijs2005/offlinefeed/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	DefaultNetworkTimeout = 5 * time.Second
	DefaultGeneration     = 1

	tracerName = "github.com/dmitrijs2005/offlinefeed/internal/client/router"
)

// Config controls routing. Origin is the application's own origin
// (scheme://host[:port]); it decides same- versus cross-origin rules.
type Config struct {
	Origin              string
	Generation          int
	NetworkTimeout      time.Duration
	RevalidatePerMinute int
}

// Option customizes a Router.
type Option func(*Router)

// WithTransport sets the transport used for network fetches.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *Router) { r.next = rt }
}

// WithClock overrides the time stamped on stored responses.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Router) { r.tracer = t }
}

// Router serves requests from buckets according to each request's class.
// Detached refreshes are tracked; Wait blocks until they settle.
type Router struct {
	cfg     Config
	origin  *url.URL
	buckets *buckets.Store
	next    http.RoundTripper
	log     logging.Logger
	now     func() time.Time
	tracer  trace.Tracer
	limiter *rate.Limiter

	group singleflight.Group
	wg    sync.WaitGroup
}

// New builds a Router over store. An unparsable origin is an error.
func New(cfg Config, store *buckets.Store, log logging.Logger, opts ...Option) (*Router, error) {
	var origin *url.URL
	if cfg.Origin != "" {
		u, err := url.Parse(cfg.Origin)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("invalid app origin %q", cfg.Origin)
		}
		origin = u
	}
	if cfg.Generation <= 0 {
		cfg.Generation = DefaultGeneration
	}
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = DefaultNetworkTimeout
	}
	if log == nil {
		log = logging.Nop()
	}

	r := &Router{
		cfg:     cfg,
		origin:  origin,
		buckets: store,
		next:    http.DefaultTransport,
		log:     log.With("component", "router"),
		now:     time.Now,
		tracer:  otel.Tracer(tracerName),
	}
	if cfg.RevalidatePerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RevalidatePerMinute)), cfg.RevalidatePerMinute)
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// BucketName returns the bucket for class in generation gen. Both default
// classes share one "default" namespace.
func BucketName(class Class, gen int) string {
	name := string(class)
	if class == ClassDefaultSame || class == ClassDefaultCross {
		name = "default"
	}
	return name + "-v" + strconv.Itoa(gen)
}

// Client returns an *http.Client that routes through r.
func (r *Router) Client() *http.Client {
	return &http.Client{Transport: r}
}

// Wait blocks until every detached refresh and every late network-first fetch
// has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

// RoundTrip implements http.RoundTripper.
func (r *Router) RoundTrip(req *http.Request) (*http.Response, error) {
	class := Classify(req, r.origin)
	if class == ClassPassthrough {
		return r.next.RoundTrip(req)
	}
	strategy := StrategyFor(class, req.Method)
	bucket := BucketName(class, r.cfg.Generation)

	ctx, span := r.tracer.Start(req.Context(), "router."+string(strategy),
		trace.WithAttributes(
			attribute.String("router.class", string(class)),
			attribute.String("router.strategy", string(strategy)),
			attribute.String("http.method", req.Method),
		))
	defer span.End()
	req = req.WithContext(ctx)

	var (
		resp *http.Response
		hit  bool
		err  error
	)
	switch strategy {
	case CacheFirst:
		resp, hit, err = r.cacheFirst(req, bucket)
	case StaleWhileRevalidate, ReadThrough:
		resp, hit, err = r.staleWhileRevalidate(req, bucket)
	case NetworkFirst:
		resp, hit, err = r.networkFirst(req, bucket)
	default:
		resp, err = r.next.RoundTrip(req)
		if err != nil {
			err = fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
		}
	}

	span.SetAttributes(attribute.Bool("router.cache_hit", hit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Debug(ctx, "request failed", "class", class, "url", req.URL.String(), "error", err)
		return nil, err
	}
	return resp, nil
}

// fetch performs the network request and buffers the response.
func (r *Router) fetch(ctx context.Context, req *http.Request) (*buckets.Entry, error) {
	resp, err := r.next.RoundTrip(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", common.ErrNetworkFailure, err)
	}
	return &buckets.Entry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: r.now(),
	}, nil
}

// fetchAndStore fetches and stores 2xx responses under key. Store failures
// are logged; the fetched response is still returned.
func (r *Router) fetchAndStore(ctx context.Context, req *http.Request, bucket, key string) (*buckets.Entry, error) {
	e, err := r.fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	if e.Status >= 200 && e.Status < 300 {
		if err := r.buckets.Put(bucket, key, e); err != nil {
			r.log.Warn(ctx, "failed to store response", "bucket", bucket, "key", key, "error", err)
		}
	}
	return e, nil
}

// coalescedFetch shares one in-flight miss between identical requests.
func (r *Router) coalescedFetch(req *http.Request, bucket, key string) (*buckets.Entry, error) {
	v, err, _ := r.group.Do(bucket+"|"+key, func() (any, error) {
		return r.fetchAndStore(req.Context(), req, bucket, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*buckets.Entry), nil
}

// lookup returns the cached entry for key, or nil. Read errors count as a
// miss.
func (r *Router) lookup(ctx context.Context, bucket, key string) *buckets.Entry {
	e, err := r.buckets.Get(bucket, key)
	if err != nil {
		if !isNotFound(err) {
			r.log.Warn(ctx, "bucket read failed", "bucket", bucket, "key", key, "error", err)
		}
		return nil
	}
	return e
}

// toResponse materializes a stored entry for req. Each call gets its own
// body reader.
func toResponse(req *http.Request, e *buckets.Entry, hit bool) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	if hit {
		h.Set(common.CacheStatusHeader, "hit")
	} else {
		h.Set(common.CacheStatusHeader, "miss")
	}
	body := e.Body
	if req.Method == http.MethodHead {
		body = nil
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
