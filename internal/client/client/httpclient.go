package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/offlinefeed/internal/auth"
	"github.com/dmitrijs2005/offlinefeed/internal/client/models"
)

const (
	pingPath = "/api/ping"
	syncPath = "/api/sync"

	defaultTimeout = 10 * time.Second
	tokenTTL       = 5 * time.Minute
)

type HTTPClient struct {
	base *url.URL
	http *http.Client

	deviceID string
	secret   []byte
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.http = c }
}

// WithDeviceAuth signs every sync request with a short-lived token for
// deviceID. An empty secret leaves requests unauthenticated.
func WithDeviceAuth(deviceID string, secret []byte) Option {
	return func(h *HTTPClient) {
		h.deviceID = deviceID
		h.secret = secret
	}
}

// NewHTTPClient targets endpoint, which may omit the scheme ("localhost:8080").
func NewHTTPClient(endpoint string, opts ...Option) (*HTTPClient, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("server endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid server endpoint %q", endpoint)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &HTTPClient{base: u, http: &http.Client{Timeout: defaultTimeout}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) endpoint(path string) string {
	u := *c.base
	u.Path += path
	return u.String()
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(pingPath), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: ping status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Sync(ctx context.Context, entries []*models.SyncQueueEntry) error {
	if entries == nil {
		entries = []*models.SyncQueueEntry{}
	}
	body, err := json.Marshal(models.SyncBatch{Entries: entries})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(syncPath), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if len(c.secret) > 0 {
		tok, err := auth.GenerateToken(c.deviceID, c.secret, tokenTTL)
		if err != nil {
			return fmt.Errorf("sign sync request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode/100 == 2:
		return nil
	case resp.StatusCode/100 == 4:
		return fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, strings.TrimSpace(string(msg)))
	default:
		return fmt.Errorf("%w: sync status %d", ErrUnavailable, resp.StatusCode)
	}
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
