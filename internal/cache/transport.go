package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// HeaderFromCache is set on responses served from the store.
const HeaderFromCache = "X-From-Cache"

// DefaultTTL is how long a stored response is served.
const DefaultTTL = time.Hour

// Transport serves GET requests from a Store and records the responses it
// fetches through base.
type Transport struct {
	store  *Store
	base   http.RoundTripper
	ttl    time.Duration
	logger *slog.Logger
}

// NewTransport wraps base. A non-positive ttl means DefaultTTL.
func NewTransport(store *Store, base http.RoundTripper, ttl time.Duration, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Transport{store: store, base: base, ttl: ttl, logger: logger}
}

// Key returns the cache key of req.
func Key(req *http.Request) string {
	sum := sha256.Sum256([]byte(req.Header.Get("Authorization")))
	return fmt.Sprintf("%s %s %s", req.Method, req.URL.String(), hex.EncodeToString(sum[:8]))
}

// cacheable reports whether a response status is worth keeping.
func cacheable(status int) bool {
	return status == http.StatusOK || status == http.StatusNotFound
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	key := Key(req)

	entry, err := t.store.Get(ctx, key)
	if err != nil {
		t.logger.Warn("cache lookup failed", "error", err)
	} else if entry != nil && t.store.now().Sub(entry.StoredAt) < t.ttl {
		return entry.response(req), nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil || !cacheable(resp.StatusCode) {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("cache: read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := t.store.Put(ctx, &Entry{
		Key:    key,
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}); err != nil {
		t.logger.Warn("cache store failed", "error", err)
	}
	return resp, nil
}

// response rebuilds an http.Response from a stored entry.
func (e *Entry) response(req *http.Request) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set(HeaderFromCache, "1")
	return &http.Response{
		Status:        strconv.Itoa(e.Status) + " " + http.StatusText(e.Status),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}
