package api

import (
	"brandtheme/internal/metrics"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	invalidatePath     = "/api/cache/invalidate"
	defaultHookTimeout = 5 * time.Second
)

// InvalidationHook calls a running server's invalidation endpoints. Writers that run in another
// process register it on their store adapter so the server drops what it cached for a tenant as
// soon as the write lands.
type InvalidationHook struct {
	baseURL string
	client  *http.Client
}

type HookOption func(*InvalidationHook)

func WithHookTimeout(d time.Duration) HookOption {
	return func(h *InvalidationHook) {
		if d > 0 {
			h.client.Timeout = d
		}
	}
}

func WithHookHTTPClient(c *http.Client) HookOption {
	return func(h *InvalidationHook) { h.client = c }
}

// NewInvalidationHook targets the server whose API is served under baseURL.
func NewInvalidationHook(baseURL string, opts ...HookOption) (*InvalidationHook, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid invalidation hook url %q", baseURL)
	}
	h := &InvalidationHook{baseURL: baseURL, client: &http.Client{Timeout: defaultHookTimeout}}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Invalidate asks the server to drop its caches for tenantID. A failure is logged; the write that
// triggered it already succeeded.
func (h *InvalidationHook) Invalidate(tenantID string) {
	h.call(h.baseURL+invalidatePath+"/"+url.PathEscape(tenantID), log.Fields{"tenant": tenantID})
}

// Clear asks the server to drop every cache.
func (h *InvalidationHook) Clear() {
	h.call(h.baseURL+invalidatePath, log.Fields{"tenant": "*"})
}

func (h *InvalidationHook) call(endpoint string, fields log.Fields) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, endpoint, nil)
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("invalidation hook request")
		return
	}
	resp, err := h.client.Do(req)
	if err != nil {
		metrics.InvalidationHookCalls.WithLabelValues("error").Inc()
		log.WithError(err).WithFields(fields).Warn("server invalidation hook failed; server caches may be stale")
		return
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		metrics.InvalidationHookCalls.WithLabelValues("error").Inc()
		log.WithFields(fields).WithField("status", resp.StatusCode).
			Warn("server invalidation hook rejected; server caches may be stale")
		return
	}
	metrics.InvalidationHookCalls.WithLabelValues("ok").Inc()
	log.WithFields(fields).Debug("server caches invalidated")
}
