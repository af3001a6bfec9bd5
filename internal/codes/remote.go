package codes

import (
	"brandtheme/internal/cache"
	"brandtheme/internal/metrics"
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

const (
	strategyRemote = "remote"

	DefaultLookupTimeout = 10 * time.Second
	DefaultLookupField   = "customerName"

	// maxBodyBytes caps how much of a lookup response is read.
	maxBodyBytes = 1 << 20
)

// Remote resolves a code with GET {baseURL}/{code} against a verification service. The tenant name
// is selected from the JSON body with a JMESPath expression (DefaultLookupField by default).
//
// A 404 is types.ErrNotFound. Any other non-2xx status, transport failure, timeout or body without
// the tenant field is types.ErrResolution. Successes are cached by raw code until Invalidate or
// Clear; failures are not cached.
type Remote struct {
	baseURL string
	field   string
	timeout time.Duration
	client  *http.Client
	cache   *cache.Cache[string]
}

type RemoteOption func(*Remote)

func WithTimeout(d time.Duration) RemoteOption {
	return func(r *Remote) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithLookupField(expression string) RemoteOption {
	return func(r *Remote) {
		if strings.TrimSpace(expression) != "" {
			r.field = expression
		}
	}
}

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

func WithCacheOptions(opts ...cache.Option) RemoteOption {
	return func(r *Remote) { r.cache = cache.New[string]("codes_remote", opts...) }
}

func NewRemote(baseURL string, opts ...RemoteOption) (*Remote, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid code lookup URL %q", baseURL)
	}
	r := &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		field:   DefaultLookupField,
		timeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = &http.Client{}
	}
	if r.cache == nil {
		r.cache = cache.New[string]("codes_remote")
	}
	if _, err := evalAny(r.field, map[string]any{}); err != nil {
		return nil, fmt.Errorf("invalid code lookup field %q: %w", r.field, err)
	}
	return r, nil
}

func (r *Remote) Resolve(ctx context.Context, code string) (string, error) {
	tenant, err := r.cache.GetOrLoad(ctx, code, func(ctx context.Context) (string, error) {
		tenant, err := r.lookup(ctx, code)
		switch {
		case err == nil:
			metrics.CodeLookups.WithLabelValues(strategyRemote, "found").Inc()
		case errors.Is(err, types.ErrNotFound):
			metrics.CodeLookups.WithLabelValues(strategyRemote, "not_found").Inc()
		default:
			metrics.CodeLookups.WithLabelValues(strategyRemote, "error").Inc()
		}
		return tenant, err
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, types.ErrResolution) {
		// the caller gave up while a shared lookup was still running
		return "", types.Err(types.ErrResolution, err, "code %q", code)
	}
	return tenant, err
}

// Exists reports whether Resolve succeeds. A broken lookup is reported as false, the same as an
// unknown code; the failure is logged so it is not lost.
func (r *Remote) Exists(ctx context.Context, code string) bool {
	_, err := r.Resolve(ctx, code)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		log.WithError(err).WithField("code", code).Warn("remote code lookup failed; treating code as unknown")
	}
	return err == nil
}

// Invalidate forgets the cached resolution of code.
func (r *Remote) Invalidate(code string) { r.cache.Invalidate(code) }

// Clear forgets every cached resolution.
func (r *Remote) Clear() { r.cache.Clear() }

func (r *Remote) lookup(ctx context.Context, code string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	endpoint := r.baseURL + "/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", types.Err(types.ErrResolution, err, "code %q", code)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return "", types.Err(types.ErrResolution, err, "code %q: lookup request failed", code)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithFields(log.Fields{
		"code":     code,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("remote code lookup")

	if resp.StatusCode == http.StatusNotFound {
		return "", types.Err(types.ErrNotFound, nil, "code %q", code)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", types.Err(types.ErrResolution, nil, "code %q: lookup returned %d", code, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", types.Err(types.ErrResolution, err, "code %q: reading lookup response", code)
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", types.Err(types.ErrResolution, err, "code %q: lookup response is not JSON", code)
	}
	tenant, err := evalString(r.field, payload)
	if err != nil {
		return "", types.Err(types.ErrResolution, err, "code %q", code)
	}
	if strings.TrimSpace(tenant) == "" {
		return "", types.Err(types.ErrResolution, nil, "code %q: lookup response has no %q field", code, r.field)
	}
	return tenant, nil
}
