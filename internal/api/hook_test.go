package api

import (
	"brandtheme/internal/store"
	"brandtheme/internal/types"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

func (s *HandlerTestSuite) getBody(url string) string {
	resp, err := http.Get(url)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return string(b)
}

// A writer with its own adapter over the same backend, as the CLI or the queue consumer runs.
func (s *HandlerTestSuite) TestWriterInAnotherProcessReachesServer() {
	srv := httptest.NewServer(s.router)
	s.T().Cleanup(srv.Close)

	hook, err := NewInvalidationHook(srv.URL + "/")
	s.Require().NoError(err)
	writer := store.NewAdapter(s.backend)
	writer.OnInvalidate(hook)

	css := srv.URL + "/api/fonts/acme/fonts.css"
	before := s.getBody(css)
	s.NotContains(before, "Inter-700-v2.woff2")

	replaced, err := writer.UpsertFontVariant(context.Background(), "acme", types.FontSlotPrimary, "",
		types.FontVariant{File: "Inter-700-v2.woff2", Weight: 700, Style: "normal"})
	s.Require().NoError(err)
	s.True(replaced)

	after := s.getBody(css)
	s.Contains(after, "brands/acme/fonts/Inter-700-v2.woff2")
	s.NotEqual(before, after)

	theme := s.getBody(srv.URL + "/api/theme/acme/colors")
	s.Contains(theme, "#ff0000")
	s.Require().NoError(writer.UpdateColors(context.Background(), "acme", map[string]string{"primary": "#00ff00"}))
	theme = s.getBody(srv.URL + "/api/theme/acme/colors")
	s.Contains(theme, "#00ff00")
}

func (s *HandlerTestSuite) TestHookCallsEndpoints() {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.Method+" "+r.URL.EscapedPath())
	}))
	s.T().Cleanup(srv.Close)

	hook, err := NewInvalidationHook(srv.URL)
	s.Require().NoError(err)
	hook.Invalidate("acme")
	hook.Invalidate("a b")
	hook.Clear()
	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{
		"POST /api/cache/invalidate/acme",
		"POST /api/cache/invalidate/a%20b",
		"POST /api/cache/invalidate",
	}, paths)
}

func (s *HandlerTestSuite) TestHookFailureDoesNotFailWrite() {
	var hits int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	s.T().Cleanup(failing.Close)

	hook, err := NewInvalidationHook(failing.URL, WithHookTimeout(time.Second))
	s.Require().NoError(err)
	writer := store.NewAdapter(s.backend)
	writer.OnInvalidate(hook)

	s.NoError(writer.UpdateColors(context.Background(), "beta", map[string]string{"text": "#111111"}))
	s.Equal(int32(1), atomic.LoadInt32(&hits))

	down, err := NewInvalidationHook("http://127.0.0.1:1", WithHookTimeout(200*time.Millisecond))
	s.Require().NoError(err)
	writer.OnInvalidate(down)
	s.NoError(writer.UpdateColors(context.Background(), "beta", map[string]string{"text": "#222222"}))
}

func (s *HandlerTestSuite) TestHookRejectsBadURL() {
	_, err := NewInvalidationHook("")
	s.Error(err)
	_, err = NewInvalidationHook("localhost:8000")
	s.Error(err)
}
