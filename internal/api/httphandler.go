package api

import (
	"brandtheme/internal/brand"
	"brandtheme/internal/cache"
	"brandtheme/internal/config"
	"brandtheme/internal/fonts"
	"brandtheme/internal/metrics"
	"brandtheme/internal/ports"
	"brandtheme/internal/resolve"
	"brandtheme/internal/store"
	"brandtheme/internal/types"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzhttp"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	Store    *store.Adapter
	Codes    ports.CodeResolver
	Brands   *brand.Service
	Fonts    *fonts.Generator
	Resolver *resolve.Resolver

	StylesheetMaxAge time.Duration
	CORSOrigins      []string
}

// NewHandler builds every request-serving component once, on top of the given store adapter and
// code resolver, and registers the stylesheet cache for invalidation on writes.
func NewHandler(s config.Settings, adapter *store.Adapter, codes ports.CodeResolver) *Handler {
	brands := brand.NewService(adapter, s.StaticBaseURL, s.APIBaseURL)
	gen := fonts.NewGenerator(brands, cache.FromSettings(s)...)
	adapter.OnInvalidate(gen)

	return &Handler{
		Store:            adapter,
		Codes:            codes,
		Brands:           brands,
		Fonts:            gen,
		Resolver:         resolve.NewResolver(codes, adapter),
		StylesheetMaxAge: s.StylesheetMaxAge,
		CORSOrigins:      s.CORSOrigins,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(instrument)
	r.Use(middleware.Recoverer)
	r.Use(withCORS(h.CORSOrigins))

	r.Get("/health", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/brands", h.handleListBrands)
		r.Get("/theme/{code}", h.handleTheme)
		r.Get("/theme/{code}/colors", h.handleColors)
		r.Get("/fonts/{code}/fonts.css", h.handleStylesheet)
		r.Post("/cache/invalidate", h.handleInvalidateAll)
		r.Post("/cache/invalidate/{tenant}", h.handleInvalidate)
	})
	return gzhttp.GzipHandler(r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "theme-api"})
}

func (h *Handler) handleListBrands(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Brands.ListTenantIDs(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]any{"success": true, "brands": ids})
}

func (h *Handler) handleTheme(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	tenant, err := h.Resolver.Resolve(r.Context(), code)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	theme, err := h.Brands.Theme(r.Context(), tenant)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": theme})
}

func (h *Handler) handleColors(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	tenant, err := h.Resolver.Resolve(r.Context(), code)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	colors, err := h.Brands.Colors(r.Context(), tenant)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"customerName": colors.CustomerName,
		"colors":       colors.Colors,
	})
}

func (h *Handler) handleStylesheet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	tenant, err := h.Resolver.Resolve(r.Context(), code)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	css, err := h.Fonts.Stylesheet(r.Context(), tenant)
	if err != nil {
		h.writeError(w, r, code, err)
		return
	}
	hdr := w.Header()
	hdr.Set("Content-Type", "text/css; charset=utf-8")
	hdr.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.StylesheetMaxAge.Seconds())))
	hdr.Set("Content-Disposition", fmt.Sprintf("inline; filename=fonts-%s.css", tenant))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}

// handleInvalidate is called by writers that change the configuration store out of band.
func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	tenant := types.NormalizeTenantID(chi.URLParam(r, "tenant"))
	h.Store.Invalidate(tenant)
	log.WithField("tenant", tenant).Info("caches invalidated for tenant")
	_ = writeJSON(w, http.StatusOK, map[string]any{"success": true, "invalidated": tenant})
}

func (h *Handler) handleInvalidateAll(w http.ResponseWriter, _ *http.Request) {
	h.Store.InvalidateAll()
	if c, ok := h.Codes.(interface{ Clear() }); ok {
		c.Clear()
	}
	log.Info("all caches invalidated")
	_ = writeJSON(w, http.StatusOK, map[string]any{"success": true, "invalidated": "all"})
}

// writeError maps a resolution/read failure to a response. Only a not-found answer enumerates the
// configured tenants.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, input string, err error) {
	entry := log.WithError(err).WithFields(log.Fields{"code": input, "path": r.URL.Path})
	switch {
	case errors.Is(err, types.ErrNotFound):
		ids, listErr := h.Brands.ListTenantIDs(r.Context())
		if listErr != nil {
			entry.WithField("list_error", listErr).Warn("could not enumerate tenants for not-found response")
			ids = []string{}
		}
		_ = writeJSON(w, http.StatusNotFound, map[string]any{
			"success":   false,
			"error":     "Not found",
			"detail":    fmt.Sprintf("'%s' is not a valid code or brand. Available brands: %s", input, strings.Join(ids, ", ")),
			"available": ids,
		})
	case errors.Is(err, types.ErrResolution):
		entry.Error("code lookup failed")
		_ = writeJSON(w, http.StatusBadGateway, map[string]any{"success": false, "error": "Code lookup failed"})
	case errors.Is(err, types.ErrConfigMalformed):
		entry.Error("brand config malformed")
		_ = writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Brand configuration is malformed"})
	default:
		entry.Error("request failed")
		_ = writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Internal error"})
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
