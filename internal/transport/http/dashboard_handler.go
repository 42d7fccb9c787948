package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"finboard/internal/dataprocessing"
	apierrors "finboard/internal/errors"
	customMiddleware "finboard/internal/middleware"
	"finboard/internal/services"
)

type contextKey string

const dashboardContextKey contextKey = "dashboard"

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard API routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListDashboards)

	r.Route("/{slug}", func(r chi.Router) {
		r.Use(h.DashboardCtx) // Resolve dashboard into context
		r.Get("/", h.GetDashboard)
	})

	return r
}

// PageRoutes returns the server-rendered dashboard page routes
func (h *DashboardHandler) PageRoutes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{slug}", func(r chi.Router) {
		r.Use(h.DashboardCtx)
		r.Get("/", customMiddleware.DashboardTraceHandler("page", h.ServeDashboardPage))
		r.Get("/chart.png", customMiddleware.DashboardTraceHandler("chart", h.ServeChart))
	})

	return r
}

// DashboardCtx middleware resolves the slug parameter to a configured
// dashboard and stores it in the request context. Unknown slugs get a 404
// before any handler runs.
func (h *DashboardHandler) DashboardCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("slug", "Dashboard slug is required"))
			return
		}

		dash, err := h.service.Dashboard(slug)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.DashboardNotFoundError(slug))
			return
		}

		ctx := context.WithValue(r.Context(), dashboardContextKey, dash)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// dashboardFromContext returns the dashboard resolved by DashboardCtx.
func dashboardFromContext(ctx context.Context) (*services.Dashboard, bool) {
	dash, ok := ctx.Value(dashboardContextKey).(*services.Dashboard)
	return dash, ok
}

// ListDashboards handles GET /api/dashboards with RFC 7807 errors
func (h *DashboardHandler) ListDashboards(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "listing dashboards",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	dashboards := h.service.Dashboards()

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   dashboards,
		"count":  len(dashboards),
	})
}

// GetDashboard handles GET /api/dashboards/{slug} with RFC 7807 errors.
// Every request runs the full load pipeline; the response is the complete
// render-ready view.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	slug := chi.URLParam(r, "slug")

	h.logger.InfoContext(r.Context(), "building dashboard view",
		slog.String("request_id", reqID),
		slog.String("slug", slug),
	)

	view, err := h.service.BuildView(r.Context(), slug)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build dashboard view",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("slug", slug),
		)

		// Map service errors to API errors
		if errors.Is(err, services.ErrDashboardNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DashboardNotFoundError(slug))
			return
		}

		var loadErr *dataprocessing.LoadError
		if errors.As(err, &loadErr) {
			customMiddleware.RecordSystemError(r.Context(), "load_failure", "dashboard_service")
			h.errorHandler.HandleError(w, r, apierrors.DashboardLoadError(loadErr.Resource, err))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Success response
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  view.RowCount,
	})
}

// ServeDashboardPage handles GET /dashboards/{slug}. A load failure still
// renders the page, with the single error message in place of the
// dashboard body.
func (h *DashboardHandler) ServeDashboardPage(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	slug := chi.URLParam(r, "slug")

	dash, ok := dashboardFromContext(r.Context())
	if !ok {
		h.errorHandler.HandleError(w, r, apierrors.DashboardNotFoundError(slug))
		return
	}

	page := dashboardPage{
		Title: dash.Title,
		Slug:  dash.Slug,
		Nav:   h.service.Dashboards(),
	}

	view, err := h.service.BuildView(r.Context(), slug)
	if err != nil {
		var loadErr *dataprocessing.LoadError
		if !errors.As(err, &loadErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}

		h.logger.WarnContext(r.Context(), "rendering dashboard error panel",
			slog.String("request_id", reqID),
			slog.String("slug", slug),
			slog.String("error", err.Error()),
		)
		customMiddleware.RecordSystemError(r.Context(), "load_failure", "dashboard_service")
		page.LoadError = err.Error()
	} else {
		page.View = view
	}

	h.renderPage(w, r, page)
}

// ServeChart handles GET /dashboards/{slug}/chart.png. The current handle
// is served with ETag revalidation; until a load has rendered a chart the
// endpoint returns 404.
func (h *DashboardHandler) ServeChart(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	handle, err := h.service.ChartHandle(slug)
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.DashboardNotFoundError(slug))
			return
		}

		if errors.Is(err, services.ErrNoChartRendered) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusNotFound,
				"NO_CHART_RENDERED",
				"No chart has been rendered for this dashboard yet",
			))
			return
		}

		h.errorHandler.HandleError(w, r, err)
		return
	}

	etag := `"` + handle.ETag() + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// Bytes returns nil once the handle has been closed by a newer render.
	png := handle.Bytes()
	if png == nil {
		h.errorHandler.HandleError(w, r, apierrors.New(
			http.StatusNotFound,
			"NO_CHART_RENDERED",
			"No chart has been rendered for this dashboard yet",
		))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// RedirectToDefault redirects root requests to the first dashboard page
func (h *DashboardHandler) RedirectToDefault(w http.ResponseWriter, r *http.Request) {
	dashboards := h.service.Dashboards()
	if len(dashboards) == 0 {
		h.errorHandler.NotFound(w, r)
		return
	}
	http.Redirect(w, r, dashboards[0].Path, http.StatusTemporaryRedirect)
}

// renderPage executes the dashboard template with security headers set.
func (h *DashboardHandler) renderPage(w http.ResponseWriter, r *http.Request, page dashboardPage) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "dashboard.html", page); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard page",
			slog.String("error", err.Error()),
			slog.String("slug", page.Slug),
		)
		customMiddleware.RecordSystemError(r.Context(), "template_render", "dashboard_handler")
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
