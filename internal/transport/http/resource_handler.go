package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "finboard/internal/errors"
	"finboard/internal/files"
	customMiddleware "finboard/internal/middleware"
)

// workbookContentType is served for .xlsx resources. ServeFile would sniff
// the zip container as application/zip otherwise.
const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResourceHandler handles workbook and report inventory requests
type ResourceHandler struct {
	provider     ResourceProviderInterface
	dataDir      string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(provider ResourceProviderInterface, dataDir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ResourceHandler {
	return &ResourceHandler{
		provider:     provider,
		dataDir:      dataDir,
		logger:       logger.With(slog.String("component", "resource_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the resource API routes
func (h *ResourceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListResources)

	return r
}

// ListResources handles GET /api/resources. The Last-Modified header
// carries the newest workbook timestamp so clients can poll cheaply.
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "listing resources",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	workbooks, err := h.provider.Workbooks(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list workbooks",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		customMiddleware.RecordSystemError(r.Context(), "filesystem", "file_discovery")
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list workbooks", err))
		return
	}

	reports, err := h.provider.Reports(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list reports",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		customMiddleware.RecordSystemError(r.Context(), "filesystem", "file_discovery")
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list reports", err))
		return
	}

	if latest, ok := files.Latest(workbooks); ok {
		w.Header().Set("Last-Modified", latest.Modified.UTC().Format(http.TimeFormat))
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"workbooks": workbooks,
			"reports":   reports,
		},
		"count": len(workbooks) + len(reports),
	})
}

// ServeWorkbook returns a handler serving one configured workbook from the
// data directory under its public name.
func (h *ResourceHandler) ServeWorkbook(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(h.dataDir, name)
		if _, err := os.Stat(path); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				http.StatusNotFound,
				"RESOURCE_NOT_FOUND",
				fmt.Sprintf("Workbook '%s' not found", name),
				map[string]interface{}{"resource": name},
			))
			return
		}

		w.Header().Set("Content-Type", workbookContentType)
		http.ServeFile(w, r, path)
	}
}
