package http

import (
	"context"

	"finboard/internal/files"
)

// ResourceProviderInterface defines the interface for workbook and report
// discovery backing the resource endpoints.
type ResourceProviderInterface interface {
	Workbooks(ctx context.Context) ([]files.ResourceInfo, error)
	Reports(ctx context.Context) ([]files.ResourceInfo, error)
}
