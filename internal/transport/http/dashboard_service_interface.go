package http

import (
	"context"

	"finboard/internal/chart"
	"finboard/internal/services"
)

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	Dashboards() []services.DashboardInfo
	Dashboard(slug string) (*services.Dashboard, error)
	BuildView(ctx context.Context, slug string) (*services.DashboardView, error)
	ChartHandle(slug string) (*chart.Handle, error)
}
