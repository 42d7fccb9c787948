package services

import "errors"

// Service errors
var (
	// Dashboard errors
	ErrDashboardNotFound = errors.New("dashboard not found")
	ErrNoChartRendered   = errors.New("no chart rendered")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// General errors
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
