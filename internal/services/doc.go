// Package services implements the business logic layer of FinBoard. It
// sits between the HTTP handlers and the data processing pipeline,
// keeping the dashboard assembly rules centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Context propagation for cancellation and tracing
//	2. Dependency injection via constructors for loose coupling
//	3. Structured logging and metrics as cross-cutting concerns
//	4. Domain-focused methods that encapsulate the pipeline rules
//
// # Available Services
//
// The package provides these core services:
//
//	- DashboardService: Runs the workbook load pipeline and assembles
//	  render-ready dashboard views, owning one chart renderer per
//	  dashboard.
//	- HealthService: Answers health, readiness and liveness probes
//	  against the data directory and configured workbooks.
//
// # Lifecycle
//
// DashboardService deliberately caches nothing between requests: every
// BuildView call fetches and decodes the backing workbook again, so a
// replaced workbook file is picked up on the next page load. The only
// state that survives a request is the current chart handle, which is
// swapped (and the prior handle closed) on each successful render.
//
// # Error Handling
//
// Services return domain-specific errors that handlers transform into
// HTTP problem responses:
//
//	- ErrDashboardNotFound for unknown dashboard slugs
//	- ErrNoChartRendered while no chart image exists yet
//	- *dataprocessing.LoadError for fetch and decode failures, rendered
//	  as a single message in place of a partial view
package services
