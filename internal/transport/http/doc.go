// Package http implements HTTP request handlers for the FinBoard web
// service. It provides a thin layer between HTTP transport and business
// logic, following the clean architecture principle of keeping handlers
// focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Surfaces
//
// The package serves three kinds of responses:
//
//   - JSON API endpoints (/api/dashboards, /api/resources, /api/health)
//     with the {"status":"success","data":...} envelope via go-chi/render
//   - Server-rendered dashboard pages (/dashboards/{slug}) from embedded
//     html/template files, including the chart.png image endpoint with
//     ETag revalidation
//   - Static workbook downloads under their configured public names
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/dashboard/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "dashboard \"liquidity\" not found",
//	    "instance": "/api/dashboards/liquidity"
//	}
//
// A failed workbook load is the one deliberate exception: the HTML page
// renders normally with a single error panel in place of the dashboard
// body, while the JSON API maps the same failure to a 502.
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Mock service dependencies
//	- Test various HTTP scenarios
//	- Verify error responses
//	- Check middleware integration
package http
