package http

import (
	"embed"
	"html/template"

	"finboard/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates holds the parsed server-rendered page templates. Parsing
// happens once at package init; a broken template panics at startup, not
// on the first request.
var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// dashboardPage is the template payload for one dashboard page. Exactly one
// of View and LoadError is populated: a successful load carries the full
// view, a failed one carries the single error message.
type dashboardPage struct {
	Title     string
	Slug      string
	Nav       []services.DashboardInfo
	View      *services.DashboardView
	LoadError string
}
