// Package chart renders dashboard category counts as bar chart PNGs.
//
// A Renderer owns at most one live Handle per dashboard. Rendering a new
// chart atomically replaces the previous handle and closes it, so stale
// images are never served after the underlying dataset changes.
package chart

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/crypto/blake2b"

	"finboard/pkg/contracts/domain"
)

// ErrNoData is returned when a chart is requested for an empty count map.
// Callers treat this as "no chart" rather than a failure.
var ErrNoData = errors.New("chart: no categories to draw")

// Default canvas dimensions. Wide enough that four to six category
// labels fit without rotation.
const (
	DefaultWidth    = 960
	DefaultHeight   = 420
	DefaultBarWidth = 80
)

// defaultPalette is cycled when a dashboard has more categories than
// colors. Order matters: the first category always gets the first color.
var defaultPalette = []drawing.Color{
	drawing.ColorFromHex("4e79a7"),
	drawing.ColorFromHex("f28e2b"),
	drawing.ColorFromHex("e15759"),
	drawing.ColorFromHex("76b7b2"),
}

// Config holds renderer settings. Zero values fall back to package defaults.
type Config struct {
	Width    int
	Height   int
	BarWidth int
	Palette  []drawing.Color
	Logger   *slog.Logger
}

// Renderer draws bar charts and tracks the single live handle.
type Renderer struct {
	width    int
	height   int
	barWidth int
	palette  []drawing.Color
	logger   *slog.Logger

	mu      sync.Mutex
	current *Handle
}

// NewRenderer creates a renderer with the given configuration.
func NewRenderer(cfg Config) *Renderer {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.BarWidth <= 0 {
		cfg.BarWidth = DefaultBarWidth
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = defaultPalette
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Renderer{
		width:    cfg.Width,
		height:   cfg.Height,
		barWidth: cfg.BarWidth,
		palette:  cfg.Palette,
		logger:   cfg.Logger.With(slog.String("component", "chart_renderer")),
	}
}

// Render draws one bar per count entry, in map order, and installs the
// result as the renderer's current handle. The previous handle, if any,
// is closed after the swap. Returns ErrNoData when counts is empty.
func (r *Renderer) Render(ctx context.Context, title string, counts *domain.CountMap) (*Handle, error) {
	if counts == nil || counts.Len() == 0 {
		return nil, ErrNoData
	}

	start := time.Now()

	entries := counts.Entries()
	bars := make([]chart.Value, 0, len(entries))
	maxCount := 0
	for i, entry := range entries {
		color := r.palette[i%len(r.palette)]
		bars = append(bars, chart.Value{
			Label: entry.Value,
			Value: float64(entry.Count),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		if entry.Count > maxCount {
			maxCount = entry.Count
		}
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   r.barWidth,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 30}},
		XAxis:      chart.Style{},
		YAxis: chart.YAxis{
			// Baseline at zero with headroom above the tallest bar keeps
			// the range non-degenerate when every count is equal.
			Range:          &chart.ContinuousRange{Min: 0, Max: float64(maxCount + 1)},
			ValueFormatter: chart.IntValueFormatter,
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}

	handle := &Handle{
		id:         uuid.NewString(),
		png:        buf.Bytes(),
		etag:       etagFor(buf.Bytes()),
		renderedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	prior := r.current
	r.current = handle
	r.mu.Unlock()
	if prior != nil {
		prior.Close()
	}

	r.logger.InfoContext(ctx, "chart rendered",
		slog.String("title", title),
		slog.String("handle_id", handle.id),
		slog.Int("categories", len(bars)),
		slog.Int("bytes", len(handle.png)),
		slog.Duration("duration", time.Since(start)))

	return handle, nil
}

// Current returns the live handle, or nil if nothing has been rendered.
func (r *Renderer) Current() *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Close releases the current handle. Safe to call more than once.
func (r *Renderer) Close() {
	r.mu.Lock()
	prior := r.current
	r.current = nil
	r.mu.Unlock()
	if prior != nil {
		prior.Close()
	}
}

// Handle is one rendered chart image. Handles are immutable once created;
// Close marks the handle stale and drops the image bytes.
type Handle struct {
	id         string
	etag       string
	renderedAt time.Time

	mu     sync.Mutex
	png    []byte
	closed bool
}

// ID returns the unique identifier assigned at render time.
func (h *Handle) ID() string { return h.id }

// ETag returns a strong validator derived from the image bytes.
func (h *Handle) ETag() string { return h.etag }

// RenderedAt returns when the image was produced.
func (h *Handle) RenderedAt() time.Time { return h.renderedAt }

// Bytes returns a copy of the PNG, or nil once the handle is closed.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	out := make([]byte, len(h.png))
	copy(out, h.png)
	return out
}

// Closed reports whether the handle has been released.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close releases the image bytes. Subsequent Bytes calls return nil.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.png = nil
}

func etagFor(png []byte) string {
	sum := blake2b.Sum256(png)
	return hex.EncodeToString(sum[:16])
}
