package dataprocessing

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"

	"finboard/pkg/contracts/domain"
)

// LoadError reasons. Retrieval problems (I/O, network, non-success
// status) report as fetch failures; a payload that is not a readable
// workbook reports as a decode failure.
const (
	ReasonFetchFailed  = "fetch failed"
	ReasonDecodeFailed = "decode failed"
)

// LoadError is the single error kind produced by Load. It carries one
// human-readable message; callers render it verbatim instead of showing
// a partial dataset.
type LoadError struct {
	Resource string
	Reason   string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Resource, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Resource, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves the raw bytes of a workbook resource.
type Fetcher interface {
	Fetch(ctx context.Context, resource string) ([]byte, error)
}

// FileFetcher reads resources from a local directory. Resource names are
// flattened to their base name so a request can never traverse outside
// the directory.
type FileFetcher struct {
	dir string
}

// NewFileFetcher creates a fetcher rooted at dir.
func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{dir: dir}
}

// Fetch reads the named resource from the fetcher's directory.
func (f *FileFetcher) Fetch(_ context.Context, resource string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, filepath.Base(resource)))
}

// HTTPFetcher retrieves resources over HTTP from a fixed base URL.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher for the given base URL. A nil client
// falls back to a client with a 30 second timeout.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Fetch GETs the resource relative to the base URL. Any non-200
// response is a retrieval failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, resource string) ([]byte, error) {
	url := f.baseURL + "/" + strings.TrimLeft(resource, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// Loader turns a workbook resource into a normalized Dataset. It holds
// no per-load state and is safe for concurrent use.
type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewLoader creates a loader over the given fetcher.
func NewLoader(fetcher Fetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "loader")),
	}
}

// Load fetches the resource, decodes the first sheet of the workbook
// regardless of its name, and returns the normalized Dataset. The first
// sheet row supplies the column names (whitespace-trimmed); every data
// row carries every column key, with empty strings standing in for
// missing cells. Rows whose cells are all empty are skipped. On any
// failure Load returns a *LoadError and no dataset.
func (l *Loader) Load(ctx context.Context, resource string, schema domain.Schema) (*domain.Dataset, error) {
	started := time.Now()
	l.logger.InfoContext(ctx, "loading workbook resource",
		slog.String("resource", resource),
		slog.String("schema", schema.Name),
		slog.String("schema_version", schema.Version))

	payload, err := l.fetcher.Fetch(ctx, resource)
	if err != nil {
		l.logger.ErrorContext(ctx, "resource fetch failed",
			slog.String("resource", resource),
			slog.String("error", err.Error()))
		return nil, &LoadError{Resource: resource, Reason: ReasonFetchFailed, Err: err}
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		l.logger.ErrorContext(ctx, "workbook decode failed",
			slog.String("resource", resource),
			slog.String("error", err.Error()))
		return nil, &LoadError{Resource: resource, Reason: ReasonDecodeFailed, Err: err}
	}
	defer workbook.Close()

	// First sheet by position, whatever it is named.
	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return nil, &LoadError{Resource: resource, Reason: ReasonDecodeFailed, Err: errors.New("workbook has no sheets")}
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Resource: resource, Reason: ReasonDecodeFailed, Err: err}
	}

	columns, records := buildRows(schema, rows)

	dataset := &domain.Dataset{
		Resource:      resource,
		SchemaName:    schema.Name,
		SchemaVersion: schema.Version,
		Sheet:         sheet,
		Columns:       columns,
		Rows:          records,
		LoadID:        uuid.New().String(),
		Fingerprint:   Fingerprint(payload),
		LoadedAt:      time.Now().UTC(),
	}

	l.logger.InfoContext(ctx, "workbook resource loaded",
		slog.String("resource", resource),
		slog.String("sheet", sheet),
		slog.Int("rows", len(records)),
		slog.String("fingerprint", dataset.Fingerprint),
		slog.Duration("duration", time.Since(started)))

	return dataset, nil
}

// buildRows converts the raw sheet grid into normalized row records.
// The header row defines the column names; header cells that trim to
// empty are dropped along with their column.
func buildRows(schema domain.Schema, rows [][]string) ([]string, []domain.Row) {
	if len(rows) == 0 {
		return []string{}, []domain.Row{}
	}

	columns := make([]string, 0, len(rows[0]))
	indexes := make([]int, 0, len(rows[0]))
	for i, header := range rows[0] {
		name := strings.TrimSpace(header)
		if name == "" {
			continue
		}
		columns = append(columns, name)
		indexes = append(indexes, i)
	}

	records := make([]domain.Row, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if emptyRow(cells) {
			continue
		}
		row := make(domain.Row, len(columns))
		for c, name := range columns {
			var cell string
			if idx := indexes[c]; idx < len(cells) {
				cell = cells[idx]
			}
			row[name] = cell
		}
		records = append(records, Normalize(schema, row))
	}

	return columns, records
}

func emptyRow(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}

// Fingerprint returns a short BLAKE2b content tag for a resource
// payload, used as the dataset and chart version.
func Fingerprint(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:16])
}
