package domain

import (
	"encoding/json"
	"time"
)

// UnknownLabel is the sentinel substituted for blank or absent
// categorical values during normalization and aggregation.
const UnknownLabel = "Unknown"

// Row is one decoded data row from a workbook sheet, keyed by column
// name. After loading, every column of the sheet (and every derived
// schema field) is present as a key; missing cells hold the empty
// string rather than being absent.
type Row map[string]string

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Dataset is the full in-memory result of one successful workbook load:
// an ordered sequence of normalized rows plus load provenance. A Dataset
// is never mutated after creation; filters, sorts and tallies produce
// new values.
type Dataset struct {
	Resource      string    `json:"resource"`
	SchemaName    string    `json:"schema_name"`
	SchemaVersion string    `json:"schema_version"`
	Sheet         string    `json:"sheet"`
	Columns       []string  `json:"columns"`
	Rows          []Row     `json:"rows"`
	LoadID        string    `json:"load_id"`
	Fingerprint   string    `json:"fingerprint"`
	LoadedAt      time.Time `json:"loaded_at"`
}

// RowCount returns the number of data rows in the dataset.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// CountEntry is one aggregated value/count pair.
type CountEntry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CountMap tallies occurrences of distinct categorical values while
// preserving first-seen key order, so chart labels come out in a
// deterministic order for identical input order.
type CountMap struct {
	keys   []string
	counts map[string]int
}

// NewCountMap returns an empty tally.
func NewCountMap() *CountMap {
	return &CountMap{counts: make(map[string]int)}
}

// Add increments the count for key, registering it on first sight.
func (m *CountMap) Add(key string) {
	if _, seen := m.counts[key]; !seen {
		m.keys = append(m.keys, key)
	}
	m.counts[key]++
}

// Keys returns the distinct values in first-seen order.
func (m *CountMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Count returns the tally for key, zero when the key was never added.
func (m *CountMap) Count(key string) int {
	return m.counts[key]
}

// Len returns the number of distinct values.
func (m *CountMap) Len() int {
	return len(m.keys)
}

// Total returns the sum of all counts. For a tally built by scanning a
// row sequence this equals the number of rows scanned.
func (m *CountMap) Total() int {
	total := 0
	for _, c := range m.counts {
		total += c
	}
	return total
}

// Entries returns the tally as ordered value/count pairs.
func (m *CountMap) Entries() []CountEntry {
	entries := make([]CountEntry, 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, CountEntry{Value: k, Count: m.counts[k]})
	}
	return entries
}

// MarshalJSON renders the tally as an ordered array of entries, keeping
// the first-seen order that map-keyed JSON objects would lose.
func (m *CountMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Entries())
}

// UnmarshalJSON rebuilds the tally from an ordered entry array.
func (m *CountMap) UnmarshalJSON(data []byte) error {
	var entries []CountEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	m.keys = nil
	m.counts = make(map[string]int, len(entries))
	for _, e := range entries {
		if _, seen := m.counts[e.Value]; !seen {
			m.keys = append(m.keys, e.Value)
		}
		m.counts[e.Value] += e.Count
	}
	return nil
}
