package category

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tendant/label-store/pkg/labelstore"
)

// Table maps labels to categories. It is built once at startup and is
// read-only afterwards; there is no reload.
type Table struct {
	entries map[string]Info
}

// Load reads the CSV category source: column 0 = category1, column 1 =
// category2, column 4 = label. The header row is skipped, a byte-order mark
// is stripped from the first cell, rows with fewer than five columns or
// empty label/category fields are ignored, and a later row with a duplicate
// label overwrites the earlier one.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading category csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\uFEFF")
	}

	t := &Table{entries: make(map[string]Info)}
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 5 {
			continue
		}
		cat1 := strings.TrimSpace(rec[0])
		cat2 := strings.TrimSpace(rec[1])
		label := strings.TrimSpace(rec[4])
		if label == "" || cat1 == "" || cat2 == "" {
			continue
		}
		t.entries[label] = Info{Category1: cat1, Category2: cat2}
	}
	return t, nil
}

// LoadFile loads the category table from path. Failures are fatal startup
// configuration errors.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &labelstore.ConfigError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, &labelstore.ConfigError{Source: path, Err: err}
	}
	return t, nil
}

// Lookup returns the exact table entry for label.
func (t *Table) Lookup(label string) (Info, bool) {
	info, ok := t.entries[label]
	return info, ok
}

// Len returns the number of loaded label entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// IDTable translates numeric annotation label IDs to label strings.
type IDTable map[int64]string

// LoadIDTable reads a JSON object mapping numeric IDs to labels, e.g.
// {"12": "021_gt_hd_xs"}. Keys must be base-10 integers.
func LoadIDTable(r io.Reader) (IDTable, error) {
	var raw map[string]string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("reading label id table: %w", err)
	}

	t := make(IDTable, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("label id %q is not numeric", k)
		}
		t[id] = v
	}
	return t, nil
}

// LoadIDTableFile loads the label-ID table from path. A missing path yields
// an empty table; a malformed file is a fatal configuration error.
func LoadIDTableFile(path string) (IDTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return IDTable{}, nil
		}
		return nil, &labelstore.ConfigError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := LoadIDTable(f)
	if err != nil {
		return nil, &labelstore.ConfigError{Source: path, Err: err}
	}
	return t, nil
}

// Translate maps ids through the table, dropping unknown IDs.
func (t IDTable) Translate(ids []int64) []string {
	var labels []string
	for _, id := range ids {
		if label, ok := t[id]; ok {
			labels = append(labels, label)
		}
	}
	return labels
}
