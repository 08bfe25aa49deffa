// Package placement implements write-time category placement: a newly
// arriving file and its annotation metadata are written under every
// category its labels resolve to.
package placement

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/tendant/label-store/pkg/labelstore"
	"github.com/tendant/label-store/pkg/labelstore/category"
)

// Placer resolves categories for incoming files and fans writes out to
// every resolved category path.
type Placer struct {
	store labelstore.Store
	table *category.Table
}

// New creates a Placer over the given store and category table.
func New(store labelstore.Store, table *category.Table) *Placer {
	return &Placer{store: store, table: table}
}

// Request describes one file to place.
type Request struct {
	StorageType labelstore.StorageType
	FileName    string
	Data        []byte
	MimeType    string

	// Metadata is the annotation document stored as the companion JSON.
	// Empty metadata is written as an empty object so the companion
	// always exists.
	Metadata []byte

	Labels []string
}

// Result reports where a file was placed. AllPaths is set only when the
// file was written under more than one category.
type Result struct {
	PrimaryPath  string
	MetadataPath string
	AllPaths     []string
}

// Place writes the file and its metadata under each resolved category.
// Writes are sequential; a failure aborts the remaining writes and the
// categories already written stay in place.
func (p *Placer) Place(ctx context.Context, req Request) (*Result, error) {
	if !labelstore.IsStorageType(string(req.StorageType)) {
		return nil, fmt.Errorf("unknown storage type %q", req.StorageType)
	}
	if req.FileName == "" {
		return nil, fmt.Errorf("file name is required")
	}

	cats := p.table.Resolve(req.Labels)
	if len(cats) == 0 {
		cats = []category.Info{category.Default()}
	}

	metadata := req.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}

	stem := strings.TrimSuffix(req.FileName, path.Ext(req.FileName))
	month := time.Now().Format("2006-01")

	result := &Result{}
	var filePaths []string
	for _, cat := range cats {
		basePath := basePath(req.StorageType, month, cat)
		filePath := basePath + "/" + req.FileName
		metadataPath := basePath + "/" + stem + ".json"

		if err := p.store.Put(ctx, filePath, bytes.NewReader(req.Data), req.MimeType); err != nil {
			return nil, fmt.Errorf("writing %s: %w", filePath, err)
		}
		if err := p.store.Put(ctx, metadataPath, bytes.NewReader(metadata), "application/json"); err != nil {
			return nil, fmt.Errorf("writing %s: %w", metadataPath, err)
		}

		if result.PrimaryPath == "" {
			result.PrimaryPath = filePath
			result.MetadataPath = metadataPath
		}
		filePaths = append(filePaths, filePath)
	}

	if len(filePaths) > 1 {
		result.AllPaths = filePaths
	}
	return result, nil
}

// basePath builds {type}/{month}/{category1}/{category2}. Empty category
// levels become the unclassified marker so placed keys always satisfy
// the canonical five-segment grammar.
func basePath(st labelstore.StorageType, month string, cat category.Info) string {
	cat1 := cat.Category1
	if cat1 == "" {
		cat1 = category.Unclassified
	}
	cat2 := cat.Category2
	if cat2 == "" {
		cat2 = category.Unclassified
	}
	return fmt.Sprintf("%s/%s/%s/%s", st, month, cat1, cat2)
}
