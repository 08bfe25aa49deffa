// Package memory provides an in-memory ingestion-record repository for
// tests and single-process setups.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/label-store/pkg/labelstore"
)

// Repository implements labelstore.Repository using in-memory storage
type Repository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*labelstore.IngestionRecord
	order   []uuid.UUID
}

// New creates a new in-memory repository
func New() labelstore.Repository {
	return &Repository{
		records: make(map[uuid.UUID]*labelstore.IngestionRecord),
	}
}

func (r *Repository) CreateIngestion(ctx context.Context, rec *labelstore.IngestionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	recCopy := *rec
	r.records[rec.ID] = &recCopy
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *Repository) GetIngestion(ctx context.Context, id uuid.UUID) (*labelstore.IngestionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	if !exists {
		return nil, labelstore.ErrIngestionNotFound
	}
	recCopy := *rec
	return &recCopy, nil
}

// ListIngestions returns records newest first, optionally filtered by
// storage type. A non-positive limit falls back to 100; a negative
// offset is treated as zero.
func (r *Repository) ListIngestions(ctx context.Context, storageType string, limit, offset int) ([]*labelstore.IngestionRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*labelstore.IngestionRecord
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.records[r.order[i]]
		if storageType != "" && rec.StorageType != storageType {
			continue
		}
		matched = append(matched, rec)
	}

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*labelstore.IngestionRecord, len(matched))
	for i, rec := range matched {
		recCopy := *rec
		out[i] = &recCopy
	}
	return out, nil
}
