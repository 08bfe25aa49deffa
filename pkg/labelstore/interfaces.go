package labelstore

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Store defines the object-store capability the engine consumes. Moves are
// copy-then-delete pairs; the store has no native rename.
type Store interface {
	// Get opens an object for reading. Returns ErrObjectNotFound (wrapped)
	// when the key does not exist.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes an object with the given content type.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Copy performs a server-side copy from srcKey to dstKey.
	Copy(ctx context.Context, srcKey, dstKey string) error

	// Delete removes an object.
	Delete(ctx context.Context, key string) error

	// List returns every object under prefix. An empty delimiter lists
	// recursively; "/" restricts to the immediate level. Pagination is
	// handled internally; callers see the flattened sequence.
	List(ctx context.Context, prefix, delimiter string) ([]ObjectInfo, error)

	// Stat retrieves object metadata without reading the body. Returns
	// ErrObjectNotFound (wrapped) when the key does not exist.
	Stat(ctx context.Context, key string) (*ObjectInfo, error)

	// HeadBucket probes connectivity at startup.
	HeadBucket(ctx context.Context) error
}

// Repository persists ingestion records for the write path.
type Repository interface {
	CreateIngestion(ctx context.Context, rec *IngestionRecord) error
	GetIngestion(ctx context.Context, id uuid.UUID) (*IngestionRecord, error)
	ListIngestions(ctx context.Context, storageType string, limit, offset int) ([]*IngestionRecord, error)
}
