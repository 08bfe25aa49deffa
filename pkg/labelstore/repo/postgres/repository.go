// Package postgres persists ingestion records in PostgreSQL. It expects
// an ingestion table created by an external migration.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/label-store/pkg/labelstore"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements labelstore.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) labelstore.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) labelstore.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "ingestion") {
				return fmt.Errorf("ingestion record already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return labelstore.ErrIngestionNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateIngestion(ctx context.Context, rec *labelstore.IngestionRecord) error {
	query := `
		INSERT INTO ingestion (
			id, storage_type, file_name, mime_type, size_bytes,
			labels, primary_path, metadata_path, all_paths, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.StorageType, rec.FileName, rec.MimeType, rec.SizeBytes,
		rec.Labels, rec.PrimaryPath, rec.MetadataPath, rec.AllPaths, rec.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create ingestion", err)
	}

	return nil
}

func (r *Repository) GetIngestion(ctx context.Context, id uuid.UUID) (*labelstore.IngestionRecord, error) {
	query := `
        SELECT id, storage_type, file_name, mime_type, size_bytes,
               labels, primary_path, metadata_path, all_paths, created_at
        FROM ingestion WHERE id = $1`

	var rec labelstore.IngestionRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.StorageType, &rec.FileName, &rec.MimeType, &rec.SizeBytes,
		&rec.Labels, &rec.PrimaryPath, &rec.MetadataPath, &rec.AllPaths, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, labelstore.ErrIngestionNotFound
		}
		return nil, r.handlePostgresError("get ingestion", err)
	}

	return &rec, nil
}

func (r *Repository) ListIngestions(ctx context.Context, storageType string, limit, offset int) ([]*labelstore.IngestionRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
        SELECT id, storage_type, file_name, mime_type, size_bytes,
               labels, primary_path, metadata_path, all_paths, created_at
        FROM ingestion
        WHERE ($1 = '' OR storage_type = $1)
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, storageType, limit, offset)
	if err != nil {
		return nil, r.handlePostgresError("list ingestions", err)
	}
	defer rows.Close()

	var records []*labelstore.IngestionRecord
	for rows.Next() {
		var rec labelstore.IngestionRecord
		if err := rows.Scan(
			&rec.ID, &rec.StorageType, &rec.FileName, &rec.MimeType, &rec.SizeBytes,
			&rec.Labels, &rec.PrimaryPath, &rec.MetadataPath, &rec.AllPaths, &rec.CreatedAt,
		); err != nil {
			return nil, r.handlePostgresError("list ingestions", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list ingestions", err)
	}

	return records, nil
}
