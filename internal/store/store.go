package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Upload is a stored file waiting for deferred deletion.
type Upload struct {
	ID        int64
	Path      string // location on disk
	Link      string // public URL path
	Room      string
	Username  string
	StoredAt  time.Time
	DeleteAt  time.Time
	DeletedAt *time.Time // nil while the file is still pending deletion
}

// UploadStore tracks uploads so their deletion survives restarts.
type UploadStore interface {
	// RecordUpload inserts a pending upload and sets its ID.
	RecordUpload(ctx context.Context, upload *Upload) error

	// PendingUploads lists uploads not yet deleted, soonest deletion first.
	PendingUploads(ctx context.Context) ([]*Upload, error)

	// MarkDeleted records that the file at path was removed.
	MarkDeleted(ctx context.Context, path string, at time.Time) error

	// GetUpload retrieves an upload by its disk path.
	GetUpload(ctx context.Context, path string) (*Upload, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UploadStore

	// Close closes the underlying database connection.
	Close() error
}
