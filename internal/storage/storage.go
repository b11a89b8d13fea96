package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrObjectNotFound is returned when a key resolves to nothing.
var ErrObjectNotFound = errors.New("storage: object not found")

// Category namespaces object keys by what the file is attached to.
type Category string

const (
	CategoryAnimalPhoto     Category = "photos"
	CategoryMedicalDocument Category = "documents"
)

// Storage persists uploaded files. Keys returned by Store are opaque and
// end up in photo_keys / document_keys columns.
type Storage interface {
	// Store saves the content under a fresh key scoped to the owning
	// record and returns that key.
	Store(ctx context.Context, category Category, ownerID uuid.UUID, filename string, content io.Reader, contentType string) (string, error)

	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)

	Delete(ctx context.Context, key string) error

	// URL returns a link the client can fetch the object from: a
	// presigned URL for S3, a served path for local files.
	URL(ctx context.Context, key string, expiration time.Duration) (string, error)

	Exists(ctx context.Context, key string) (bool, error)

	Metadata(ctx context.Context, key string) (ObjectMetadata, error)
}

type ObjectMetadata struct {
	Size         int64     `json:"size"`
	ContentType  string    `json:"contentType"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag"`
}
