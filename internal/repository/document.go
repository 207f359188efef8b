package repository

import (
	"context"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
)

// DocumentRepository defines data access for document metadata rows. The
// stored object content itself lives in object storage, keyed by
// Document.StorageKey; this layer never sees file bytes.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Update persists the mutable fields of an existing document: status,
	// risk level, analysis output, flags, categories, quarantine state and
	// access time.
	Update(ctx context.Context, doc *model.Document) error

	// ExistsByHash reports whether a document with the given SHA-256
	// content hash already exists.
	ExistsByHash(ctx context.Context, sha256Hash string) (bool, error)

	// List returns a paginated list of documents, newest first, and the
	// total row count for the filter.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. Deleting a missing row is not an
	// error.
	Delete(ctx context.Context, id string) error
}
