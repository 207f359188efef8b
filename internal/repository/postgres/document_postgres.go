package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/repository"
)

// DocumentPostgres is the PostgreSQL implementation of
// repository.DocumentRepository. It uses database/sql with parameterized
// queries and contains no business logic. DetectedFlags and Categories are
// stored as JSONB.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, filename, original_filename, content_type, size, storage_key,
	sha256_hash, status, risk_level, extracted_text, analysis, risk_summary, detected_flags,
	categories, owner_id, is_quarantined, quarantine_reason, created_at, updated_at, last_accessed_at`

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filename, original_filename, content_type, size, storage_key,
			sha256_hash, status, risk_level, extracted_text, analysis, risk_summary, detected_flags,
			categories, owner_id, is_quarantined, quarantine_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + documentColumns

	flags, categories, err := marshalLists(doc)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Filename,
		doc.OriginalFilename,
		doc.ContentType,
		doc.Size,
		doc.StorageKey,
		doc.SHA256Hash,
		doc.Status,
		doc.RiskLevel,
		nullableText(doc.ExtractedText),
		doc.Analysis,
		doc.RiskSummary,
		flags,
		categories,
		doc.OwnerID,
		doc.IsQuarantined,
		doc.QuarantineReason,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// Update persists the mutable fields of an existing document.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document) error {
	const q = `
		UPDATE documents
		SET status = $2, risk_level = $3, extracted_text = $4, analysis = $5,
			risk_summary = $6, detected_flags = $7, categories = $8,
			is_quarantined = $9, quarantine_reason = $10, updated_at = $11,
			last_accessed_at = $12
		WHERE id = $1
	`
	flags, categories, err := marshalLists(doc)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.Status,
		doc.RiskLevel,
		nullableText(doc.ExtractedText),
		doc.Analysis,
		doc.RiskSummary,
		flags,
		categories,
		doc.IsQuarantined,
		doc.QuarantineReason,
		doc.UpdatedAt,
		doc.LastAccessedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ExistsByHash reports whether a row with the given content hash exists.
func (r *DocumentPostgres) ExistsByHash(ctx context.Context, sha256Hash string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM documents WHERE sha256_hash = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, sha256Hash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
// An empty OwnerID lists across all owners.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE ($1 = '' OR owner_id = $1)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, pq.OwnerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE ($1 = '' OR owner_id = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.OwnerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a document by ID. Deleting a missing row is not an error.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d          model.Document
		extracted  sql.NullString
		flags      []byte
		categories []byte
		accessedAt sql.NullTime
	)
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.OriginalFilename,
		&d.ContentType,
		&d.Size,
		&d.StorageKey,
		&d.SHA256Hash,
		&d.Status,
		&d.RiskLevel,
		&extracted,
		&d.Analysis,
		&d.RiskSummary,
		&flags,
		&categories,
		&d.OwnerID,
		&d.IsQuarantined,
		&d.QuarantineReason,
		&d.CreatedAt,
		&d.UpdatedAt,
		&accessedAt,
	); err != nil {
		return nil, err
	}
	d.ExtractedText = extracted.String
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &d.DetectedFlags); err != nil {
			return nil, fmt.Errorf("decode detected_flags: %w", err)
		}
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &d.Categories); err != nil {
			return nil, fmt.Errorf("decode categories: %w", err)
		}
	}
	if accessedAt.Valid {
		t := accessedAt.Time
		d.LastAccessedAt = &t
	}
	return &d, nil
}

// nullableText stores an empty string as NULL; the column stays NULL until
// extraction produces text.
func nullableText(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// marshalLists encodes the flag and category slices as JSONB values. Nil
// slices are stored as empty arrays so reads never distinguish the two.
func marshalLists(doc *model.Document) ([]byte, []byte, error) {
	flags := doc.DetectedFlags
	if flags == nil {
		flags = []string{}
	}
	categories := doc.Categories
	if categories == nil {
		categories = []string{}
	}
	fb, err := json.Marshal(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode detected_flags: %w", err)
	}
	cb, err := json.Marshal(categories)
	if err != nil {
		return nil, nil, fmt.Errorf("encode categories: %w", err)
	}
	return fb, cb, nil
}
