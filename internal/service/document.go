package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/AnishKajan/VaultGuardian-AI/internal/audit"
	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/policy"
	"github.com/AnishKajan/VaultGuardian-AI/internal/repository"
	"github.com/AnishKajan/VaultGuardian-AI/internal/storage"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("document not found")
	ErrEmptyContent       = errors.New("file content is empty")
	ErrDuplicateContent   = errors.New("document with identical content already exists")
	ErrUploadRejected     = errors.New("upload rejected by security policy")
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrContentBlocked     = errors.New("document content is blocked by security policy")
)

// placeholderSummary is shown while a document waits for its pipeline run.
const placeholderSummary = "Pending security scan..."

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// PipelineSubmitter schedules background processing for an accepted
// document. Satisfied by pipeline.Pool.
type PipelineSubmitter interface {
	Submit(documentID string)
}

// DocumentService is the intake and read/admin surface over documents.
type DocumentService interface {
	// Submit validates and stores an upload, creates its metadata row in
	// SCANNING, schedules the pipeline run, and returns immediately.
	// Duplicate content, policy violations and storage failures reject the
	// upload synchronously with no row created.
	Submit(ctx context.Context, raw []byte, originalFilename, contentType, ownerID string) (*model.Document, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// List returns documents using limit/offset and a total count. An empty
	// ownerID lists across all owners.
	List(ctx context.Context, limit, offset int, ownerID string) (*DocumentListResult, error)

	// Download streams the stored content, touching the document's
	// last-accessed time and recording an audit event.
	Download(ctx context.Context, id, requesterID string) (io.ReadCloser, *model.Document, error)

	// Delete removes the stored blob, then the metadata row.
	Delete(ctx context.Context, id, requesterID string) error

	// Quarantine manually quarantines a document with the given reason.
	Quarantine(ctx context.Context, id, reason, requesterID string) (*model.Document, error)
}

type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	pipeline  PipelineSubmitter
	audit     *audit.Logger
	policyCfg config.PolicyConfig
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	pipeline PipelineSubmitter,
	auditLog *audit.Logger,
	policyCfg config.PolicyConfig,
) DocumentService {
	return &documentService{
		store:     store,
		repo:      repo,
		pipeline:  pipeline,
		audit:     auditLog,
		policyCfg: policyCfg,
	}
}

func (s *documentService) Submit(ctx context.Context, raw []byte, originalFilename, contentType, ownerID string) (*model.Document, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyContent
	}

	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	exists, err := s.repo.ExistsByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check content hash: %w", err)
	}
	if exists {
		return nil, ErrDuplicateContent
	}

	// Anything short of a clean ALLOW at upload time is a synchronous
	// rejection; suspicious names never make it into the pipeline.
	if vres := policy.ValidateUpload(originalFilename, contentType, int64(len(raw)), s.policyCfg); vres.Disposition != policy.DispositionAllow {
		return nil, fmt.Errorf("%w: %s", ErrUploadRejected, vres.Reason)
	}

	// Stored filename is UUID + original extension; the user-supplied name
	// is kept as metadata only.
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("documents", genName))

	_, err = s.store.Put(ctx, key, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        int64(len(raw)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
			"sha256":            hash,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:               uuid.New().String(),
		Filename:         genName,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		Size:             int64(len(raw)),
		StorageKey:       key,
		SHA256Hash:       hash,
		Status:           model.StatusScanning,
		RiskLevel:        model.RiskMedium,
		RiskSummary:      placeholderSummary,
		DetectedFlags:    []string{},
		Categories:       []string{},
		OwnerID:          ownerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// Rollback: remove the blob so storage holds no orphaned content.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.audit.DocumentUploaded(stored)
	s.pipeline.Submit(stored.ID)
	return stored, nil
}

// Get returns a document by ID.
func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int, ownerID string) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset, OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Download streams the stored content and touches the last-accessed time.
func (s *documentService) Download(ctx context.Context, id, requesterID string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.IsQuarantined || doc.Status == model.StatusRejected {
		return nil, nil, ErrContentBlocked
	}

	rc, _, err := s.store.Get(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch content: %w", err)
	}

	now := time.Now().UTC()
	doc.LastAccessedAt = &now
	doc.UpdatedAt = now
	if err := s.repo.Update(ctx, doc); err != nil {
		// The download still succeeds; the access time is best effort.
		logJSON(map[string]any{
			"component":   "service",
			"event":       "access_touch_failed",
			"level":       "warn",
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	s.audit.DocumentAccessed(doc, requesterID)
	return rc, doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, id, requesterID string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Storage first; if this fails the row keeps pointing at the blob.
	if err := s.store.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.DocumentDeleted(doc, requesterID)
	return nil
}

// Quarantine manually quarantines a document, typically from an admin
// review flow.
func (s *documentService) Quarantine(ctx context.Context, id, reason, requesterID string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "Manually quarantined"
	}
	doc.Quarantine(reason)
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("persist quarantine: %w", err)
	}
	s.audit.DocumentQuarantined(doc, reason)
	return doc, nil
}
