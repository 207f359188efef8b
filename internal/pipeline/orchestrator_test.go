package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AnishKajan/VaultGuardian-AI/internal/analysis"
	"github.com/AnishKajan/VaultGuardian-AI/internal/audit"
	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	repomocks "github.com/AnishKajan/VaultGuardian-AI/internal/repository/mocks"
	"github.com/AnishKajan/VaultGuardian-AI/internal/storage"
	storagemocks "github.com/AnishKajan/VaultGuardian-AI/internal/storage/mocks"
	"github.com/AnishKajan/VaultGuardian-AI/internal/textextract"
)

func testPolicyConfig() config.PolicyConfig {
	return config.PolicyConfig{
		MaxFileSize:        52428800,
		QuarantineHighRisk: true,
		BlockPII:           true,
		BlockCredentials:   true,
		MaxRiskFlags:       3,
	}
}

func newTestOrchestrator(t *testing.T, repo *repomocks.MockDocumentRepository, store *storagemocks.MockStorage) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(
		repo,
		store,
		textextract.New(),
		analysis.NewClassifier(nil),
		testPolicyConfig(),
		audit.NewWithWriter(io.Discard),
		prometheus.NewRegistry(),
	)
	require.NoError(t, err)
	return orch
}

func scanningDoc(id, content string) *model.Document {
	return &model.Document{
		ID:               id,
		Filename:         id + ".txt",
		OriginalFilename: "notes.txt",
		ContentType:      "text/plain",
		Size:             int64(len(content)),
		StorageKey:       "documents/" + id,
		Status:           model.StatusScanning,
		RiskLevel:        model.RiskMedium,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
}

func expectContent(store *storagemocks.MockStorage, key, content string) {
	store.On("Get", mock.Anything, key).
		Return(io.NopCloser(bytes.NewReader([]byte(content))), storage.ObjectInfo{}, nil)
}

func TestAdvanceApprovesCleanDocument(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := "just a plain note about lunch plans"
	doc := scanningDoc("doc-1", content)

	repo.On("FindByID", mock.Anything, "doc-1").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(nil)
	expectContent(store, doc.StorageKey, content)

	require.NoError(t, orch.Advance(context.Background(), "doc-1"))

	assert.Equal(t, model.StatusApproved, doc.Status)
	assert.Equal(t, model.RiskLow, doc.RiskLevel)
	assert.False(t, doc.IsQuarantined)
	assert.Empty(t, doc.DetectedFlags)
	// analyzing persist, analysis persist, disposition persist
	repo.AssertNumberOfCalls(t, "Update", 3)
}

func TestAdvanceQuarantinesOnPreScreenHit(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := string([]byte{0x4D, 0x5A}) + "fake windows binary"
	doc := scanningDoc("doc-2", content)

	repo.On("FindByID", mock.Anything, "doc-2").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(nil)
	expectContent(store, doc.StorageKey, content)

	require.NoError(t, orch.Advance(context.Background(), "doc-2"))

	assert.Equal(t, model.StatusQuarantined, doc.Status)
	assert.Equal(t, model.RiskCritical, doc.RiskLevel)
	assert.True(t, doc.IsQuarantined)
	assert.True(t, strings.HasPrefix(doc.QuarantineReason, "Security threat detected:"))
	// Pre-screen hits never reach the analysis stages.
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAdvanceQuarantinesOnPolicy(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := "employee record: ssn 123-45-6789"
	doc := scanningDoc("doc-3", content)

	repo.On("FindByID", mock.Anything, "doc-3").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(nil)
	expectContent(store, doc.StorageKey, content)

	require.NoError(t, orch.Advance(context.Background(), "doc-3"))

	assert.Equal(t, model.StatusQuarantined, doc.Status)
	assert.True(t, doc.IsQuarantined)
	assert.Contains(t, doc.DetectedFlags, "Social Security Number")
	assert.Equal(t, model.RiskCritical, doc.RiskLevel)
}

func TestAdvanceRejectsOnCredentialPolicy(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := "deploy config password=hunter2"
	doc := scanningDoc("doc-4", content)

	repo.On("FindByID", mock.Anything, "doc-4").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(nil)
	expectContent(store, doc.StorageKey, content)

	require.NoError(t, orch.Advance(context.Background(), "doc-4"))

	assert.Equal(t, model.StatusRejected, doc.Status)
	assert.False(t, doc.IsQuarantined)
	assert.Contains(t, doc.DetectedFlags, "Hardcoded Password")
	assert.Equal(t, "Document contains exposed credentials or secrets", doc.RiskSummary)
}

func TestAdvanceFaultsToRejectedOnFetchFailure(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	doc := scanningDoc("doc-5", "")

	repo.On("FindByID", mock.Anything, "doc-5").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(nil)
	store.On("Get", mock.Anything, doc.StorageKey).
		Return(nil, storage.ObjectInfo{}, errors.New("connection refused"))

	err := orch.Advance(context.Background(), "doc-5")

	assert.Error(t, err)
	assert.Equal(t, model.StatusRejected, doc.Status)
	assert.Contains(t, doc.RiskSummary, "Processing failed during content fetch")
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestAdvanceFaultAfterQuarantineClearsFlag(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := "employee record: ssn 123-45-6789"
	doc := scanningDoc("doc-7", content)

	repo.On("FindByID", mock.Anything, "doc-7").Return(doc, nil)
	// Analyzing and analysis persists succeed, the disposition persist
	// fails, the fault-path persist succeeds.
	repo.On("Update", mock.Anything, doc).Return(nil).Twice()
	repo.On("Update", mock.Anything, doc).Return(errors.New("connection reset")).Once()
	repo.On("Update", mock.Anything, doc).Return(nil).Once()
	expectContent(store, doc.StorageKey, content)

	err := orch.Advance(context.Background(), "doc-7")

	assert.Error(t, err)
	assert.Equal(t, model.StatusRejected, doc.Status)
	assert.False(t, doc.IsQuarantined)
	assert.Empty(t, doc.QuarantineReason)
	assert.Contains(t, doc.RiskSummary, "Processing failed during disposition persist")
	repo.AssertNumberOfCalls(t, "Update", 4)
}

func TestAdvanceFaultOnQuarantinePersistClearsFlag(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	content := string([]byte{0x4D, 0x5A}) + "fake windows binary"
	doc := scanningDoc("doc-8", content)

	repo.On("FindByID", mock.Anything, "doc-8").Return(doc, nil)
	repo.On("Update", mock.Anything, doc).Return(errors.New("connection reset")).Once()
	repo.On("Update", mock.Anything, doc).Return(nil).Once()
	expectContent(store, doc.StorageKey, content)

	err := orch.Advance(context.Background(), "doc-8")

	assert.Error(t, err)
	assert.Equal(t, model.StatusRejected, doc.Status)
	assert.False(t, doc.IsQuarantined)
	assert.Empty(t, doc.QuarantineReason)
	assert.Contains(t, doc.RiskSummary, "Processing failed during quarantine persist")
}

func TestAdvanceIsNoOpOnTerminalStatus(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	doc := scanningDoc("doc-6", "x")
	doc.Status = model.StatusApproved

	repo.On("FindByID", mock.Anything, "doc-6").Return(doc, nil)

	require.NoError(t, orch.Advance(context.Background(), "doc-6"))

	store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAdvanceReturnsErrorWhenDocumentMissing(t *testing.T) {
	repo := new(repomocks.MockDocumentRepository)
	store := new(storagemocks.MockStorage)
	orch := newTestOrchestrator(t, repo, store)

	repo.On("FindByID", mock.Anything, "missing").Return(nil, errors.New("no rows"))

	assert.Error(t, orch.Advance(context.Background(), "missing"))
}
