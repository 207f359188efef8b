package audit

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
)

// Package audit emits structured, fire-and-forget audit events as JSON
// lines. The sink never blocks or fails the pipeline: marshal errors are
// logged and dropped.

// Logger writes audit events. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New returns a Logger writing to stdout.
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter returns a Logger writing to w; tests pass a buffer.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{enc: json.NewEncoder(w)}
}

func (l *Logger) emit(event string, fields map[string]any) {
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	fields["audit"] = true
	fields["event"] = event

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(fields); err != nil {
		log.Printf("failed to write audit event %s: %v", event, err)
	}
}

// DocumentUploaded records a successful intake.
func (l *Logger) DocumentUploaded(doc *model.Document) {
	l.emit("document_uploaded", map[string]any{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"owner_id":    doc.OwnerID,
		"size":        doc.Size,
	})
}

// DocumentQuarantined records a quarantine with its reason.
func (l *Logger) DocumentQuarantined(doc *model.Document, reason string) {
	l.emit("document_quarantined", map[string]any{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"reason":      reason,
	})
}

// DocumentProcessed records the final disposition of a pipeline run.
func (l *Logger) DocumentProcessed(doc *model.Document) {
	l.emit("document_processed", map[string]any{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"status":      doc.Status,
		"risk_level":  doc.RiskLevel,
		"flag_count":  len(doc.DetectedFlags),
	})
}

// DocumentAccessed records a download or read of the stored content.
func (l *Logger) DocumentAccessed(doc *model.Document, ownerID string) {
	l.emit("document_accessed", map[string]any{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"owner_id":    ownerID,
	})
}

// DocumentDeleted records an explicit deletion.
func (l *Logger) DocumentDeleted(doc *model.Document, ownerID string) {
	l.emit("document_deleted", map[string]any{
		"document_id": doc.ID,
		"filename":    doc.OriginalFilename,
		"owner_id":    ownerID,
	})
}
