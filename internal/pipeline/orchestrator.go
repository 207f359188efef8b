package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/AnishKajan/VaultGuardian-AI/internal/analysis"
	"github.com/AnishKajan/VaultGuardian-AI/internal/audit"
	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/policy"
	"github.com/AnishKajan/VaultGuardian-AI/internal/repository"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"
	"github.com/AnishKajan/VaultGuardian-AI/internal/storage"
	"github.com/AnishKajan/VaultGuardian-AI/internal/textextract"
)

// Package pipeline drives a document from SCANNING to a terminal status.
// The orchestrator owns every status mutation after intake; handlers and
// the intake service never move a document forward themselves.

// Orchestrator runs the scan/analyze/enforce stages over one document.
type Orchestrator struct {
	repo       repository.DocumentRepository
	store      storage.Storage
	prescreen  *scanner.PreScreen
	extractor  textextract.Extractor
	classifier *analysis.Classifier
	policyCfg  config.PolicyConfig
	audit      *audit.Logger
	runs       *prometheus.CounterVec
}

// NewOrchestrator wires the pipeline stages together and registers the run
// counter on the given registry.
func NewOrchestrator(
	repo repository.DocumentRepository,
	store storage.Storage,
	extractor textextract.Extractor,
	classifier *analysis.Classifier,
	policyCfg config.PolicyConfig,
	auditLog *audit.Logger,
	reg prometheus.Registerer,
) (*Orchestrator, error) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Completed pipeline runs by final document status.",
		},
		[]string{"status"},
	)
	if err := reg.Register(runs); err != nil {
		return nil, fmt.Errorf("register pipeline counter: %w", err)
	}

	return &Orchestrator{
		repo:       repo,
		store:      store,
		prescreen:  scanner.NewPreScreen(),
		extractor:  extractor,
		classifier: classifier,
		policyCfg:  policyCfg,
		audit:      auditLog,
		runs:       runs,
	}, nil
}

// Advance runs the remaining pipeline stages for the document. Calling it
// on a document that already reached a terminal status is a no-op. Any
// fault forces REJECTED with the fault text as the risk summary; there are
// no retries.
func (o *Orchestrator) Advance(ctx context.Context, documentID string) error {
	doc, err := o.repo.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.Status.Terminal() {
		return nil
	}

	raw, err := o.fetchContent(ctx, doc.StorageKey)
	if err != nil {
		return o.fault(ctx, doc, "content fetch", err)
	}

	// Stage 1: pre-screen. A hit short-circuits straight to quarantine
	// before any analysis work.
	if res := o.prescreen.Scan(raw, doc.ContentType); !res.Clean {
		summary := "Security threat detected: " + res.Summary()
		doc.Quarantine(summary)
		doc.RiskSummary = summary
		doc.UpdatedAt = time.Now().UTC()
		if err := o.repo.Update(ctx, doc); err != nil {
			return o.fault(ctx, doc, "quarantine persist", err)
		}
		o.audit.DocumentQuarantined(doc, doc.QuarantineReason)
		o.finish(doc)
		return nil
	}

	doc.Status = model.StatusAnalyzing
	doc.UpdatedAt = time.Now().UTC()
	if err := o.repo.Update(ctx, doc); err != nil {
		return o.fault(ctx, doc, "status persist", err)
	}

	// Stage 2: text extraction. Unsupported or corrupt content degrades to
	// empty text; classification then runs on the filename alone.
	text, err := o.extractor.Extract(ctx, raw, doc.ContentType)
	if err != nil {
		logJSON(map[string]any{
			"component":   "pipeline",
			"event":       "text_extraction_failed",
			"level":       "warn",
			"document_id": doc.ID,
			"error":       err.Error(),
		})
		text = ""
	}
	doc.ExtractedText = text

	// Stage 3: classification. Never fails; model errors fold into the
	// deterministic fallback inside the classifier.
	cres := o.classifier.Classify(ctx, text, doc.OriginalFilename)
	doc.Analysis = cres.Analysis
	doc.RiskSummary = cres.RiskSummary
	doc.DetectedFlags = cres.DetectedFlags
	doc.Categories = cres.Categories
	doc.RiskLevel = cres.RiskLevel
	doc.UpdatedAt = time.Now().UTC()
	if err := o.repo.Update(ctx, doc); err != nil {
		return o.fault(ctx, doc, "analysis persist", err)
	}

	// Stage 4: policy disposition.
	pres := policy.Enforce(doc, o.policyCfg)
	switch pres.Disposition {
	case policy.DispositionReject:
		doc.Status = model.StatusRejected
		doc.RiskSummary = pres.Reason
	case policy.DispositionQuarantine:
		doc.Quarantine(pres.Reason)
	default:
		doc.Status = model.StatusApproved
	}
	doc.UpdatedAt = time.Now().UTC()
	if err := o.repo.Update(ctx, doc); err != nil {
		return o.fault(ctx, doc, "disposition persist", err)
	}

	if doc.IsQuarantined {
		o.audit.DocumentQuarantined(doc, doc.QuarantineReason)
	}
	o.finish(doc)
	return nil
}

func (o *Orchestrator) fetchContent(ctx context.Context, key string) ([]byte, error) {
	rc, _, err := o.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// fault is the single fatal-error path: the document lands in REJECTED with
// the fault recorded as its risk summary, and the cause propagates to the
// caller for logging.
func (o *Orchestrator) fault(ctx context.Context, doc *model.Document, stage string, cause error) error {
	doc.Status = model.StatusRejected
	// The quarantine flag travels with QUARANTINED only; a fault after a
	// quarantine decision still lands in plain REJECTED.
	doc.IsQuarantined = false
	doc.QuarantineReason = ""
	doc.RiskSummary = fmt.Sprintf("Processing failed during %s: %v", stage, cause)
	doc.UpdatedAt = time.Now().UTC()
	if err := o.repo.Update(ctx, doc); err != nil {
		logJSON(map[string]any{
			"component":   "pipeline",
			"event":       "fault_persist_failed",
			"level":       "error",
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
	o.finish(doc)
	return fmt.Errorf("%s for document %s: %w", stage, doc.ID, cause)
}

func (o *Orchestrator) finish(doc *model.Document) {
	o.audit.DocumentProcessed(doc)
	o.runs.WithLabelValues(string(doc.Status)).Inc()
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal pipeline log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
