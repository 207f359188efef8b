package model

import "time"

// DocumentStatus is the lifecycle state of a document. Statuses only move
// forward: SCANNING -> ANALYZING -> {APPROVED, REJECTED, QUARANTINED}, or
// straight from SCANNING to QUARANTINED when pre-screening fails.
type DocumentStatus string

const (
	StatusUploading   DocumentStatus = "UPLOADING"
	StatusScanning    DocumentStatus = "SCANNING"
	StatusAnalyzing   DocumentStatus = "ANALYZING"
	StatusApproved    DocumentStatus = "APPROVED"
	StatusRejected    DocumentStatus = "REJECTED"
	StatusQuarantined DocumentStatus = "QUARANTINED"
)

// Terminal reports whether the status is final. Callers polling a document
// should keep re-querying while this is false.
func (s DocumentStatus) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusQuarantined:
		return true
	}
	return false
}

// RiskLevel is the ordered sensitivity tier of a document's content.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// riskOrder maps levels onto a total order so they can be compared.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether l is at or above the given level.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskOrder[l] >= riskOrder[other]
}

// Document represents one uploaded file plus its classification and
// lifecycle status. It is a pure domain model with no persistence tags
// beyond JSON for the HTTP surface.
type Document struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	ContentType      string         `json:"content_type"`
	Size             int64          `json:"size"`
	StorageKey       string         `json:"storage_key"`
	SHA256Hash       string         `json:"sha256_hash"`
	Status           DocumentStatus `json:"status"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	ExtractedText    string         `json:"-"`
	Analysis         string         `json:"analysis,omitempty"`
	RiskSummary      string         `json:"risk_summary,omitempty"`
	DetectedFlags    []string       `json:"detected_flags"`
	Categories       []string       `json:"categories"`
	OwnerID          string         `json:"owner_id"`
	IsQuarantined    bool           `json:"is_quarantined"`
	QuarantineReason string         `json:"quarantine_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	LastAccessedAt   *time.Time     `json:"last_accessed_at,omitempty"`
}

// Quarantine marks the document quarantined with the given reason. The
// quarantine flag and reason are only ever set together, and quarantine
// always forces the risk level to CRITICAL.
func (d *Document) Quarantine(reason string) {
	d.Status = StatusQuarantined
	d.IsQuarantined = true
	d.QuarantineReason = reason
	d.RiskLevel = RiskCritical
}
