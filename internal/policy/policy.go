package policy

import (
	"fmt"
	"strings"

	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"
)

// Package policy evaluates the fixed, ordered security rule set over a
// classified document. Evaluation is a pure function of the document and
// the policy configuration; rules can only escalate the disposition
// (ALLOW -> QUARANTINE -> REJECT), never de-escalate it.

// Disposition is the policy verdict for a document.
type Disposition string

const (
	DispositionAllow      Disposition = "ALLOW"
	DispositionQuarantine Disposition = "QUARANTINE"
	DispositionReject     Disposition = "REJECT"
)

// Allowed reports whether the document may remain stored. Quarantined
// documents stay in storage pending manual review; only REJECT means the
// content is not fit to keep in active circulation.
func (d Disposition) Allowed() bool {
	return d == DispositionAllow || d == DispositionQuarantine
}

// Result is the outcome of a policy evaluation.
type Result struct {
	Disposition      Disposition
	ViolatedPolicies []string
	Reason           string
	Recommendation   string
}

// Violation labels, also used to pick the recommendation text.
const (
	violationFileSize     = "File Size Limit Exceeded"
	violationBlockedCat   = "Blocked Content Category"
	violationCredentials  = "Credential Exposure Policy"
	violationHighRisk     = "High Risk Content"
	violationPII          = "PII Detection Policy"
	violationMaxFlags     = "Maximum Risk Flags Exceeded"
	violationCriticalRisk = "Critical Security Risk"
	violationFileType     = "Unsupported File Type"
	violationFilename     = "Suspicious Filename"
)

// blockedCategories reject a document outright regardless of other rules.
var blockedCategories = map[string]struct{}{
	"Malware":    {},
	"Executable": {},
	"Script":     {},
	"Suspicious": {},
}

// piiFlags trigger the PII policy.
var piiFlags = map[string]struct{}{
	scanner.FlagCreditCard: {},
	scanner.FlagSSN:        {},
	scanner.FlagPhone:      {},
	scanner.FlagEmail:      {},
	"Passport Number":      {},
	"Driver's License":     {},
	"PII":                  {},
}

// credentialFlags trigger the credential-exposure policy.
var credentialFlags = map[string]struct{}{
	scanner.FlagPassword:      {},
	scanner.FlagAPIKey:        {},
	scanner.FlagSecret:        {},
	scanner.FlagCredentials:   {},
	scanner.FlagDBCredentials: {},
	"Cloud Credentials":       {},
	scanner.FlagPrivateKey:    {},
}

// criticalFlags trigger the final catch-all quarantine rule.
var criticalFlags = map[string]struct{}{
	scanner.FlagCreditCard:      {},
	scanner.FlagSSN:             {},
	scanner.FlagPassword:        {},
	scanner.FlagAPIKey:          {},
	scanner.FlagMalware:         {},
	scanner.FlagExecutable:      {},
	scanner.FlagScriptInjection: {},
	scanner.FlagSQLInjection:    {},
}

// evaluation accumulates rule outcomes with escalate-only semantics.
type evaluation struct {
	disposition Disposition
	violations  []string
	reason      string
}

func (e *evaluation) reject(violation, reason string) {
	e.violations = append(e.violations, violation)
	e.disposition = DispositionReject
	e.reason = reason
}

// quarantine records a violation and escalates to QUARANTINE unless the
// document is already rejected; REJECT, once set, is final.
func (e *evaluation) quarantine(violation, reason string) {
	e.violations = append(e.violations, violation)
	if e.disposition != DispositionReject {
		e.disposition = DispositionQuarantine
		e.reason = reason
	}
}

// Enforce evaluates the ordered rule set over a classified document.
func Enforce(doc *model.Document, cfg config.PolicyConfig) Result {
	e := &evaluation{disposition: DispositionAllow}

	// 1. File size.
	if doc.Size > cfg.MaxFileSize {
		e.reject(violationFileSize,
			fmt.Sprintf("File size (%d bytes) exceeds maximum allowed (%d bytes)", doc.Size, cfg.MaxFileSize))
	}

	// 2. Blocked content categories.
	if cat := blockedCategory(doc.Categories); cat != "" {
		e.reject(violationBlockedCat, fmt.Sprintf("Document category '%s' is not allowed", cat))
	}

	// 3. Credential exposure.
	if cfg.BlockCredentials && containsAny(doc.DetectedFlags, credentialFlags) {
		e.reject(violationCredentials, "Document contains exposed credentials or secrets")
	}

	// 4. High or critical risk level.
	if cfg.QuarantineHighRisk && doc.RiskLevel.AtLeast(model.RiskHigh) {
		e.quarantine(violationHighRisk, "Document contains high-risk content requiring manual review")
	}

	// 5. PII.
	if cfg.BlockPII && containsAny(doc.DetectedFlags, piiFlags) {
		e.quarantine(violationPII, "Document contains Personally Identifiable Information (PII)")
	}

	// 6. Flag volume.
	if len(doc.DetectedFlags) > cfg.MaxRiskFlags {
		e.quarantine(violationMaxFlags,
			fmt.Sprintf("Document has %d risk flags (maximum allowed: %d)", len(doc.DetectedFlags), cfg.MaxRiskFlags))
	}

	// 7. Critical security flags.
	if containsAny(doc.DetectedFlags, criticalFlags) {
		e.quarantine(violationCriticalRisk, "Document contains critical security risks")
	}

	reason := e.reason
	if reason == "" {
		reason = "Document passed all policy checks"
	}
	return Result{
		Disposition:      e.disposition,
		ViolatedPolicies: e.violations,
		Reason:           reason,
		Recommendation:   recommendation(e.disposition, e.violations),
	}
}

// ValidateUpload is the pre-upload-time variant: it checks only size, the
// declared content-type allow-list, and filename heuristics, before any
// storage or pipeline work begins.
func ValidateUpload(filename, contentType string, size int64, cfg config.PolicyConfig) Result {
	e := &evaluation{disposition: DispositionAllow}

	if size > cfg.MaxFileSize {
		e.reject(violationFileSize, "File size exceeds maximum allowed limit")
	}
	if !ContentTypeAllowed(contentType) {
		e.reject(violationFileType, "File type not allowed by security policy")
	}
	if suspiciousFilename(filename) {
		e.quarantine(violationFilename, "Filename contains suspicious patterns")
	}

	reason := e.reason
	if reason == "" {
		reason = "Upload validation passed"
	}
	return Result{
		Disposition:      e.disposition,
		ViolatedPolicies: e.violations,
		Reason:           reason,
		Recommendation:   recommendation(e.disposition, e.violations),
	}
}

// allowedContentTypes is the exact-match part of the content-type
// allow-list; text/* and image/* are allowed by prefix.
var allowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint": {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/json":             {},
	"application/xml":              {},
	"application/zip":              {},
	"application/x-rar-compressed": {},
}

// ContentTypeAllowed reports whether the declared content type is on the
// upload allow-list.
func ContentTypeAllowed(contentType string) bool {
	if contentType == "" {
		return false
	}
	if strings.HasPrefix(contentType, "text/") || strings.HasPrefix(contentType, "image/") {
		return true
	}
	_, ok := allowedContentTypes[contentType]
	return ok
}

var suspiciousExtensions = []string{".exe", ".bat", ".cmd", ".scr", ".vbs", ".js", ".ps1"}

var suspiciousNameMarkers = []string{"..", "script", "payload", "exploit", "malware"}

func suspiciousFilename(filename string) bool {
	lower := strings.ToLower(filename)
	for _, marker := range suspiciousNameMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, ext := range suspiciousExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func blockedCategory(categories []string) string {
	for _, c := range categories {
		if _, ok := blockedCategories[c]; ok {
			return c
		}
	}
	return ""
}

func containsAny(flags []string, set map[string]struct{}) bool {
	for _, f := range flags {
		if _, ok := set[f]; ok {
			return true
		}
	}
	return false
}

func recommendation(d Disposition, violations []string) string {
	switch d {
	case DispositionAllow:
		return "Document approved for storage and sharing"
	case DispositionQuarantine:
		return "Document requires manual security review before release. Contact security team for assessment."
	case DispositionReject:
		switch {
		case hasViolation(violations, violationCredentials):
			return "Remove all credentials and secrets before re-uploading. Use environment variables or secure vaults for sensitive data."
		case hasViolation(violations, violationPII):
			return "Remove or redact all personally identifiable information before re-uploading."
		case hasViolation(violations, violationFileSize):
			return "Reduce file size or split into smaller files before re-uploading."
		case hasViolation(violations, violationBlockedCat):
			return "This file type is not permitted. Contact administrator if business justification exists."
		default:
			return "Address security issues identified in the scan before re-uploading."
		}
	default:
		return "Contact system administrator for guidance."
	}
}

func hasViolation(violations []string, v string) bool {
	for _, x := range violations {
		if x == v {
			return true
		}
	}
	return false
}
