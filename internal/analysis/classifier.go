package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"
)

// Result is the classifier's verdict for one document.
type Result struct {
	Analysis        string
	RiskSummary     string
	DetectedFlags   []string
	Categories      []string
	Confidence      int
	Recommendations []string
	RiskLevel       model.RiskLevel
}

// fallbackConfidence is the fixed confidence reported by the deterministic
// keyword fallback.
const fallbackConfidence = 60

// Classifier combines the pattern catalog with an optional model-assisted
// pass. The model pass is strictly additive: whenever the client is nil or
// fails, classification completes on the deterministic fallback.
type Classifier struct {
	client AnalyzerClient
}

// NewClassifier constructs a classifier. client may be nil.
func NewClassifier(client AnalyzerClient) *Classifier {
	return &Classifier{client: client}
}

// Classify analyzes extracted text and the original filename. It never
// fails: model errors degrade to the fallback, and the returned flag set is
// always deduplicated with pattern findings first.
func (c *Classifier) Classify(ctx context.Context, text, filename string) *Result {
	patternFlags := scanner.MatchFlags(text)

	var result *Result
	if c.client != nil {
		mr, err := c.client.Analyze(ctx, text, filename)
		if err != nil {
			logJSON(map[string]any{
				"component": "classifier",
				"event":     "model_analysis_failed",
				"level":     "warn",
				"kind":      failureKind(err),
				"error":     err.Error(),
				"filename":  filename,
			})
			result = c.fallbackResult(text, filename)
		} else {
			result = &Result{
				Analysis:        mr.Analysis,
				RiskSummary:     mr.RiskSummary,
				DetectedFlags:   mr.DetectedFlags,
				Categories:      mr.Categories,
				Confidence:      mr.Confidence,
				Recommendations: mr.Recommendations,
			}
		}
	} else {
		result = c.fallbackResult(text, filename)
	}

	result.DetectedFlags = mergeFlags(patternFlags, result.DetectedFlags)
	result.RiskLevel = ComputeRiskLevel(result.DetectedFlags)
	if result.RiskSummary == "" {
		result.RiskSummary = SummarizeRisks(result.DetectedFlags)
	}
	return result
}

// mergeFlags unions the two flag lists, pattern findings first, keeping
// insertion order and dropping exact duplicates.
func mergeFlags(patternFlags, modelFlags []string) []string {
	seen := make(map[string]struct{}, len(patternFlags)+len(modelFlags))
	merged := make([]string, 0, len(patternFlags)+len(modelFlags))
	for _, lists := range [][]string{patternFlags, modelFlags} {
		for _, f := range lists {
			if _, dup := seen[f]; dup {
				continue
			}
			seen[f] = struct{}{}
			merged = append(merged, f)
		}
	}
	return merged
}

// fallbackResult is the deterministic keyword classification used whenever
// no model backend is configured or the model call failed.
func (c *Classifier) fallbackResult(content, filename string) *Result {
	lowerName := strings.ToLower(filename)
	lowerContent := strings.ToLower(content)

	var category string
	switch {
	case strings.Contains(lowerName, "resume") || strings.Contains(lowerName, "cv") ||
		strings.Contains(lowerContent, "education") || strings.Contains(lowerContent, "experience"):
		category = "Resume/CV"
	case strings.Contains(lowerName, "contract") || strings.Contains(lowerName, "agreement") ||
		strings.Contains(lowerContent, "terms and conditions"):
		category = "Legal Document"
	case strings.Contains(lowerName, "financial") || strings.Contains(lowerName, "report") ||
		strings.Contains(lowerContent, "revenue") || strings.Contains(lowerContent, "profit"):
		category = "Financial Document"
	case strings.Contains(lowerName, "invoice") || strings.Contains(lowerContent, "payment") ||
		strings.Contains(lowerContent, "billing"):
		category = "Invoice/Billing"
	case strings.Contains(lowerContent, "confidential") || strings.Contains(lowerContent, "proprietary"):
		category = "Confidential Document"
	default:
		category = "General Document"
	}

	// RiskSummary is left empty so the merged flag set drives it.
	return &Result{
		Analysis:   fmt.Sprintf("Document analyzed using pattern matching. Content appears to be a %s.", category),
		Categories: []string{category},
		Confidence: fallbackConfidence,
		Recommendations: []string{
			"Pattern-based analysis completed",
			"Consider manual review for sensitive content",
			"Enable LLM integration for more detailed analysis",
		},
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrAuthFailed):
		return "auth_failed"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "unavailable"
	}
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		data["level"] = "info"
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal classifier log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
