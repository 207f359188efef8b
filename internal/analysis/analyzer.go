package analysis

import (
	"context"
	"errors"
)

// Analyzer client failure kinds. All of them fold into the deterministic
// fallback path; the distinction exists so the originating failure can be
// logged.
var (
	ErrRateLimited       = errors.New("content analysis rate limited")
	ErrAuthFailed        = errors.New("content analysis authentication failed")
	ErrMalformedResponse = errors.New("content analysis returned malformed response")
)

// ModelResult is the structured reply of the external content-analysis
// model.
type ModelResult struct {
	Analysis        string   `json:"analysis"`
	RiskSummary     string   `json:"riskSummary"`
	DetectedFlags   []string `json:"detectedFlags"`
	Categories      []string `json:"categories"`
	Confidence      int      `json:"confidence"`
	Recommendations []string `json:"recommendations"`
}

// AnalyzerClient is the optional model-assisted content analysis
// collaborator. Implementations must be time-bounded; the classifier never
// waits on an analyzer beyond its configured timeout.
type AnalyzerClient interface {
	Analyze(ctx context.Context, text, filename string) (*ModelResult, error)
}
