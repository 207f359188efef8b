package analysis_test

import (
	"context"
	"testing"

	. "github.com/AnishKajan/VaultGuardian-AI/internal/analysis"
	"github.com/AnishKajan/VaultGuardian-AI/internal/analysis/mocks"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestClassifyWithoutModelBackend(t *testing.T) {
	ctx := context.Background()
	c := NewClassifier(nil)

	t.Run("ssn text is high risk", func(t *testing.T) {
		res := c.Classify(ctx, "here is 123-45-6789 and nothing else", "notes.txt")
		assert.Contains(t, res.DetectedFlags, scanner.FlagSSN)
		assert.Equal(t, model.RiskHigh, res.RiskLevel)
		assert.Equal(t, FallbackConfidence, res.Confidence)
	})

	t.Run("clean text is low risk general document", func(t *testing.T) {
		res := c.Classify(ctx, "", "empty.txt")
		assert.Empty(t, res.DetectedFlags)
		assert.Equal(t, model.RiskLow, res.RiskLevel)
		assert.Equal(t, []string{"General Document"}, res.Categories)
		assert.Equal(t, "No security risks detected in this document.", res.RiskSummary)
	})

	t.Run("stacked high risk flags are critical", func(t *testing.T) {
		text := "111-11-1111 and 222-22-2222 plus password=x plus api_key=y"
		res := c.Classify(ctx, text, "dump.txt")
		assert.Contains(t, res.DetectedFlags, scanner.FlagMultipleSSN)
		assert.Contains(t, res.DetectedFlags, scanner.FlagPassword)
		assert.Contains(t, res.DetectedFlags, scanner.FlagAPIKey)
		assert.Equal(t, model.RiskCritical, res.RiskLevel)
	})

	t.Run("fallback categories from filename", func(t *testing.T) {
		tests := []struct {
			filename string
			content  string
			want     string
		}{
			{"john_resume.pdf", "", "Resume/CV"},
			{"contract_v2.docx", "", "Legal Document"},
			{"q3_report.xlsx", "", "Financial Document"},
			{"invoice_1001.txt", "", "Invoice/Billing"},
			{"notes.txt", "this is proprietary material", "Confidential Document"},
			{"misc.txt", "hello", "General Document"},
		}
		for _, tt := range tests {
			res := c.Classify(ctx, tt.content, tt.filename)
			assert.Equal(t, []string{tt.want}, res.Categories, tt.filename)
			assert.NotEmpty(t, res.Categories)
		}
	})

	t.Run("deterministic across runs", func(t *testing.T) {
		text := "alice@example.com password=x"
		first := c.Classify(ctx, text, "a.txt")
		for i := 0; i < 5; i++ {
			again := c.Classify(ctx, text, "a.txt")
			assert.Equal(t, first.DetectedFlags, again.DetectedFlags)
			assert.Equal(t, first.RiskLevel, again.RiskLevel)
		}
	})
}

func TestClassifyMergesModelFlags(t *testing.T) {
	ctx := context.Background()
	client := new(mocks.MockAnalyzerClient)
	client.On("Analyze", mock.Anything, mock.Anything, "report.txt").Return(&ModelResult{
		Analysis:      "model analysis",
		RiskSummary:   "model summary",
		DetectedFlags: []string{"GDPR Violation", scanner.FlagEmail}, // email dup with pattern pass
		Categories:    []string{"Financial Document"},
		Confidence:    85,
	}, nil)

	c := NewClassifier(client)
	res := c.Classify(ctx, "contact bob@example.com", "report.txt")

	// Pattern flags come first, model flags after, duplicates dropped.
	assert.Equal(t, []string{scanner.FlagEmail, "GDPR Violation"}, res.DetectedFlags)
	assert.Equal(t, "model analysis", res.Analysis)
	assert.Equal(t, "model summary", res.RiskSummary)
	assert.Equal(t, 85, res.Confidence)
	// Email + GDPR Violation are two medium flags.
	assert.Equal(t, model.RiskHigh, res.RiskLevel)
	client.AssertExpectations(t)
}

func TestClassifyFallsBackOnModelFailure(t *testing.T) {
	ctx := context.Background()

	for _, kindErr := range []error{ErrRateLimited, ErrAuthFailed, ErrMalformedResponse, context.DeadlineExceeded} {
		client := new(mocks.MockAnalyzerClient)
		client.On("Analyze", mock.Anything, mock.Anything, mock.Anything).Return(nil, kindErr)

		c := NewClassifier(client)
		res := c.Classify(ctx, "plain text payment details", "invoice.txt")

		assert.Equal(t, FallbackConfidence, res.Confidence, "err %v", kindErr)
		assert.Equal(t, []string{"Invoice/Billing"}, res.Categories)
		assert.NotEmpty(t, res.RiskSummary)
		client.AssertExpectations(t)
	}
}

func TestMergeFlags(t *testing.T) {
	merged := MergeFlags(
		[]string{"A", "B"},
		[]string{"B", "C", "A", "C"},
	)
	assert.Equal(t, []string{"A", "B", "C"}, merged)
	assert.Empty(t, MergeFlags(nil, nil))
}
