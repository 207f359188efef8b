package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
)

// HuggingFaceClient calls the Hugging Face inference API for model-assisted
// document analysis. It is safe for concurrent use.
type HuggingFaceClient struct {
	httpClient *http.Client
	apiURL     string
	token      string
	model      string
	timeout    time.Duration
}

// NewHuggingFace builds a client from config. Returns nil when no token is
// configured; a nil client means the classifier runs fallback-only, which
// is the supported default.
func NewHuggingFace(cfg config.HuggingFaceConfig) *HuggingFaceClient {
	if cfg.Token == "" {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HuggingFaceClient{
		httpClient: &http.Client{Timeout: timeout},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		token:      cfg.Token,
		model:      cfg.Model,
		timeout:    timeout,
	}
}

// maxPromptContent bounds how much document text is sent to the model.
const maxPromptContent = 2000

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
	DoSample       bool    `json:"do_sample"`
}

type inferenceReply struct {
	GeneratedText string `json:"generated_text"`
}

// Analyze sends the analysis prompt and parses the structured JSON the
// model is instructed to produce. HTTP 429 maps to ErrRateLimited, 401/403
// to ErrAuthFailed, and unparseable replies to ErrMalformedResponse.
func (c *HuggingFaceClient) Analyze(ctx context.Context, text, filename string) (*ModelResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(inferenceRequest{
		Inputs: buildAnalysisPrompt(text, filename),
		Parameters: inferenceParameters{
			MaxNewTokens:   300,
			Temperature:    0.1,
			ReturnFullText: false,
			DoSample:       false,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal inference request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.apiURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference api: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrAuthFailed
	default:
		return nil, fmt.Errorf("inference api returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}

	return parseInferenceResponse(raw)
}

func buildAnalysisPrompt(content, filename string) string {
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent] + "... [Content truncated]"
	}
	return fmt.Sprintf(`Analyze this document for security risks and provide a brief JSON response:

Document: %s

Identify:
1. PII (Social Security, Credit Cards, etc.)
2. Passwords, API keys, secrets
3. Document category
4. Risk level

Respond with JSON only:
{
  "analysis": "brief description",
  "riskSummary": "security assessment",
  "detectedFlags": ["flag1", "flag2"],
  "categories": ["category"],
  "confidence": 80,
  "recommendations": ["action1"]
}

Content: %s`, filename, content)
}

// parseInferenceResponse handles the inference API reply shape: an array of
// generations whose text is expected to embed one JSON object.
func parseInferenceResponse(raw []byte) (*ModelResult, error) {
	var replies []inferenceReply
	if err := json.Unmarshal(raw, &replies); err != nil || len(replies) == 0 {
		return nil, ErrMalformedResponse
	}

	text := replies[0].GeneratedText
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, ErrMalformedResponse
	}

	var result ModelResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return nil, ErrMalformedResponse
	}
	if result.Confidence == 0 {
		result.Confidence = 75
	}
	return &result, nil
}
