package textextract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Package textextract converts raw file bytes plus a declared content type
// into plain text for analysis. Extraction is stateless and may fail on
// unsupported or corrupt content; the pipeline treats failure as "no text"
// rather than aborting.

var ErrUnsupportedType = errors.New("unsupported content type")

// Extractor converts raw bytes into analyzable plain text.
type Extractor interface {
	Extract(ctx context.Context, raw []byte, contentType string) (string, error)
}

// plainExtractor handles the textual formats the store accepts directly.
// Binary document formats (PDF, Office) are declared unsupported here and
// degrade to keyword-on-filename classification downstream.
type plainExtractor struct{}

// New returns the default extractor.
func New() Extractor {
	return &plainExtractor{}
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

func (e *plainExtractor) Extract(ctx context.Context, raw []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.ToLower(strings.TrimSpace(ct))

	switch {
	case ct == "text/html" || ct == "application/xhtml+xml":
		return normalize(htmlTagPattern.ReplaceAllString(string(raw), " ")), nil
	case ct == "application/json":
		return extractJSON(raw)
	case ct == "application/xml" || ct == "text/xml":
		return normalize(htmlTagPattern.ReplaceAllString(string(raw), " ")), nil
	case strings.HasPrefix(ct, "text/"):
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("invalid utf-8 in %s content", ct)
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
}

// extractJSON flattens JSON values into whitespace-separated text so the
// pattern catalog can see string leaves.
func extractJSON(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("parse json: %w", err)
	}
	var sb strings.Builder
	flattenJSON(v, &sb)
	return normalize(sb.String()), nil
}

func flattenJSON(v any, sb *strings.Builder) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			sb.WriteString(k)
			sb.WriteByte(' ')
			flattenJSON(val, sb)
		}
	case []any:
		for _, val := range t {
			flattenJSON(val, sb)
		}
	case string:
		sb.WriteString(t)
		sb.WriteByte(' ')
	case float64:
		fmt.Fprintf(sb, "%v ", t)
	case bool:
		fmt.Fprintf(sb, "%v ", t)
	}
}

func normalize(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}
