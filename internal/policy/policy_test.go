package policy

import (
	"testing"

	"github.com/AnishKajan/VaultGuardian-AI/internal/config"
	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"

	"github.com/stretchr/testify/assert"
)

func defaultConfig() config.PolicyConfig {
	return config.PolicyConfig{
		MaxFileSize:        52428800,
		QuarantineHighRisk: true,
		BlockPII:           true,
		BlockCredentials:   true,
		MaxRiskFlags:       3,
	}
}

func TestEnforce(t *testing.T) {
	tests := []struct {
		name          string
		doc           model.Document
		cfg           config.PolicyConfig
		want          Disposition
		wantViolation string
	}{
		{
			name: "clean document is allowed",
			doc:  model.Document{Size: 100, RiskLevel: model.RiskLow},
			cfg:  defaultConfig(),
			want: DispositionAllow,
		},
		{
			name:          "oversize rejects",
			doc:           model.Document{Size: 52428801, RiskLevel: model.RiskLow},
			cfg:           defaultConfig(),
			want:          DispositionReject,
			wantViolation: "File Size Limit Exceeded",
		},
		{
			name:          "blocked category rejects",
			doc:           model.Document{Size: 1, RiskLevel: model.RiskLow, Categories: []string{"Executable"}},
			cfg:           defaultConfig(),
			want:          DispositionReject,
			wantViolation: "Blocked Content Category",
		},
		{
			name: "credential exposure rejects when blocking enabled",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskHigh,
				DetectedFlags: []string{scanner.FlagPassword},
			},
			cfg:           defaultConfig(),
			want:          DispositionReject,
			wantViolation: "Credential Exposure Policy",
		},
		{
			name: "credential exposure quarantines when blocking disabled",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskHigh,
				DetectedFlags: []string{scanner.FlagPassword},
			},
			cfg: func() config.PolicyConfig {
				c := defaultConfig()
				c.BlockCredentials = false
				return c
			}(),
			want:          DispositionQuarantine,
			wantViolation: "High Risk Content",
		},
		{
			name: "pii quarantines",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskMedium,
				DetectedFlags: []string{scanner.FlagEmail},
			},
			cfg:           defaultConfig(),
			want:          DispositionQuarantine,
			wantViolation: "PII Detection Policy",
		},
		{
			name: "pii allowed when pii blocking disabled",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskMedium,
				DetectedFlags: []string{scanner.FlagEmail},
			},
			cfg: func() config.PolicyConfig {
				c := defaultConfig()
				c.BlockPII = false
				return c
			}(),
			want: DispositionAllow,
		},
		{
			name: "high risk quarantines",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskCritical,
				DetectedFlags: []string{"Sensitive Information Detected"},
			},
			cfg: func() config.PolicyConfig {
				c := defaultConfig()
				c.BlockPII = false
				return c
			}(),
			want:          DispositionQuarantine,
			wantViolation: "High Risk Content",
		},
		{
			name: "flag volume quarantines",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskMedium,
				DetectedFlags: []string{"A", "B", "C", "D"},
			},
			cfg: func() config.PolicyConfig {
				c := defaultConfig()
				c.QuarantineHighRisk = false
				return c
			}(),
			want:          DispositionQuarantine,
			wantViolation: "Maximum Risk Flags Exceeded",
		},
		{
			name: "critical flag catch-all quarantines",
			doc: model.Document{
				Size: 1, RiskLevel: model.RiskLow,
				DetectedFlags: []string{scanner.FlagSQLInjection},
			},
			cfg: func() config.PolicyConfig {
				c := defaultConfig()
				c.QuarantineHighRisk = false
				c.BlockPII = false
				return c
			}(),
			want:          DispositionQuarantine,
			wantViolation: "Critical Security Risk",
		},
		{
			name: "reject is never de-escalated by later quarantine rules",
			doc: model.Document{
				Size: 52428801, RiskLevel: model.RiskCritical,
				DetectedFlags: []string{scanner.FlagSSN, scanner.FlagEmail, scanner.FlagPhone, "X"},
			},
			cfg:  defaultConfig(),
			want: DispositionReject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Enforce(&tt.doc, tt.cfg)
			assert.Equal(t, tt.want, res.Disposition)
			if tt.wantViolation != "" {
				assert.Contains(t, res.ViolatedPolicies, tt.wantViolation)
			}
			assert.NotEmpty(t, res.Reason)
			assert.NotEmpty(t, res.Recommendation)
		})
	}
}

func TestDispositionAllowed(t *testing.T) {
	assert.True(t, DispositionAllow.Allowed())
	assert.True(t, DispositionQuarantine.Allowed())
	assert.False(t, DispositionReject.Allowed())
}

func TestEnforceScenarioSSN(t *testing.T) {
	// A lone SSN: HIGH risk, quarantined by the PII policy, still stored.
	doc := model.Document{
		Size:          128,
		RiskLevel:     model.RiskHigh,
		DetectedFlags: []string{scanner.FlagSSN},
	}
	res := Enforce(&doc, defaultConfig())
	assert.Equal(t, DispositionQuarantine, res.Disposition)
	assert.True(t, res.Disposition.Allowed())
	assert.Contains(t, res.ViolatedPolicies, "PII Detection Policy")
}

func TestValidateUpload(t *testing.T) {
	cfg := defaultConfig()

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int64
		want        Disposition
	}{
		{"ordinary text file", "report.txt", "text/plain", 100, DispositionAllow},
		{"pdf allowed", "report.pdf", "application/pdf", 100, DispositionAllow},
		{"oversize rejected", "big.txt", "text/plain", cfg.MaxFileSize + 1, DispositionReject},
		{"disallowed type rejected", "tool.bin", "application/octet-stream", 100, DispositionReject},
		{"path traversal flagged", "../../etc/passwd.txt", "text/plain", 100, DispositionQuarantine},
		{"executable extension flagged", "setup.exe", "application/zip", 100, DispositionQuarantine},
		{"script keyword flagged", "login_script.txt", "text/plain", 100, DispositionQuarantine},
		{"oversize wins over suspicious name", "exploit.txt", "text/plain", cfg.MaxFileSize + 1, DispositionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateUpload(tt.filename, tt.contentType, tt.size, cfg)
			assert.Equal(t, tt.want, res.Disposition)
		})
	}
}

func TestContentTypeAllowed(t *testing.T) {
	assert.True(t, ContentTypeAllowed("text/plain"))
	assert.True(t, ContentTypeAllowed("image/png"))
	assert.True(t, ContentTypeAllowed("application/json"))
	assert.False(t, ContentTypeAllowed("application/octet-stream"))
	assert.False(t, ContentTypeAllowed(""))
}
