package analysis

import (
	"fmt"
	"strings"

	"github.com/AnishKajan/VaultGuardian-AI/internal/model"
	"github.com/AnishKajan/VaultGuardian-AI/internal/scanner"
)

// Severity sets used by the risk ladder. Constructed once; treat as
// read-only.
var (
	criticalRiskFlags = map[string]struct{}{
		scanner.FlagMalware:         {},
		scanner.FlagExecutable:      {},
		scanner.FlagScriptInjection: {},
		scanner.FlagSQLInjection:    {},
		scanner.FlagClassified:      {},
		scanner.FlagMultipleSSN:     {},
		scanner.FlagMultipleCards:   {},
	}

	highRiskFlags = map[string]struct{}{
		scanner.FlagCreditCard:    {},
		scanner.FlagSSN:           {},
		scanner.FlagPassword:      {},
		scanner.FlagAPIKey:        {},
		"PII":                     {},
		scanner.FlagCredentials:   {},
		scanner.FlagConfidential:  {},
		scanner.FlagRestricted:    {},
		scanner.FlagSecret:        {},
		scanner.FlagDBCredentials: {},
		"Cloud Credentials":       {},
		scanner.FlagPrivateKey:    {},
	}

	mediumRiskFlags = map[string]struct{}{
		scanner.FlagEmail:                {},
		scanner.FlagPhone:                {},
		"Policy Violation":               {},
		"License Violation":              {},
		"Intellectual Property":          {},
		"GDPR Violation":                 {},
		"Sensitive Information Detected": {},
		scanner.FlagMultipleEmails:       {},
	}
)

// ComputeRiskLevel derives the tier from the final flag set. Rules are
// evaluated top to bottom, first match wins, so adding a more severe flag
// can only raise the result. Sheer volume of low-severity flags is allowed
// to escalate the level on its own.
func ComputeRiskLevel(flags []string) model.RiskLevel {
	if len(flags) == 0 {
		return model.RiskLow
	}

	var criticalCount, highCount, mediumCount int
	var ssnCount, cardCount int
	for _, f := range flags {
		if _, ok := criticalRiskFlags[f]; ok {
			criticalCount++
		}
		if _, ok := highRiskFlags[f]; ok {
			highCount++
		}
		if _, ok := mediumRiskFlags[f]; ok {
			mediumCount++
		}
		if f == scanner.FlagSSN {
			ssnCount++
		}
		if f == scanner.FlagCreditCard {
			cardCount++
		}
	}

	switch {
	case criticalCount >= 1:
		return model.RiskCritical
	case ssnCount >= 1 || cardCount >= 1:
		return model.RiskHigh
	case highCount >= 3:
		return model.RiskCritical
	case highCount >= 1 || mediumCount >= 2:
		return model.RiskHigh
	case mediumCount >= 1 || len(flags) >= 3:
		return model.RiskMedium
	default:
		return model.RiskMedium
	}
}

// flagDescriptions back the human-readable risk summary.
var flagDescriptions = map[string]string{
	scanner.FlagCreditCard:   "Contains credit card information that should be encrypted",
	scanner.FlagSSN:          "Contains SSN which violates PII policies",
	scanner.FlagPassword:     "Contains hardcoded credentials - security vulnerability",
	scanner.FlagAPIKey:       "Exposes API keys that could be compromised",
	"PII":                    "Contains personally identifiable information",
	scanner.FlagMalware:      "Suspicious content detected that may be malicious",
	scanner.FlagEmail:        "Contains email addresses",
	scanner.FlagPhone:        "Contains phone numbers",
	scanner.FlagConfidential: "Contains confidential information",
	scanner.FlagRestricted:   "Contains restricted information",
	scanner.FlagClassified:   "Contains classified information",
}

// SummarizeRisks renders the flag set as one line for operators, naming at
// most the first three findings.
func SummarizeRisks(flags []string) string {
	if len(flags) == 0 {
		return "No security risks detected in this document."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Security analysis found %d potential issues: ", len(flags))

	n := len(flags)
	if n > 3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		desc, ok := flagDescriptions[flags[i]]
		if !ok {
			desc = "Security concern detected"
		}
		fmt.Fprintf(&sb, "%s (%s)", flags[i], desc)
		if i < n-1 {
			sb.WriteString(", ")
		}
	}
	if len(flags) > 3 {
		fmt.Fprintf(&sb, " and %d other issues", len(flags)-3)
	}
	return sb.String()
}
