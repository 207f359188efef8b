package scanner

import (
	"bytes"
	"fmt"
	"strings"
)

// Result is the outcome of a pre-screen pass. Findings are human-readable
// and end up in the quarantine reason when the content is not clean.
type Result struct {
	Clean    bool
	Findings []string
}

// executableSignatures are magic-byte prefixes of executable formats. A
// document store has no business accepting these regardless of what the
// declared content type claims.
var executableSignatures = []struct {
	prefix []byte
	name   string
}{
	{[]byte{0x4D, 0x5A}, "Windows executable (MZ)"},
	{[]byte{0x7F, 0x45, 0x4C, 0x46}, "ELF executable"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCE}, "Mach-O executable"},
	{[]byte{0xFE, 0xED, 0xFA, 0xCF}, "Mach-O 64-bit executable"},
	{[]byte{0xCF, 0xFA, 0xED, 0xFE}, "Mach-O 64-bit executable"},
	{[]byte("#!"), "script with shebang"},
}

// executableContentTypes are declared types that short-circuit the scan on
// their own.
var executableContentTypes = map[string]string{
	"application/x-msdownload":     "Windows executable content type",
	"application/x-executable":     "executable content type",
	"application/x-dosexec":        "DOS executable content type",
	"application/x-sharedlib":      "shared library content type",
	"application/x-mach-binary":    "Mach-O content type",
	"application/vnd.microsoft.portable-executable": "portable executable content type",
}

// injectionMarkers are gross script/SQL-injection indicators checked on the
// lowercased raw content.
var injectionMarkers = []struct {
	marker  string
	finding string
}{
	{"<script", "script injection marker"},
	{"javascript:", "script injection marker"},
	{"eval(", "script injection marker"},
	{"union select", "SQL injection marker"},
	{"drop table", "SQL injection marker"},
	{"; exec ", "SQL injection marker"},
}

// PreScreen is the fast heuristic gate that runs over raw bytes before the
// expensive pipeline stages. It is intentionally not exhaustive: its job is
// to cheaply short-circuit obviously bad uploads, not to be a security
// boundary.
type PreScreen struct{}

// NewPreScreen returns a pre-screen scanner.
func NewPreScreen() *PreScreen {
	return &PreScreen{}
}

// Scan inspects raw bytes and the declared content type for gross
// indicators: executable signatures, injection markers, and the secret/PII
// vocabulary of the pattern catalog applied to the raw content. It never
// fails; an unclean result is a classification, not an error.
func (p *PreScreen) Scan(raw []byte, contentType string) Result {
	var findings []string

	for _, sig := range executableSignatures {
		if bytes.HasPrefix(raw, sig.prefix) {
			findings = append(findings, fmt.Sprintf("Executable signature detected: %s", sig.name))
			break
		}
	}

	if name, ok := executableContentTypes[strings.ToLower(contentType)]; ok {
		findings = append(findings, fmt.Sprintf("Blocked content type: %s", name))
	}

	lower := strings.ToLower(string(raw))
	for _, m := range injectionMarkers {
		if strings.Contains(lower, m.marker) {
			findings = append(findings, fmt.Sprintf("Suspicious content: %s", m.finding))
			break
		}
	}

	// Only egregious embedded secrets are caught this early; the looser
	// credential markers stay with the classifier so that policy toggles
	// still decide their fate.
	if strings.Contains(lower, "-----begin") && strings.Contains(lower, "private key-----") {
		findings = append(findings, "Embedded secret: private key material")
	}
	if countDistinctMatches(string(raw), ssnPatterns) > 2 {
		findings = append(findings, "Bulk PII: multiple SSN-shaped values")
	}

	return Result{Clean: len(findings) == 0, Findings: findings}
}

// Summary joins findings into the single line used as a quarantine reason.
func (r Result) Summary() string {
	return strings.Join(r.Findings, "; ")
}
