package scanner

import "regexp"

// Package scanner holds the fixed pattern catalog shared by the pre-screen
// scanner and the risk classifier. The catalog is built once at init time
// and is read-only afterwards; callers receive it by reference and must not
// mutate it.

// Flag labels produced by the pattern catalog. The classifier's risk ladder
// and the policy engine key off these exact strings.
const (
	FlagSSN              = "Social Security Number"
	FlagMultipleSSN      = "Multiple SSN"
	FlagCreditCard       = "Credit Card Number"
	FlagMultipleCards    = "Multiple Credit Cards"
	FlagEmail            = "Email Address"
	FlagMultipleEmails   = "Multiple Email Addresses"
	FlagPhone            = "Phone Number"
	FlagPassword         = "Hardcoded Password"
	FlagAPIKey           = "API Key Exposure"
	FlagSecret           = "Secret Exposure"
	FlagCredentials      = "Credentials"
	FlagPrivateKey       = "Private Key"
	FlagDBCredentials    = "Database Credentials"
	FlagConfidential     = "Confidential Content"
	FlagRestricted       = "Restricted Content"
	FlagClassified       = "Classified Content"
	FlagMalware          = "Malware"
	FlagExecutable       = "Executable File"
	FlagScriptInjection  = "Script Injection"
	FlagSQLInjection     = "SQL Injection"
)

// ssnPatterns match SSN-shaped sequences in their common delimiter styles.
// The bare nine-digit form is intentionally absent; it produces too many
// false positives on invoice and account numbers.
var ssnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{3}\s\d{2}\s\d{4}\b`),
	regexp.MustCompile(`(?i)ssn\s*[:=]?\s*\d{3}[-\s]?\d{2}[-\s]?\d{4}`),
	regexp.MustCompile(`(?i)social\s+security\s*[:=]?\s*\d{3}[-\s]?\d{2}[-\s]?\d{4}`),
}

// creditCardPatterns match card-shaped sequences, generic 4x4 groups plus
// the major brand prefixes for undelimited numbers.
var creditCardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`),
	regexp.MustCompile(`\b4\d{12}(?:\d{3})?\b`),    // Visa
	regexp.MustCompile(`\b5[1-5]\d{14}\b`),         // Mastercard
	regexp.MustCompile(`\b3[47]\d{13}\b`),          // American Express
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{3}-\d{3}-\d{4}\b`),
		regexp.MustCompile(`\(\d{3}\)\s?\d{3}-\d{4}`),
	}

	passwordPattern   = regexp.MustCompile(`(?i)password\s*[:=]\s*[\w@#$%^&*]+`)
	apiKeyPattern     = regexp.MustCompile(`(?i)api[_-]?key\s*[:=]\s*[\w-]+`)
	secretPattern     = regexp.MustCompile(`(?i)secret\s*[:=]\s*[\w-]+`)
	tokenPattern      = regexp.MustCompile(`(?i)token\s*[:=]\s*[\w.-]+`)
	privateKeyPattern = regexp.MustCompile(`(?i)private[_-]?key`)
	connStringPattern = regexp.MustCompile(`(?i)connection[_-]?string`)
	dbURLPattern      = regexp.MustCompile(`(?i)database[_-]?url`)

	confidentialPattern = regexp.MustCompile(`(?i)confidential`)
	restrictedPattern   = regexp.MustCompile(`(?i)restricted`)
	classifiedPattern   = regexp.MustCompile(`(?i)classified`)
)

// multipleEmailThreshold is the occurrence count above which the catalog
// reports the multiple-emails flag in addition to the base flag.
const multipleEmailThreshold = 5

// countDistinctMatches returns how many distinct substrings across all
// patterns match the text. Distinctness keeps one value that happens to
// match several delimiter variants from counting twice.
func countDistinctMatches(text string, patterns []*regexp.Regexp) int {
	seen := map[string]struct{}{}
	for _, re := range patterns {
		for _, m := range re.FindAllString(text, -1) {
			seen[m] = struct{}{}
		}
	}
	return len(seen)
}

// MatchFlags runs the full catalog over text and returns the detected flag
// labels. The result is deterministic for a given input: flags appear in
// catalog order, base flags before their multiple-instance variants, with
// the SSN/credit-card volume flags appended last.
func MatchFlags(text string) []string {
	var flags []string

	ssnCount := countDistinctMatches(text, ssnPatterns)
	if ssnCount > 0 {
		flags = append(flags, FlagSSN)
	}

	cardCount := countDistinctMatches(text, creditCardPatterns)
	if cardCount > 0 {
		flags = append(flags, FlagCreditCard)
	}

	emailCount := len(emailPattern.FindAllString(text, -1))
	if emailCount > 0 {
		flags = append(flags, FlagEmail)
		if emailCount > multipleEmailThreshold {
			flags = append(flags, FlagMultipleEmails)
		}
	}

	for _, re := range phonePatterns {
		if re.MatchString(text) {
			flags = append(flags, FlagPhone)
			break
		}
	}

	if passwordPattern.MatchString(text) {
		flags = append(flags, FlagPassword)
	}
	if apiKeyPattern.MatchString(text) {
		flags = append(flags, FlagAPIKey)
	}
	if secretPattern.MatchString(text) {
		flags = append(flags, FlagSecret)
	}
	if tokenPattern.MatchString(text) {
		flags = append(flags, FlagCredentials)
	}
	if privateKeyPattern.MatchString(text) {
		flags = append(flags, FlagPrivateKey)
	}
	if connStringPattern.MatchString(text) || dbURLPattern.MatchString(text) {
		flags = append(flags, FlagDBCredentials)
	}

	if confidentialPattern.MatchString(text) {
		flags = append(flags, FlagConfidential)
	}
	if restrictedPattern.MatchString(text) {
		flags = append(flags, FlagRestricted)
	}
	if classifiedPattern.MatchString(text) {
		flags = append(flags, FlagClassified)
	}

	if ssnCount > 1 {
		flags = append(flags, FlagMultipleSSN)
	}
	if cardCount > 1 {
		flags = append(flags, FlagMultipleCards)
	}

	return flags
}
