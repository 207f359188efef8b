package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchFlags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "clean text",
			text: "nothing interesting here, just a grocery list",
			want: nil,
		},
		{
			name: "single ssn dashed",
			text: "my number is 123-45-6789 thanks",
			want: []string{FlagSSN},
		},
		{
			name: "single ssn spaced",
			text: "ssn on file: 123 45 6789",
			want: []string{FlagSSN},
		},
		{
			name: "two distinct ssns",
			text: "one 123-45-6789 and another 987-65-4321",
			want: []string{FlagSSN, FlagMultipleSSN},
		},
		{
			name: "same ssn in two styles counts once per value",
			text: "123-45-6789 appears once",
			want: []string{FlagSSN},
		},
		{
			name: "credit card delimited",
			text: "card 4111-1111-1111-1111 on record",
			want: []string{FlagCreditCard},
		},
		{
			name: "two credit cards",
			text: "4111-1111-1111-1111 and 5500-0000-0000-0004",
			want: []string{FlagCreditCard, FlagMultipleCards},
		},
		{
			name: "amex undelimited",
			text: "charge 378282246310005 now",
			want: []string{FlagCreditCard},
		},
		{
			name: "single email",
			text: "reach me at alice@example.com",
			want: []string{FlagEmail},
		},
		{
			name: "six emails escalates",
			text: "a@x.com b@x.com c@x.com d@x.com e@x.com f@x.com",
			want: []string{FlagEmail, FlagMultipleEmails},
		},
		{
			name: "phone number",
			text: "call (555) 123-4567",
			want: []string{FlagPhone},
		},
		{
			name: "hardcoded password",
			text: "password=hunter2",
			want: []string{FlagPassword},
		},
		{
			name: "api key and secret",
			text: "api_key: abc123 secret=shhh",
			want: []string{FlagAPIKey, FlagSecret},
		},
		{
			name: "token marker",
			text: "token=eyJhbGciOi.something",
			want: []string{FlagCredentials},
		},
		{
			name: "connection string",
			text: "the connection_string lives in vault",
			want: []string{FlagDBCredentials},
		},
		{
			name: "keyword markers",
			text: "CONFIDENTIAL and restricted and Classified",
			want: []string{FlagConfidential, FlagRestricted, FlagClassified},
		},
		{
			name: "order is catalog order",
			text: "123-45-6789 alice@example.com password=x confidential",
			want: []string{FlagSSN, FlagEmail, FlagPassword, FlagConfidential},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchFlags(tt.text))
		})
	}
}

func TestMatchFlagsDeterministic(t *testing.T) {
	text := "123-45-6789 bob@example.com password=x api_key=y confidential"
	first := MatchFlags(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, MatchFlags(text))
	}
}
