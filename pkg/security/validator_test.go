package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		expectError error
		expected    string
	}{
		{
			name:     "valid empty query",
			query:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			query:    "   ",
			expected: "",
		},
		{
			name:     "valid simple query",
			query:    "john",
			expected: "john",
		},
		{
			name:     "valid email-like query",
			query:    "john.doe+test@example.com",
			expected: "john.doe+test@example.com",
		},
		{
			name:     "valid query with leading/trailing spaces",
			query:    "  john doe  ",
			expected: "john doe",
		},
		{
			name:     "keyword inside a word is allowed",
			query:    "Executive Director",
			expected: "Executive Director",
		},
		{
			name:     "apostrophe in surname",
			query:    "O'Brien",
			expected: "O'Brien",
		},
		{
			name:     "unicode letters",
			query:    "Nguyễn",
			expected: "Nguyễn",
		},
		{
			name:     "percent is allowed and escaped later",
			query:    "john%",
			expected: "john%",
		},
		{
			name:        "query too long",
			query:       strings.Repeat("a", MaxSearchQueryLength+1),
			expectError: ErrQueryTooLong,
		},
		{
			name:        "SQL injection attempt - UNION",
			query:       "john UNION SELECT name FROM users",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - OR condition",
			query:       "john OR 1=1",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - comment",
			query:       "john --",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "SQL injection attempt - DROP",
			query:       "john; DROP TABLE users",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "XSS attempt - script",
			query:       "<script>alert('xss')</script>",
			expectError: ErrQueryInvalid,
		},
		{
			name:        "invalid characters",
			query:       "john&doe",
			expectError: ErrQueryInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateSearchQuery(tt.query)

			if tt.expectError != nil {
				require.ErrorIs(t, err, tt.expectError)
				assert.Empty(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSanitizeSearchString(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{"empty string", "", ""},
		{"normal string", "john", "john"},
		{"percent wildcard", "john%", `john\%`},
		{"underscore wildcard", "john_doe", `john\_doe`},
		{"multiple wildcards", "%john_%", `\%john\_\%`},
		{"backslash", `a\b`, `a\\b`},
		{"email", "test@example.com", "test@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeSearchString(tt.query))
		})
	}
}

func TestIsValidSearchChar(t *testing.T) {
	valid := []rune{'a', 'Z', '5', ' ', '-', '_', '.', '@', '+', '\'', '%', 'é'}
	for _, c := range valid {
		assert.True(t, isValidSearchChar(c), "expected %q to be valid", c)
	}

	invalid := []rune{';', '&', '<', '>', '(', ')', '=', '"', '#', '*'}
	for _, c := range invalid {
		assert.False(t, isValidSearchChar(c), "expected %q to be invalid", c)
	}
}

func BenchmarkValidateSearchQuery(b *testing.B) {
	query := "john doe example"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateSearchQuery(query)
	}
}
