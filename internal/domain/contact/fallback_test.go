package contact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFallbackOrder(t *testing.T) {
	g := DefaultFallback()

	tests := []struct {
		question string
		want     string
	}{
		{"How do I reset my PASSWORD?", PasswordResetAnswer},
		{"password for the pricing page", PasswordResetAnswer},
		{"What plans do you have?", PlanSummaryAnswer},
		{"Is there a price list?", PlanSummaryAnswer},
		{"Can I upload a spreadsheet?", UploadHelpAnswer},
		{"Where is my file?", UploadHelpAnswer},
		{"Hello", DefaultAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Answer(tt.question))
		})
	}
}

func TestLoadFallbackFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: billing
    keywords: [invoice, billing]
    response: Invoices are under Account.
default: Please email support.
`), 0o600))

	g, err := LoadFallback(path)
	require.NoError(t, err)
	assert.Equal(t, "Invoices are under Account.", g.Answer("Where is my Invoice?"))
	assert.Equal(t, "Please email support.", g.Answer("password"))
}

func TestParseFallbackRejectsIncompleteRule(t *testing.T) {
	_, err := ParseFallback([]byte("rules:\n  - name: empty\n    response: hi\n"))
	assert.Error(t, err)
}

func TestLoadFallbackEmptyPathUsesDefaults(t *testing.T) {
	g, err := LoadFallback("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAnswer, g.Answer("anything"))
}
