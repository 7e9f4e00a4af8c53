package aircraft

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	n := Default()

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"737-7H4", "B737-700", true},
		{" 737-7h4 ", "B737-700", true},
		{"737-8H4", "B737-800", true},
		{"737-8MX", "B737-MAX8", true},
		{"737-7M8", "B737-MAX7", true},
		{"BOEING 737 MAX 8", "B737-MAX8", true},
		{"737-3H4", "B737-300", true},
		{"B737-800", "B737-800", true},
		{"A320-999", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := n.Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadFileExtendsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- tag: A320
  exact: [A320-214, A320-232]
  contains: [A320]
- tag: B737-800-CUSTOM
  exact: [737-8H4]
`), 0o644))

	n := Default()
	require.NoError(t, n.LoadFile(path))

	got, ok := n.Normalize("A320-999")
	assert.True(t, ok)
	assert.Equal(t, "A320", got)

	got, ok = n.Normalize("737-8H4")
	assert.True(t, ok)
	assert.Equal(t, "B737-800-CUSTOM", got)

	got, ok = n.Normalize("737-700")
	assert.True(t, ok)
	assert.Equal(t, "B737-700", got)
}

func TestParseRulesRejectsMissingTag(t *testing.T) {
	_, err := ParseRules(strings.NewReader("- exact: [X]\n"))
	assert.Error(t, err)
}

func TestParseRulesEmpty(t *testing.T) {
	rules, err := ParseRules(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rules)
}
