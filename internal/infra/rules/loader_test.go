package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nilayanand/fluxbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_MissingFileIsFine(t *testing.T) {
	opts := domain.DefaultFilterOptions()
	before := len(opts.Denylist)

	err := Apply(filepath.Join(t.TempDir(), "rules.yaml"), &opts)

	require.NoError(t, err)
	assert.Len(t, opts.Denylist, before)
}

func TestApply_AppendsDenylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
denylist:
  - "totally new phrase"
  - "another one"
`), 0o600))
	opts := domain.DefaultFilterOptions()
	before := len(opts.Denylist)

	require.NoError(t, Apply(path, &opts))

	assert.Len(t, opts.Denylist, before+2)
	assert.Contains(t, opts.Denylist, "totally new phrase")
}

func TestApply_ReplacesDenylist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
replace_denylist: true
denylist:
  - "only this"
`), 0o600))
	opts := domain.DefaultFilterOptions()

	require.NoError(t, Apply(path, &opts))

	assert.Equal(t, []string{"only this"}, opts.Denylist)
}

func TestApply_OverridesThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
min_content_length: 10
max_promo_emoji: 3
max_uppercase_ratio: 0.5
`), 0o600))
	opts := domain.DefaultFilterOptions()

	require.NoError(t, Apply(path, &opts))

	assert.Equal(t, 10, opts.MinContentLength)
	assert.Equal(t, 3, opts.MaxPromoEmoji)
	assert.InDelta(t, 0.5, opts.MaxUppercaseRatio, 0.001)
	// Untouched thresholds keep their defaults.
	assert.Equal(t, 6, opts.MaxCharRun)
}

func TestApply_BadYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("denylist: [unclosed"), 0o600))
	opts := domain.DefaultFilterOptions()

	assert.Error(t, Apply(path, &opts))
}
