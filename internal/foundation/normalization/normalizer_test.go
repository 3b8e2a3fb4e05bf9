package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mode string

const (
	modeFast mode = "fast"
	modeSlow mode = "slow"
)

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]mode{"Fast": modeFast, "slow": modeSlow}, modeSlow)

	assert.Equal(t, modeFast, n.Normalize("  FAST "))
	assert.Equal(t, modeSlow, n.Normalize("unknown"))
	assert.Equal(t, []string{"fast", "slow"}, n.ValidKeys())

	got, err := n.NormalizeWithError("")
	require.NoError(t, err)
	assert.Equal(t, modeSlow, got)

	_, err = n.NormalizeWithError("warp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid options")
}
