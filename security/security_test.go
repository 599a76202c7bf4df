package security

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHeadersLeavesOriginalIntact(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer abc")
	h.Set("Cookie", "sid=1")
	h.Set("User-Agent", "test")

	clean := SanitizeHeaders(h)
	assert.Empty(t, clean.Get("Authorization"))
	assert.Empty(t, clean.Get("Cookie"))
	assert.Equal(t, "test", clean.Get("User-Agent"))
	assert.Equal(t, "Bearer abc", h.Get("Authorization"))
}

func TestNewTokenIDIsUnique(t *testing.T) {
	a, err := NewTokenID()
	require.NoError(t, err)
	b, err := NewTokenID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 32)
}
