package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("Sup3rSecret")
	require.NoError(t, err)
	require.True(t, strings.Contains(encoded, ":"))

	assert.True(t, Verify("Sup3rSecret", encoded))
	assert.False(t, Verify("sup3rsecret", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same-password")
	require.NoError(t, err)
	b, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, Verify("same-password", a))
	assert.True(t, Verify("same-password", b))
}

func TestVerifyMalformedEncoding(t *testing.T) {
	assert.False(t, Verify("whatever", "no-separator"))
	assert.False(t, Verify("whatever", "!!!:???"))
	assert.False(t, Verify("whatever", ""))
}
