package commitment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeAndVerifyRoundTrip(t *testing.T) {
	secret, err := GenerateSecret()
	require.NoError(t, err)

	stored := Compute(42, secret, "room-1", "op-1", 1)
	assert.Len(t, stored, DigestHexLen)
	assert.True(t, Verify(stored, 42, secret, "room-1", "op-1", 1))
}

func TestVerifyFailsOnAnyDifferingField(t *testing.T) {
	secret := "0d2f3a"
	stored := Compute(42, secret, "room-1", "op-1", 3)

	assert.False(t, Verify(stored, 43, secret, "room-1", "op-1", 3), "wrong number")
	assert.False(t, Verify(stored, 42, "wrong", "room-1", "op-1", 3), "wrong secret")
	assert.False(t, Verify(stored, 42, secret, "room-2", "op-1", 3), "wrong room")
	assert.False(t, Verify(stored, 42, secret, "room-1", "op-2", 3), "wrong operator")
	assert.False(t, Verify(stored, 42, secret, "room-1", "op-1", 4), "wrong round")
}

func TestVerifyRejectsMalformedStoredCommitment(t *testing.T) {
	assert.False(t, Verify("", 42, "s", "r", "o", 1))
	assert.False(t, Verify("abcd", 42, "s", "r", "o", 1))
}

func TestIsWellFormed(t *testing.T) {
	assert.True(t, IsWellFormed(Compute(7, "s", "r", "o", 1)))
	assert.False(t, IsWellFormed("too-short"))
	assert.False(t, IsWellFormed(strings.Repeat("z", DigestHexLen)))
}

func TestGenerateSecretUnique(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 64)
}
