package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	assert.True(t, h.Verify("correct horse battery staple", encoded))
	assert.False(t, h.Verify("wrong password", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestHashProducesFreshSalt(t *testing.T) {
	h := NewHasher()

	first, err := h.Hash("password123")
	require.NoError(t, err)
	second, err := h.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("password123", first))
	assert.True(t, h.Verify("password123", second))
}

func TestHashDoesNotContainPlaintext(t *testing.T) {
	h := NewHasher()

	encoded, err := h.Hash("hunter2hunter2")
	require.NoError(t, err)
	assert.NotContains(t, encoded, "hunter2")
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2id$",
		"$argon2id$v=19$m=65536,t=1,p=4$salt",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$!!!",
		"$argon2id$v=18$m=65536,t=1,p=4$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$a2V5",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$a2V5",
	}

	for _, malformed := range cases {
		assert.False(t, h.Verify("anything", malformed), "input: %q", malformed)
	}
}

func TestVerifyCrossHasherParameters(t *testing.T) {
	// A hash produced with different cost settings still verifies because
	// the parameters are read from the encoded string.
	slow := &Hasher{time: 2, memory: 32 * 1024, threads: 2, keyLen: 32, saltLen: 16}
	encoded, err := slow.Hash("migrating-password")
	require.NoError(t, err)

	assert.True(t, NewHasher().Verify("migrating-password", encoded))
}
