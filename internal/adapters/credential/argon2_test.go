package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the suite fast; the encoding is identical to DefaultParams.
var cheap = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestArgon2_HashAndVerify(t *testing.T) {
	a := NewArgon2(cheap)

	hash, err := a.Hash("abc123")
	require.NoError(t, err)
	assert.NotEqual(t, "abc123", hash)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)

	ok, err := a.Verify(hash, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify(hash, "wrongpassword")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2_SaltedHashesDiffer(t *testing.T) {
	a := NewArgon2(cheap)

	h1, err := a.Hash("same")
	require.NoError(t, err)
	h2, err := a.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgon2_VerifyUsesStoredParams(t *testing.T) {
	old := NewArgon2(cheap)
	hash, err := old.Hash("abc123")
	require.NoError(t, err)

	current := NewArgon2(Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	ok, err := current.Verify(hash, "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2_MalformedHash(t *testing.T) {
	a := NewArgon2(cheap)

	for _, h := range []string{
		"",
		"abc123",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=0,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		ok, err := a.Verify(h, "abc123")
		assert.ErrorIs(t, err, ErrMalformedHash, "hash %q", h)
		assert.False(t, ok)
	}
}
