package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/userauth/internal/model"
)

func TestBcryptHasher_HashThenVerify(t *testing.T) {
	h := NewBcryptHasher()

	hash, err := h.Hash("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "hash %q should encode algorithm and cost", hash)

	assert.True(t, h.Verify("pw123456", hash))
	assert.False(t, h.Verify("wrong", hash))
}

func TestBcryptHasher_UsesFixedCost(t *testing.T) {
	hash, err := NewBcryptHasher().Hash("pw123456")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, BcryptCost, cost)
}

// 同じパスワードでもソルトにより異なるハッシュになること
func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	h := NewBcryptHasher()

	first, err := h.Hash("pw123456")
	require.NoError(t, err)
	second, err := h.Hash("pw123456")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify("pw123456", first))
	assert.True(t, h.Verify("pw123456", second))
}

func TestBcryptHasher_VerifyMalformedHashReturnsFalse(t *testing.T) {
	h := NewBcryptHasher()

	assert.False(t, h.Verify("pw", ""))
	assert.False(t, h.Verify("pw", "not-a-bcrypt-hash"))
}

func TestBcryptHasher_RejectsPasswordOver72Bytes(t *testing.T) {
	h := NewBcryptHasher()

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, model.ErrPasswordTooLong)

	hash, err := h.Hash(strings.Repeat("a", 72))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("a", 72), hash))
}
