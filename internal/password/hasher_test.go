package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestArgon2(pepper string) *Argon2 {
	return NewArgon2WithParams(pepper, 1, 8*1024, 1)
}

func TestArgon2Deterministic(t *testing.T) {
	h := newTestArgon2("pepper")

	first, err := h.Hash("pw1!2345")
	require.NoError(t, err)
	second, err := h.Hash("pw1!2345")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotContains(t, first, "pw1!2345")
	assert.True(t, h.Verify(first, "pw1!2345"))
	assert.False(t, h.Verify(first, "pw1!2346"))
}

func TestArgon2PepperChangesHash(t *testing.T) {
	a, _ := newTestArgon2("one").Hash("secret")
	b, _ := newTestArgon2("two").Hash("secret")
	assert.NotEqual(t, a, b)
}

func TestArgon2RejectsForeignHash(t *testing.T) {
	h := newTestArgon2("")
	assert.False(t, h.Verify("$2a$10$notargon", "secret"))
	assert.False(t, h.Verify("", ""))
}

func TestBcryptVerify(t *testing.T) {
	h := NewBcrypt(bcrypt.MinCost)

	hash, err := h.Hash("secret-1")
	require.NoError(t, err)
	assert.True(t, h.Verify(hash, "secret-1"))
	assert.False(t, h.Verify(hash, "secret-2"))
}

func TestNew(t *testing.T) {
	h, err := New("argon2", "p")
	require.NoError(t, err)
	assert.IsType(t, &Argon2{}, h)

	h, err = New("BCRYPT", "")
	require.NoError(t, err)
	assert.IsType(t, &Bcrypt{}, h)

	_, err = New("md5", "")
	assert.ErrorIs(t, err, ErrUnknownHasher)
}
