package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", "hbnb-test", 15*time.Minute, time.Hour)
}

func TestGeneratePair_RoundTrip(t *testing.T) {
	tm := newTestManager()
	pair, err := tm.GeneratePair("user-1", "alice@example.com", true)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.AccessExp, 5*time.Second)

	claims, err := tm.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, TypeAccess, claims.Type)

	rc, err := tm.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.Subject)
}

func TestParse_RejectsWrongType(t *testing.T) {
	tm := newTestManager()
	pair, err := tm.GeneratePair("user-1", "a@b.io", false)
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsExpired(t *testing.T) {
	tm := newTestManager()
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := tm.GeneratePair("user-1", "a@b.io", false)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsForeignSignatureAndIssuer(t *testing.T) {
	tm := newTestManager()
	other := NewTokenManager("other-secret", "refresh-secret", "hbnb-test", time.Minute, time.Hour)
	pair, err := other.GeneratePair("user-1", "a@b.io", false)
	require.NoError(t, err)
	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIss := NewTokenManager("access-secret", "refresh-secret", "someone-else", time.Minute, time.Hour)
	pair, err = wrongIss.GeneratePair("user-1", "a@b.io", false)
	require.NoError(t, err)
	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlg(t *testing.T) {
	tm := newTestManager()
	claims := Claims{Type: TypeAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "hbnb-test",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	s, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseAccess(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify(hash, "s3cret-pass"))
	assert.False(t, h.Verify(hash, "wrong"))
	assert.False(t, h.Verify("not-a-hash", "s3cret-pass"))
}

func TestNewBcryptHasher_ClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost)
}
