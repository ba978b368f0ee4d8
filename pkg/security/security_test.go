package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	digest, err := h.Hash("p1")
	require.NoError(t, err)
	assert.NotEqual(t, "p1", digest)
	assert.True(t, h.Verify("p1", digest))
	assert.False(t, h.Verify("p2", digest))
	assert.False(t, h.Verify("p1", "not-a-bcrypt-digest"))
}

func TestBcryptHasherSalts(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	// 24 three-byte runes are 72 bytes: still accepted.
	digest, err := h.Hash(strings.Repeat("€", 24))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("€", 24), digest))

	_, err = h.Hash(strings.Repeat("€", 25))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer("secret", "ojt")
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("acc-1", "student", 7*24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), expiresAt, time.Minute)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "acc-1", claims.Subject)
}

func TestJWTIssuerRejectsExpired(t *testing.T) {
	issuer, err := NewJWTIssuer("secret", "ojt")
	require.NoError(t, err)
	issuer.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, _, err := issuer.Issue("acc-1", "admin", 7*24*time.Hour)
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuerRejectsForeignSignature(t *testing.T) {
	a, _ := NewJWTIssuer("secret-a", "ojt")
	b, _ := NewJWTIssuer("secret-b", "ojt")
	token, _, err := a.Issue("acc-1", "admin", time.Hour)
	require.NoError(t, err)

	_, err = b.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuerRejectsNoneAlgorithm(t *testing.T) {
	issuer, _ := NewJWTIssuer("secret", "ojt")
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		AccountID: "acc-1",
		Role:      "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTIssuerRequiresSecret(t *testing.T) {
	_, err := NewJWTIssuer("", "ojt")
	assert.Error(t, err)
}
