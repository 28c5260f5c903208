package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/shelfmark/internal/domain"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager([]byte("super-secret"), time.Hour)

	tok, err := m.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager([]byte("secret"), -1*time.Second)

	tok, err := m.Issue(7)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewManager([]byte("right-secret"), time.Hour)
	verifier := NewManager([]byte("wrong-secret"), time.Hour)

	tok, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	m := NewManager([]byte("k"), time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", tok)
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	secret := []byte("secret")
	m := NewManager(secret, time.Hour)

	// A structurally valid token without the uid claim must be rejected.
	bare := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := bare.SignedString(secret)
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_RejectsUnexpectedSigningMethod(t *testing.T) {
	secret := []byte("secret")
	m := NewManager(secret, time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestIssue_LifetimeMatchesTTL(t *testing.T) {
	secret := []byte("secret")
	ttl := time.Hour
	m := NewManager(secret, ttl)

	before := time.Now()
	tok, err := m.Issue(1)
	require.NoError(t, err)
	after := time.Now()

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	require.NoError(t, err)

	exp := claims.ExpiresAt.Time
	assert.False(t, exp.Before(before.Add(ttl).Truncate(time.Second)))
	assert.False(t, exp.After(after.Add(ttl)))
}
