package jwt

import (
	"testing"
	"time"

	"github.com/NeuralTrust/ConsensusSentry/pkg/config"
	"github.com/NeuralTrust/ConsensusSentry/pkg/domain/identity"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerWithSecret(secret string) Manager {
	cfg := &config.ServerConfig{SecretKey: secret}
	return NewJwtManager(cfg)
}

func signTokenWithSecret(secret string, claims jwtlib.Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func TestCreateToken_AndValidate_Success(t *testing.T) {
	mgr := newManagerWithSecret("test-secret")

	token, err := mgr.CreateToken("alice", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NoError(t, mgr.ValidateToken(token))

	id, err := mgr.Identity(token)
	require.NoError(t, err)
	assert.Equal(t, identity.Identity("alice"), id)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{Subject: "alice"}}
	signed, err := signTokenWithSecret("other-secret", claims)
	require.NoError(t, err)

	err = newManagerWithSecret("test-secret").ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	assert.ErrorIs(t, newManagerWithSecret("s").ValidateToken("not.a-token"), ErrInvalidToken)
}

func TestValidateToken_Expired(t *testing.T) {
	secret := "expire-secret"
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwtlib.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}}
	signed, err := signTokenWithSecret(secret, claims)
	require.NoError(t, err)

	err = newManagerWithSecret(secret).ValidateToken(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, &Claims{RegisteredClaims: jwtlib.RegisteredClaims{Subject: "eve"}})
	signed, err := token.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, newManagerWithSecret("s").ValidateToken(signed), ErrInvalidToken)
}

func TestIdentity_FallsBackToUserID(t *testing.T) {
	signed, err := signTokenWithSecret("s", &Claims{UserID: "user-7"})
	require.NoError(t, err)

	id, err := newManagerWithSecret("s").Identity(signed)
	require.NoError(t, err)
	assert.Equal(t, identity.Identity("user-7"), id)
}

func TestIdentity_Missing(t *testing.T) {
	signed, err := signTokenWithSecret("s", &Claims{RegisteredClaims: jwtlib.RegisteredClaims{IssuedAt: jwtlib.NewNumericDate(time.Now())}})
	require.NoError(t, err)

	_, err = newManagerWithSecret("s").Identity(signed)
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestDecodeToken_Success(t *testing.T) {
	mgr := newManagerWithSecret("decode-secret")
	token, err := mgr.CreateToken("bob", 0)
	require.NoError(t, err)

	claims, err := mgr.DecodeToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims.IssuedAt)
	assert.Nil(t, claims.ExpiresAt)
	assert.Equal(t, "bob", claims.Subject)
}
