package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	id := uuid.New()

	signed, err := GenerateStandardToken(id)
	require.NoError(t, err)

	token, err := ValidatedToken(signed)
	require.NoError(t, err)
	claims := token.Claims.(*jwt.RegisteredClaims)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, JwtIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestValidatedToken_Expired(t *testing.T) {
	signed, err := GenerateTokenWithDuration(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ValidatedToken(signed)
	assert.Error(t, err)
}

func TestValidatedToken_WrongIssuer(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString(secretKey)
	require.NoError(t, err)

	_, err = ValidatedToken(signed)
	assert.Error(t, err)
}

func TestValidatedToken_WrongKey(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := tok.SignedString([]byte("not-the-secret"))
	require.NoError(t, err)

	_, err = ValidatedToken(signed)
	assert.Error(t, err)
}

func TestValidatedToken_Garbage(t *testing.T) {
	_, err := ValidatedToken("not.a.token")
	assert.Error(t, err)
}

func TestGenerateToken_NoSecret(t *testing.T) {
	old := secretKey
	defer func() { secretKey = old }()
	secretKey = nil

	_, err := GenerateStandardToken(uuid.New())
	assert.Error(t, err)
}
