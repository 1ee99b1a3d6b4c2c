package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"CareerFindr-backend/internal/config"
)

// JwtIssuer is issuer claim of every access token
const JwtIssuer = "CareerFindr"

var (
	secretKey     []byte
	tokenLifetime = time.Hour
)

func init() {
	cfg := config.New()
	secretKey = []byte(cfg.GetString("SECRET_KEY"))
	if d := cfg.GetDuration("TOKEN_LIFETIME"); d > 0 {
		tokenLifetime = d
	}
}

// Configure set signing key and lifetime of access token
func Configure(secret string, lifetime time.Duration) {
	secretKey = []byte(secret)
	if lifetime > 0 {
		tokenLifetime = lifetime
	}
}

// GenerateStandardToken sign access token of given user with default lifetime
func GenerateStandardToken(id uuid.UUID) (string, error) {
	return GenerateTokenWithDuration(id, tokenLifetime)
}

// GenerateTokenWithDuration sign access token of given user that expire after d
func GenerateTokenWithDuration(id uuid.UUID, d time.Duration) (string, error) {
	if len(secretKey) == 0 {
		return "", errors.New("SECRET_KEY is not set")
	}

	now := time.Now()
	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    JwtIssuer,
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	})

	signedToken, err := generatedAccessToken.SignedString(secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signedToken, nil
}

// ValidatedToken parse token string and check its signature, expiry and issuer.
// Claims of returned token are *jwt.RegisteredClaims.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !claims.VerifyIssuer(JwtIssuer, true) {
		return nil, errors.New("invalid token issuer")
	}
	return token, nil
}
