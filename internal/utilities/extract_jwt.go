package utilities

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrInvalidAuthHeader is returned when Authorization header isn't a bearer token
var ErrInvalidAuthHeader = errors.New("Invalid authorization header")

// ExtractBearerToken return token part of "Authorization: Bearer <token>" header
func ExtractBearerToken(c *gin.Context) (string, error) {
	const bearerSchema = "Bearer "
	authHeader := c.GetHeader("Authorization")

	if len(authHeader) <= len(bearerSchema) || !strings.EqualFold(authHeader[:len(bearerSchema)], bearerSchema) {
		return "", ErrInvalidAuthHeader
	}

	return authHeader[len(bearerSchema):], nil
}
