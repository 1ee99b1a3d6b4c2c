package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"CareerFindr-backend/internal/utilities"
)

// LogoutController handles user logout by blacklisting JWT tokens
type LogoutController struct {
	BlacklistStore JwtBlacklistStore
}

// NewLogoutController creates a new instance of LogoutController
func NewLogoutController(blacklistStore JwtBlacklistStore) *LogoutController {
	return &LogoutController{
		BlacklistStore: blacklistStore,
	}
}

// LogoutHandler handles user logout by blacklisting the JWT token
// @Summary Logout current user
// @Description Blacklist access token in authorization header until it expire
// @Tags Auth
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Failed to blacklist token"
// @Router /auth/logout [post]
func (lc *LogoutController) LogoutHandler(c *gin.Context) {
	tokenString, err := utilities.ExtractBearerToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	claims, err := extractClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := lc.BlacklistStore.AddToBlacklist(tokenString, claims.ExpiresAt.Time); err != nil {
		LogAuthAttempt("error", "Logout", "Fail", claims.Subject, err.Error())
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to logout"})
		return
	}

	LogAuthAttempt("info", "Logout", "Success", claims.Subject, "")
	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Successfully logged out"})
}

func extractClaims(c *gin.Context) (*jwt.RegisteredClaims, error) {
	claims, ok := c.Get("claims")
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	realClaims, okCast := claims.(*jwt.RegisteredClaims)
	if !okCast || realClaims.ExpiresAt == nil {
		return nil, fmt.Errorf("invalid token claims type")
	}
	return realClaims, nil
}
