package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"CareerFindr-backend/internal/utilities"
)

// CheckRole will protect endpoint from user that is not one of given roles.
// It must run after RequireAuth.
func CheckRole(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := utilities.ExtractUser(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		if !utilities.Contains(roles, user.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "User doesn't have permission to access",
			})
			return
		}
		ctx.Next()
	}
}
