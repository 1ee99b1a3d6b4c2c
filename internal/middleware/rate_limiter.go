package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"

	"CareerFindr-backend/internal/auth"
	"CareerFindr-backend/internal/utilities"
)

// rateLimitKey identify caller by user id when request carry valid token, by ip otherwise
func rateLimitKey(c *gin.Context) string {
	if user, err := utilities.ExtractUser(c); err == nil {
		return "user: " + user.ID.String()
	}

	if tokenString, err := utilities.ExtractBearerToken(c); err == nil {
		if token, err := auth.ValidatedToken(tokenString); err == nil {
			if claims, ok := token.Claims.(*jwt.RegisteredClaims); ok && claims.Subject != "" {
				return "user: " + claims.Subject
			}
		}
	}
	return "ip: " + c.ClientIP()
}

// retryAfter format wait until reset as delta-seconds, at least one second
func retryAfter(reset, now time.Time) string {
	secs := int(math.Ceil(reset.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func rateLimitErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.Header("Retry-After", retryAfter(info.ResetTime, time.Now()))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, utilities.ErrorResponse{
		Error: "Too many requests. Please try again later.",
	})
}

// RateLimiterMiddleware allow each caller reqPerSec requests per second. Counters live in
// redis when client is given so every instance share them, in memory otherwise.
func RateLimiterMiddleware(reqPerSec uint, client *redis.Client) gin.HandlerFunc {
	if reqPerSec == 0 {
		reqPerSec = 5
	}

	var store ratelimit.Store
	if client != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: client,
			Rate:        time.Second,
			Limit:       reqPerSec,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Second,
			Limit: reqPerSec,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		KeyFunc:      rateLimitKey,
		ErrorHandler: rateLimitErrorHandler,
	})
}
