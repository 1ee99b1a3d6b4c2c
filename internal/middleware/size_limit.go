package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"CareerFindr-backend/internal/utilities"
)

// multipartOverhead leave room for multipart boundaries and headers around the file
const multipartOverhead = int64(8 * 1024)

// SizeLimit cap request body at maxBodyBytes plus multipart overhead. Reading past the cap
// fail with *http.MaxBytesError, which handlers answer with 413.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBodyBytes+multipartOverhead {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
				Error: "Entity too large",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes+multipartOverhead)
		c.Next()
	}
}
