package utilities

import (
	"errors"
	"fmt"
	"net/http"

	"CareerFindr-backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorStatus map error returned by model or database layer to HTTP status code
func ErrorStatus(err error) int {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrInvalidStatus), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return http.StatusConflict
	case errors.As(err, &pgErr) && pgErr.Code == "23503":
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SendError write ErrorResponse with status from ErrorStatus. notFound replace the message
// of missing record, and internal error is prefixed with action that failed.
func SendError(c *gin.Context, err error, action string, notFound string) {
	status := ErrorStatus(err)
	msg := err.Error()
	switch status {
	case http.StatusNotFound:
		msg = notFound
	case http.StatusInternalServerError, http.StatusConflict:
		msg = fmt.Sprintf("Failed to %s: %s", action, err.Error())
	}
	c.JSON(status, ErrorResponse{Error: msg})
}
