package validation

import (
	"fmt"
	"net/http"

	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
)

// SendBindError write 400 response for error returned by gin's ShouldBind family.
// Validation failures carry message of each field.
func SendBindError(c *gin.Context, err error) {
	if fields := FormatErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, utilities.ValidationErrorResponse{
			Error:  "Invalid request body",
			Fields: fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
		Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
	})
}
