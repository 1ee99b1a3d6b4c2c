package validation

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type applicationForm struct {
	Type       string  `json:"type" binding:"required,apptype"`
	Motivation string  `json:"motivation" binding:"required,motivation"`
	Phone      *string `json:"phone" binding:"omitempty,phone"`
}

func newValidator() *validator.Validate {
	Register()
	return binding.Validator.Engine().(*validator.Validate)
}

func TestValidMotivation(t *testing.T) {
	assert.False(t, ValidMotivation(""))
	assert.False(t, ValidMotivation(strings.Repeat("a", 99)))
	assert.True(t, ValidMotivation(strings.Repeat("a", 100)))
	assert.False(t, ValidMotivation("   "+strings.Repeat("a", 99)+"   "))
	assert.True(t, ValidMotivation(strings.Repeat("é", 100)))
	assert.False(t, ValidMotivation(strings.Repeat("a", 5001)))
}

func TestApplicationForm_Valid(t *testing.T) {
	v := newValidator()
	phone := "+27 82 123 4567"
	form := applicationForm{Type: "course", Motivation: strings.Repeat("m", 120), Phone: &phone}

	assert.NoError(t, v.Struct(form))
}

func TestApplicationForm_ShortMotivation(t *testing.T) {
	v := newValidator()
	form := applicationForm{Type: "job", Motivation: "I really want this job."}

	err := v.Struct(form)
	require.Error(t, err)

	fields := FormatErrors(err)
	require.Contains(t, fields, "motivation")
	assert.Equal(t, "motivation must be between 100 and 5000 characters", fields["motivation"])
}

func TestApplicationForm_InvalidTypeAndPhone(t *testing.T) {
	v := newValidator()
	phone := "call me"
	form := applicationForm{Type: "internship", Motivation: strings.Repeat("m", 120), Phone: &phone}

	fields := FormatErrors(v.Struct(form))
	assert.Equal(t, "type must be either course or job", fields["type"])
	assert.Equal(t, "phone must be a valid phone number", fields["phone"])
}

func TestApplicationForm_Required(t *testing.T) {
	v := newValidator()

	fields := FormatErrors(v.Struct(applicationForm{}))
	assert.Equal(t, "type is required", fields["type"])
	assert.Equal(t, "motivation is required", fields["motivation"])
}

func TestFormatErrors_NotValidationError(t *testing.T) {
	assert.Nil(t, FormatErrors(nil))
	assert.Nil(t, FormatErrors(assert.AnError))
}

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestSendBindError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Register()

	type form struct {
		Type string `json:"type" binding:"required,apptype"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"type":"internship"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var f form
	err := c.ShouldBindJSON(&f)
	require.Error(t, err)
	SendBindError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp utilities.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "type must be either course or job", resp.Fields["type"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	SendBindError(c, errors.New("unexpected EOF"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request body: unexpected EOF")
}
