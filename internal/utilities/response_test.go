package utilities

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPaginate(t *testing.T) {
	p := Paginate(2, 10, 35)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 10, p.Offset)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := Paginate(4, 10, 35)
	assert.False(t, last.HasNext)
	assert.Equal(t, 30, last.Offset)
}

func TestPaginate_Clamp(t *testing.T) {
	p := Paginate(0, 0, 5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.False(t, p.HasNext)

	p = Paginate(1, 1000, 0)
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.Offset)
}

func TestPaginate_HugePage(t *testing.T) {
	p := Paginate(math.MaxInt, 10, 25)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.Equal(t, math.MaxInt/10, p.Page)
	assert.Equal(t, (p.Page-1)*10, p.Offset)
	assert.False(t, p.HasNext)

	p = Paginate(math.MaxInt, 7, 0)
	assert.GreaterOrEqual(t, p.Offset, 0)
	assert.LessOrEqual(t, p.Offset, math.MaxInt-7)
}

func TestParsePagination(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&limit=20", nil)
	page, limit := ParsePagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, limit)

	c.Request = httptest.NewRequest(http.MethodGet, "/?page=abc", nil)
	page, limit = ParsePagination(c)
	assert.Equal(t, 0, page)
	assert.Equal(t, 10, limit)
}

func TestSendSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SendSuccess(c, http.StatusCreated, "Course created", gin.H{"id": 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Course created", body["message"])
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["id"])
	assert.NotContains(t, body, "pagination")
}

func TestSendPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	SendPaginated(c, []int{1, 2}, Paginate(1, 2, 5))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	pg := body["pagination"].(map[string]interface{})
	assert.Equal(t, float64(3), pg["total_pages"])
	assert.Equal(t, true, pg["has_next"])
	assert.NotContains(t, pg, "offset")
}
