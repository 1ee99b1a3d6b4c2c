package utilities

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// SuccessResponse is envelope of every successful response that carry data
type SuccessResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describe which slice of result is returned
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	Offset     int   `json:"-"`
}

// SendSuccess write data wrapped in SuccessResponse
func SendSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SendPaginated write list of data together with its pagination
func SendPaginated(c *gin.Context, data interface{}, p Pagination) {
	c.JSON(200, SuccessResponse{
		Success:    true,
		Data:       data,
		Pagination: &p,
	})
}

// Paginate compute page metadata. Page start from 1, limit is clamped to [1, 100]
// and fall back to 10 when not positive. Page is capped so offset never overflows.
func Paginate(page, limit int, total int64) Pagination {
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	if total < 0 {
		total = 0
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
		Offset:     (page - 1) * limit,
	}
}

// ParsePagination read "page" and "limit" query. Invalid number is treated as missing.
func ParsePagination(c *gin.Context) (page int, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	return page, limit
}
