// Package admission provides HTTP handlers for admission offers made on approved course applications.
package admission

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
	"CareerFindr-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdmissionController handles admission related endpoints
type AdmissionController struct {
	DB *database.DBinstanceStruct
}

// NewAdmissionController creates a new instance of AdmissionController
func NewAdmissionController(db *database.DBinstanceStruct) *AdmissionController {
	return &AdmissionController{
		DB: db,
	}
}

// RespondRequest is student's answer to admission offer
type RespondRequest struct {
	Decision string `json:"decision" binding:"required,oneof=accept decline"`
}

// AdmissionResponse is admission with relative creation time
type AdmissionResponse struct {
	model.Admission
	OfferedAgo string `json:"offered_ago"`
}

// GetMyAdmissions list admission offers of logged in student.
// @Summary Get own admission offers
// @Tags Admission
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Filter by status"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]AdmissionResponse} "Admission list"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admission/mine [get]
func (ac *AdmissionController) GetMyAdmissions(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := ac.DB.WithContext(c.Request.Context()).Model(&model.Admission{}).Where("student_id = ?", user.ID)
	ac.sendAdmissionPage(c, query, "Course.Institution")
}

// GetReceivedAdmissions list admission offers made by logged in institution.
// @Summary Get admission offers made by institution
// @Tags Admission
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Filter by status"
// @Param course_id query int false "Filter by course"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]AdmissionResponse} "Admission list"
// @Failure 400 {object} utilities.ErrorResponse "Invalid course id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admission/received [get]
func (ac *AdmissionController) GetReceivedAdmissions(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := ac.DB.WithContext(c.Request.Context()).Model(&model.Admission{}).Where("institution_id = ?", user.ID)
	if raw := c.Query("course_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid course_id"})
			return
		}
		query = query.Where("course_id = ?", id)
	}
	ac.sendAdmissionPage(c, query, "Course", "Student.User")
}

func (ac *AdmissionController) sendAdmissionPage(c *gin.Context, query *gorm.DB, preloads ...string) {
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count admissions: %s", err.Error()),
		})
		return
	}

	p, l := utilities.ParsePagination(c)
	page := utilities.Paginate(p, l, total)

	find := base.Order("created_at DESC").Offset(page.Offset).Limit(page.Limit)
	for _, name := range preloads {
		find = find.Preload(name)
	}

	admissions := []model.Admission{}
	if err := find.Find(&admissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch admissions: %s", err.Error()),
		})
		return
	}

	now := time.Now()
	resp := make([]AdmissionResponse, 0, len(admissions))
	for _, a := range admissions {
		resp = append(resp, AdmissionResponse{Admission: a, OfferedAgo: utilities.TimeAgo(a.CreatedAt, now)})
	}

	utilities.SendPaginated(c, resp, page)
}

// RespondAdmission let student accept or decline pending admission offer.
// Declining also mark the application as declined.
// @Summary Respond to admission offer
// @Tags Admission
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Admission ID"
// @Param decision body RespondRequest true "accept or decline"
// @Success 200 {object} utilities.SuccessResponse{data=model.Admission} "Decision recorded"
// @Failure 400 {object} utilities.ErrorResponse "Invalid decision or admission already answered"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the student of this admission"
// @Failure 404 {object} utilities.ErrorResponse "Admission not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admission/{id}/respond [patch]
func (ac *AdmissionController) RespondAdmission(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid admission id"})
		return
	}

	req := RespondRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.SendBindError(c, err)
		return
	}

	admission, err := ac.DB.RespondAdmission(c.Request.Context(), user.ID, uint(id), req.Decision)
	if err != nil {
		utilities.SendError(c, err, "respond to admission", "Admission not found")
		return
	}

	msg := "Admission accepted"
	if admission.Status == model.AdmissionStatusDeclined {
		msg = "Admission declined"
	}
	utilities.SendSuccess(c, http.StatusOK, msg, admission)
}
