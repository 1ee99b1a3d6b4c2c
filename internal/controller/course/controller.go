// Package course provides HTTP handlers for browsing and managing courses offered by institutions.
package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseController handles course related endpoints
type CourseController struct {
	DB *database.DBinstanceStruct
}

// NewCourseController creates a new instance of CourseController
func NewCourseController(db *database.DBinstanceStruct) *CourseController {
	return &CourseController{
		DB: db,
	}
}

// CourseResponse is course with application state at request time
type CourseResponse struct {
	model.Course
	IsOpen    bool   `json:"is_open"`
	PostedAgo string `json:"posted_ago"`
}

func toResponse(course model.Course, now time.Time) CourseResponse {
	return CourseResponse{
		Course:    course,
		IsOpen:    course.IsOpen(now),
		PostedAgo: utilities.TimeAgo(course.CreatedAt, now),
	}
}

// CreateCourse handles the creation of a new course by an institution.
// @Summary Create course based on given json structure
// @Description Only institution have access to this endpoint. Slug is generated from title
// @Tags Course
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param course body model.EditableCourseInfo true "Input course information"
// @Success 201 {object} utilities.SuccessResponse{data=model.Course} "Successfully create course"
// @Failure 400 {object} utilities.ErrorResponse "Invalid course struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /course [post]
func (cc *CourseController) CreateCourse(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	// course belongs to the institution that creates it
	if user.Role != model.RoleInstitution {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only institution can create course"})
		return
	}

	course := model.Course{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&course.EditableCourseInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "title is required"})
		return
	}
	if course.Seats != nil && *course.Seats < 0 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "seats must not be negative"})
		return
	}

	ctx := c.Request.Context()
	slug, err := cc.DB.AvailableSlug(ctx, &model.Course{}, course.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate slug: %s", err.Error()),
		})
		return
	}
	course.Slug = slug
	course.InstitutionID = user.ID

	if err := cc.DB.WithContext(ctx).Create(&course).Error; err != nil {
		utilities.SendError(c, err, "create course", "Institution not found")
		return
	}

	utilities.SendSuccess(c, http.StatusCreated, "Course created", course)
}

// GetCourses fetches courses that match query from the database.
// @Summary Get courses based on query
// @Description Every query are not required
// @Tags Course
// @Produce json
// @Param q query string false "Search from course title with substring matching and case insensitive"
// @Param institution query string false "Institution slug, or name with substring matching"
// @Param faculty query string false "Faculty with substring matching and case insensitive"
// @Param open query boolean false "Only course that still accept application if true"
// @Param desc query boolean false "Sorting by creation time in descending if true, otherwise ascending"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]CourseResponse} "Return course(s)"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /course [get]
func (cc *CourseController) GetCourses(c *gin.Context) {
	rawSearch := c.Query("q")
	rawInstitution := c.Query("institution")
	rawFaculty := c.Query("faculty")
	rawOpen := c.Query("open")
	rawDesc := c.Query("desc")

	now := time.Now()
	query := cc.DB.WithContext(c.Request.Context()).Model(&model.Course{})

	if rawSearch != "" {
		query = query.Where("courses.title ILIKE ?", "%"+rawSearch+"%")
	}
	if rawFaculty != "" {
		query = query.Where("courses.faculty ILIKE ?", "%"+rawFaculty+"%")
	}
	if rawInstitution != "" {
		query = query.Joins("JOIN institutions ON institutions.user_id = courses.institution_id").
			Where("institutions.slug = ? OR institutions.name ILIKE ?", rawInstitution, "%"+rawInstitution+"%")
	}
	if strings.ToLower(rawOpen) == "true" {
		query = query.Where("courses.deadline IS NULL OR courses.deadline > ?", now)
	}
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to count courses: ", err.Error()),
		})
		return
	}

	p, l := utilities.ParsePagination(c)
	page := utilities.Paginate(p, l, total)

	courses := []model.Course{}
	if err := base.Preload("Institution").
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "courses", Name: "created_at"},
			Desc:   strings.ToLower(rawDesc) == "true",
		}).
		Offset(page.Offset).Limit(page.Limit).
		Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch courses: ", err.Error()),
		})
		return
	}

	resp := make([]CourseResponse, 0, len(courses))
	for _, course := range courses {
		resp = append(resp, toResponse(course, now))
	}
	utilities.SendPaginated(c, resp, page)
}

// GetCourseBySlug fetches a course by its slug.
// @Summary Get course by slug
// @Tags Course
// @Produce json
// @Param slug path string true "Slug of desired course"
// @Success 200 {object} utilities.SuccessResponse{data=CourseResponse} "Return the course"
// @Failure 404 {object} utilities.ErrorResponse "Course not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /course/{slug} [get]
func (cc *CourseController) GetCourseBySlug(c *gin.Context) {
	course := model.Course{}
	if err := cc.DB.WithContext(c.Request.Context()).
		Preload("Institution").
		Where("slug = ?", c.Param("slug")).
		First(&course).Error; err != nil {
		utilities.SendError(c, err, "retrieve course", "Course not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", toResponse(course, time.Now()))
}

// findOwnedCourse load course by id and check that user may modify it.
// It writes error response and return false on failure.
func (cc *CourseController) findOwnedCourse(c *gin.Context, user model.User, action string) (model.Course, bool) {
	course := model.Course{}
	if err := cc.DB.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Course not found"})
			return course, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve course: %s", err.Error()),
		})
		return course, false
	}

	if course.InstitutionID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: fmt.Sprintf("You are not allowed to %s this course", action),
		})
		return course, false
	}
	return course, true
}

// EditCourse allows an institution to update a course it owns.
// @Summary Edit course based on given json structure
// @Description Only institution that own the course or admin have access to this endpoint. Empty field is left unchanged
// @Tags Course
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired course"
// @Param course body model.EditableCourseInfo true "Input course information"
// @Success 200 {object} utilities.SuccessResponse{data=model.Course} "Successfully update course"
// @Failure 400 {object} utilities.ErrorResponse "Invalid course struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Course not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /course/{id} [patch]
func (cc *CourseController) EditCourse(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	course, ok := cc.findOwnedCourse(c, user, "edit")
	if !ok {
		return
	}

	updated := model.Course{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&updated.EditableCourseInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}
	if updated.Seats != nil && *updated.Seats < 0 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "seats must not be negative"})
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	if err := db.Model(&course).Updates(updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update course: %s", err.Error()),
		})
		return
	}

	if err := db.Where("id = ?", course.ID).First(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated course: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "Course updated", course)
}

// DeleteCourse allows an institution to delete a course it owns.
// @Summary Delete given course ID
// @Description Only institution that own the course or admin. Course that already received application can't be deleted
// @Tags Course
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired course"
// @Success 200 {object} utilities.MessageResponse "Successfully delete course"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to delete this course"
// @Failure 404 {object} utilities.ErrorResponse "Course not found"
// @Failure 409 {object} utilities.ErrorResponse "Course has applications"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /course/{id} [delete]
func (cc *CourseController) DeleteCourse(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	course, ok := cc.findOwnedCourse(c, user, "delete")
	if !ok {
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	var applications int64
	if err := db.Model(&model.Application{}).
		Where("type = ? AND target_id = ?", model.ApplicationTypeCourse, course.ID).
		Count(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check applications: %s", err.Error()),
		})
		return
	}
	if applications > 0 {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Course already has applications"})
		return
	}

	if err := db.Delete(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete course: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Course deleted"})
}
