// Package job provides HTTP handlers for job posts published by companies.
package job

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

// JobController handles job post related endpoints
type JobController struct {
	DB *database.DBinstanceStruct
}

// NewJobController creates a new instance of JobController
func NewJobController(db *database.DBinstanceStruct) *JobController {
	return &JobController{
		DB: db,
	}
}

// JobResponse is job with application state at request time
type JobResponse struct {
	model.Job
	IsOpen    bool   `json:"is_open"`
	PostedAgo string `json:"posted_ago"`
}

// CreateJob handles the creation of a new job post by a company user.
// @Summary Create job post based on given json structure
// @Description Only company have access to this endpoint. Slug is generated from title
// @Tags Job
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param job body model.EditableJobInfo true "Input job information"
// @Success 201 {object} utilities.SuccessResponse{data=model.Job} "Successfully create job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job [post]
func (jc *JobController) CreateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	// job post belongs to the company that creates it
	if user.Role != model.RoleCompany {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only company can create job post"})
		return
	}

	// construct job post from request
	job := model.Job{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&job.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	job.Title = strings.TrimSpace(job.Title)
	if job.Title == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "title is required"})
		return
	}

	ctx := c.Request.Context()
	slug, err := jc.DB.AvailableSlug(ctx, &model.Job{}, job.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate slug: %s", err.Error()),
		})
		return
	}
	job.Slug = slug
	job.CompanyID = user.ID

	if err := jc.DB.WithContext(ctx).Create(&job).Error; err != nil {
		utilities.SendError(c, err, "create job post", "Company not found")
		return
	}

	utilities.SendSuccess(c, http.StatusCreated, "Job post created", job)
}

// GetJobs fetches job posts that match query from the database.
// @Summary Get job posts based on query
// @Description Every query are not required, but they have specific use defined in their description
// @Tags Job
// @Produce json
// @Param q query string false "Search from job title with substring matching and case insensitive"
// @Param company query string false "Company slug, or name with substring matching"
// @Param type query string false "Job type with substring matching and case insensitive"
// @Param location query string false "Location with substring matching and case insensitive"
// @Param open query boolean false "Only job that still accept application if true"
// @Param desc query boolean false "Sorting by post time in descending if true, otherwise ascending"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]JobResponse} "Return job post(s)"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job [get]
func (jc *JobController) GetJobs(c *gin.Context) {
	rawSearch := c.Query("q")
	rawCompany := c.Query("company")
	rawJobType := c.Query("type")
	rawLocation := c.Query("location")
	rawOpen := c.Query("open")
	rawDesc := c.Query("desc")

	now := time.Now()
	result := jc.DB.WithContext(c.Request.Context()).Model(&model.Job{})

	if rawSearch != "" {
		result = result.Where("jobs.title ILIKE ?", "%"+rawSearch+"%")
	}
	if rawJobType != "" {
		result = result.Where("jobs.job_type ILIKE ?", "%"+rawJobType+"%")
	}
	if rawLocation != "" {
		result = result.Where("jobs.location ILIKE ?", "%"+rawLocation+"%")
	}
	if rawCompany != "" {
		result = result.Joins("JOIN companies ON companies.user_id = jobs.company_id").
			Where("companies.slug = ? OR companies.name ILIKE ?", rawCompany, "%"+rawCompany+"%")
	}
	if strings.ToLower(rawOpen) == "true" {
		result = result.Where("jobs.closing_date IS NULL OR jobs.closing_date > ?", now)
	}
	base := result.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to count job posts: ", err.Error()),
		})
		return
	}

	p, l := utilities.ParsePagination(c)
	page := utilities.Paginate(p, l, total)

	jobs := []model.Job{}
	if err := base.Preload("Company").
		Order(clause.OrderByColumn{
			Column: clause.Column{Table: "jobs", Name: "created_at"},
			Desc:   strings.ToLower(rawDesc) == "true",
		}).
		Offset(page.Offset).Limit(page.Limit).
		Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch job post: ", err.Error()),
		})
		return
	}

	posts := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		posts = append(posts, JobResponse{Job: j, IsOpen: j.IsOpen(now), PostedAgo: utilities.TimeAgo(j.CreatedAt, now)})
	}
	utilities.SendPaginated(c, posts, page)
}

// GetJobBySlug fetches a job post by its slug.
// @Summary Get job post by slug
// @Tags Job
// @Produce json
// @Param slug path string true "Slug of desired job post"
// @Success 200 {object} utilities.SuccessResponse{data=JobResponse} "Return the job post"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{slug} [get]
func (jc *JobController) GetJobBySlug(c *gin.Context) {
	job := model.Job{}
	if err := jc.DB.WithContext(c.Request.Context()).
		Preload("Company").
		Where("slug = ?", c.Param("slug")).
		First(&job).Error; err != nil {
		utilities.SendError(c, err, "retrieve job post", "Job post not found")
		return
	}

	now := time.Now()
	utilities.SendSuccess(c, http.StatusOK, "", JobResponse{Job: job, IsOpen: job.IsOpen(now), PostedAgo: utilities.TimeAgo(job.CreatedAt, now)})
}

func (jc *JobController) findOwnedJob(c *gin.Context, user model.User, action string) (model.Job, bool) {
	job := model.Job{}
	if err := jc.DB.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Job post not found"})
			return job, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
		return job, false
	}

	// Allow admins to bypass ownership check
	if job.CompanyID != user.ID && user.Role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: fmt.Sprintf("You are not allowed to %s this job post", action),
		})
		return job, false
	}
	return job, true
}

// EditJob allows a company user to update a job post they own.
// @Summary Edit job post based on given json structure
// @Description Only company that own the post or admin have access to this endpoint
// @Tags Job
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Param job body model.EditableJobInfo true "Input job information"
// @Success 200 {object} utilities.SuccessResponse{data=model.Job} "Successfully update job post"
// @Failure 400 {object} utilities.ErrorResponse "Invalid job struct"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id} [patch]
func (jc *JobController) EditJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, ok := jc.findOwnedJob(c, user, "edit")
	if !ok {
		return
	}

	// Bind incoming JSON to a temporary struct to avoid overwriting ownership fields
	updated := model.Job{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&updated.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to parse request body: %s", err.Error()),
		})
		return
	}

	db := jc.DB.WithContext(c.Request.Context())
	if err := db.Model(&job).Updates(updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job post: %s", err.Error()),
		})
		return
	}

	if err := db.Where("id = ?", job.ID).First(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated job post: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "Job post updated", job)
}

// DeleteJob allows a company user to delete a job post they own.
// @Summary Delete given job post ID
// @Description Only company that own the post or admin. Post that already received application can't be deleted
// @Tags Job
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path integer true "ID of desired job post"
// @Success 200 {object} utilities.MessageResponse "Successfully delete job post"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to delete this post"
// @Failure 404 {object} utilities.ErrorResponse "Post not found"
// @Failure 409 {object} utilities.ErrorResponse "Post has applications"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /job/{id} [delete]
func (jc *JobController) DeleteJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, ok := jc.findOwnedJob(c, user, "delete")
	if !ok {
		return
	}

	db := jc.DB.WithContext(c.Request.Context())
	var applications int64
	if err := db.Model(&model.Application{}).
		Where("type = ? AND target_id = ?", model.ApplicationTypeJob, job.ID).
		Count(&applications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check applications: %s", err.Error()),
		})
		return
	}
	if applications > 0 {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Job post already has applications"})
		return
	}

	if err := db.Delete(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post deleted"})
}
