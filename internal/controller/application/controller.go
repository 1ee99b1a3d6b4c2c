// Package application provides HTTP handlers for course and job application operations.
package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
	"CareerFindr-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Notifier tell student about result of their application
type Notifier interface {
	ApplicationStatusChanged(ctx context.Context, student model.StudentProfile, app model.Application, targetTitle string)
	AdmissionOffered(ctx context.Context, student model.StudentProfile, admission model.Admission, courseTitle string)
}

// ApplicationController handles application related endpoints
type ApplicationController struct {
	DB       *database.DBinstanceStruct
	Notifier Notifier
}

// NewApplicationController creates a new instance of ApplicationController. Notifier may be nil.
func NewApplicationController(db *database.DBinstanceStruct, notifier Notifier) *ApplicationController {
	return &ApplicationController{
		DB:       db,
		Notifier: notifier,
	}
}

// CreateApplicationRequest is body of application submission
type CreateApplicationRequest struct {
	Type        string                 `json:"type" binding:"required,apptype"`
	TargetID    uint                   `json:"target_id" binding:"required"`
	Motivation  string                 `json:"motivation" binding:"required,motivation"`
	CoverLetter string                 `json:"cover_letter" binding:"omitempty,max=10000"`
	Answers     map[string]interface{} `json:"answers"`
	DocumentIDs []int                  `json:"document_ids" binding:"omitempty,max=10,dive,min=1"`
}

// UpdateStatusRequest is body of reviewer decision
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"omitempty,max=2000"`
}

// ApplicationResponse is application together with title of its target
type ApplicationResponse struct {
	model.Application
	TargetTitle  string `json:"target_title"`
	TargetSlug   string `json:"target_slug"`
	SubmittedAgo string `json:"submitted_ago"`
}

// target is course or job that application point to
type target struct {
	title string
	slug  string
}

var lockForUpdate = clause.Locking{Strength: "UPDATE"}

// CreateApplication handles submission of course or job application by student.
// @Summary Submit application
// @Description Only student can access this endpoint. Target must still be open and every document must belong to the student
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param application body CreateApplicationRequest true "Application information"
// @Success 201 {object} utilities.SuccessResponse{data=model.Application} "Application submitted"
// @Failure 400 {object} utilities.ValidationErrorResponse "Invalid request body, target closed, or foreign document"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Course or job not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application [post]
func (ac *ApplicationController) CreateApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	req := CreateApplicationRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.SendBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	db := ac.DB.WithContext(ctx)

	app := model.Application{
		StudentID:   user.ID,
		Type:        req.Type,
		TargetID:    req.TargetID,
		Status:      model.ApplicationStatusPending,
		Motivation:  req.Motivation,
		CoverLetter: req.CoverLetter,
		Answers:     req.Answers,
	}

	now := time.Now()
	switch req.Type {
	case model.ApplicationTypeCourse:
		var course model.Course
		if err := db.First(&course, req.TargetID).Error; err != nil {
			utilities.SendError(c, err, "retrieve course", "Course not found")
			return
		}
		if !course.IsOpen(now) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Applications for this course are closed"})
			return
		}
		app.OwnerID = course.InstitutionID
	case model.ApplicationTypeJob:
		var job model.Job
		if err := db.First(&job, req.TargetID).Error; err != nil {
			utilities.SendError(c, err, "retrieve job", "Job not found")
			return
		}
		if !job.IsOpen(now) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Applications for this job are closed"})
			return
		}
		app.OwnerID = job.CompanyID
	}

	// Prevent duplicate applications for the same target
	var existing int64
	if err := db.Model(&model.Application{}).
		Where("student_id = ? AND type = ? AND target_id = ?", user.ID, req.Type, req.TargetID).
		Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to check existing application"})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: fmt.Sprintf("You have already applied for this %s", req.Type)})
		return
	}

	if len(req.DocumentIDs) > 0 {
		ids := uniqueInts(req.DocumentIDs)
		var docs []model.File
		if err := db.Where("id IN ? AND owner_id = ?", ids, user.ID).Find(&docs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to retrieve documents: %s", err.Error()),
			})
			return
		}
		if len(docs) != len(ids) {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Some documents do not exist or do not belong to you"})
			return
		}
		app.Documents = docs
	}

	if err := db.Omit("Documents.*").Create(&app).Error; err != nil {
		if database.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: fmt.Sprintf("You have already applied for this %s", req.Type)})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create application: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusCreated, "Application submitted", app)
}

// GetMyApplications list applications of logged in student.
// @Summary Get own applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type, course or job"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]ApplicationResponse} "Application list"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/mine [get]
func (ac *ApplicationController) GetMyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := ac.DB.WithContext(c.Request.Context()).Model(&model.Application{}).Where("student_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	ac.sendApplicationPage(c, query, "Documents", "Admission")
}

// GetReceivedApplications list applications submitted to courses or jobs of logged in institution or company.
// @Summary Get received applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param status query string false "Filter by status"
// @Param target_id query int false "Filter by course or job id"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]ApplicationResponse} "Application list"
// @Failure 400 {object} utilities.ErrorResponse "Invalid target id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution or company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/received [get]
func (ac *ApplicationController) GetReceivedApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	query := ac.DB.WithContext(c.Request.Context()).Model(&model.Application{}).Where("owner_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if raw := c.Query("target_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid target_id"})
			return
		}
		query = query.Where("target_id = ?", id)
	}

	ac.sendApplicationPage(c, query, "Student.User", "Documents", "Admission")
}

func (ac *ApplicationController) sendApplicationPage(c *gin.Context, query *gorm.DB, preloads ...string) {
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to count applications: %s", err.Error()),
		})
		return
	}

	p, l := utilities.ParsePagination(c)
	page := utilities.Paginate(p, l, total)

	find := base.Order("submitted_at DESC").Offset(page.Offset).Limit(page.Limit)
	for _, name := range preloads {
		find = find.Preload(name)
	}

	apps := []model.Application{}
	if err := find.Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch applications: %s", err.Error()),
		})
		return
	}

	resp, err := ac.withTargets(c.Request.Context(), apps)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch application targets: %s", err.Error()),
		})
		return
	}

	utilities.SendPaginated(c, resp, page)
}

// GetApplication return single application visible to its student, its reviewer, or admin.
// @Summary Get application by ID
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Success 200 {object} utilities.SuccessResponse{data=ApplicationResponse} "Application"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to view this application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id} [get]
func (ac *ApplicationController) GetApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var app model.Application
	if err := ac.DB.WithContext(c.Request.Context()).
		Preload("Student.User").
		Preload("Documents").
		Preload("Admission").
		First(&app, "id = ?", c.Param("id")).Error; err != nil {
		utilities.SendError(c, err, "retrieve application", "Application not found")
		return
	}

	if user.Role != model.RoleAdmin && app.StudentID != user.ID && app.OwnerID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to view this application"})
		return
	}

	resp, err := ac.withTargets(c.Request.Context(), []model.Application{app})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch application target: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", resp[0])
}

// UpdateStatus let owner of the course or job review pending application. Approving course
// application also offer admission to the student.
// @Summary Review application
// @Description Course application: pending to approved or rejected. Job application: pending to accepted or rejected
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Param status body UpdateStatusRequest true "New status and optional note"
// @Success 200 {object} utilities.SuccessResponse{data=model.Application} "Status updated"
// @Failure 400 {object} utilities.ErrorResponse "Invalid status or transition"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not owner of the application target"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id}/status [patch]
func (ac *ApplicationController) UpdateStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid application id"})
		return
	}

	req := UpdateStatusRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		validation.SendBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	app, admission, err := ac.DB.UpdateApplicationStatus(ctx, user.ID, uint(id), req.Status, req.Note)
	if err != nil {
		utilities.SendError(c, err, "update application status", "Application not found")
		return
	}

	ac.notify(ctx, app, admission)

	utilities.SendSuccess(c, http.StatusOK, "Application status updated", app)
}

// notify load the student and title of target then hand them to notifier
func (ac *ApplicationController) notify(ctx context.Context, app model.Application, admission *model.Admission) {
	if ac.Notifier == nil {
		return
	}

	var student model.StudentProfile
	if err := ac.DB.WithContext(ctx).Preload("User").First(&student, "user_id = ?", app.StudentID).Error; err != nil {
		log.Printf("notify: failed to load student %s: %v", app.StudentID, err)
		return
	}
	t, err := ac.loadTarget(ctx, app.Type, app.TargetID)
	if err != nil {
		log.Printf("notify: failed to load %s %d: %v", app.Type, app.TargetID, err)
		return
	}

	ac.Notifier.ApplicationStatusChanged(ctx, student, app, t.title)
	if admission != nil {
		ac.Notifier.AdmissionOffered(ctx, student, *admission, t.title)
	}
}

// WithdrawApplication delete pending application of logged in student.
// @Summary Withdraw application
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "Application ID"
// @Success 200 {object} utilities.MessageResponse "Application withdrawn"
// @Failure 400 {object} utilities.ErrorResponse "Application already reviewed"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not owner of the application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /application/{id} [delete]
func (ac *ApplicationController) WithdrawApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	err = ac.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var app model.Application
		if err := tx.Clauses(lockForUpdate).First(&app, "id = ?", c.Param("id")).Error; err != nil {
			return err
		}
		if app.StudentID != user.ID {
			return model.ErrForbidden
		}
		if !app.Withdrawable() {
			return fmt.Errorf("%w: only pending application can be withdrawn", model.ErrInvalidTransition)
		}
		return tx.Select("Documents").Delete(&app).Error
	})
	if err != nil {
		utilities.SendError(c, err, "withdraw application", "Application not found")
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Application withdrawn"})
}

func (ac *ApplicationController) loadTarget(ctx context.Context, kind string, id uint) (target, error) {
	db := ac.DB.WithContext(ctx)
	switch kind {
	case model.ApplicationTypeCourse:
		var course model.Course
		if err := db.First(&course, id).Error; err != nil {
			return target{}, err
		}
		return target{title: course.Title, slug: course.Slug}, nil
	case model.ApplicationTypeJob:
		var job model.Job
		if err := db.First(&job, id).Error; err != nil {
			return target{}, err
		}
		return target{title: job.Title, slug: job.Slug}, nil
	}
	return target{}, errors.New("unknown application type")
}

// withTargets attach title and slug of course or job to each application
func (ac *ApplicationController) withTargets(ctx context.Context, apps []model.Application) ([]ApplicationResponse, error) {
	courseIDs, jobIDs := []uint{}, []uint{}
	for _, a := range apps {
		if a.Type == model.ApplicationTypeCourse {
			courseIDs = append(courseIDs, a.TargetID)
		} else {
			jobIDs = append(jobIDs, a.TargetID)
		}
	}

	db := ac.DB.WithContext(ctx)
	titles := map[string]target{}
	if len(courseIDs) > 0 {
		var courses []model.Course
		if err := db.Select("id", "title", "slug").Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			return nil, err
		}
		for _, co := range courses {
			titles[targetKey(model.ApplicationTypeCourse, co.ID)] = target{title: co.Title, slug: co.Slug}
		}
	}
	if len(jobIDs) > 0 {
		var jobs []model.Job
		if err := db.Select("id", "title", "slug").Where("id IN ?", jobIDs).Find(&jobs).Error; err != nil {
			return nil, err
		}
		for _, j := range jobs {
			titles[targetKey(model.ApplicationTypeJob, j.ID)] = target{title: j.Title, slug: j.Slug}
		}
	}

	now := time.Now()
	out := make([]ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		t := titles[targetKey(a.Type, a.TargetID)]
		out = append(out, ApplicationResponse{
			Application:  a,
			TargetTitle:  t.title,
			TargetSlug:   t.slug,
			SubmittedAgo: utilities.TimeAgo(a.SubmittedAt, now),
		})
	}
	return out, nil
}

func targetKey(kind string, id uint) string {
	return kind + ":" + strconv.FormatUint(uint64(id), 10)
}

func uniqueInts(in []int) []int {
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
