// Package dashboard provides per-role summary of applications, admissions and listings.
package dashboard

import (
	"fmt"
	"net/http"
	"time"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const recentLimit = 5

// DashboardController handles dashboard endpoint
type DashboardController struct {
	DB *database.DBinstanceStruct
}

// NewDashboardController creates a new instance of DashboardController
func NewDashboardController(db *database.DBinstanceStruct) *DashboardController {
	return &DashboardController{
		DB: db,
	}
}

// Dashboard is summary shown on landing page of logged in user.
// Only fields relevant to the role are filled.
type Dashboard struct {
	Role         string           `json:"role"`
	Applications map[string]int64 `json:"applications,omitempty"`
	Admissions   map[string]int64 `json:"admissions,omitempty"`
	Listings     *int64           `json:"listings,omitempty"`
	Users        map[string]int64 `json:"users,omitempty"`
	Recent       []RecentItem     `json:"recent"`
}

// RecentItem is latest application, or latest registered user for admin
type RecentItem struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	TimeAgo string `json:"time_ago"`
}

type groupCount struct {
	GroupKey string
	Count    int64
}

type recentApplication struct {
	ID          uint
	Type        string
	Status      string
	Title       string
	SubmittedAt time.Time
}

// GetDashboard return counts of records related to logged in user
// @Summary Get dashboard of logged in user
// @Description Student get their applications and admissions by status.
// @Description Institution and company get received applications by status and number of listings.
// @Description Admin get users by role
// @Tags Dashboard
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.SuccessResponse{data=Dashboard}
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /dashboard [get]
func (dc *DashboardController) GetDashboard(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	db := dc.DB.WithContext(c.Request.Context())
	dash := Dashboard{Role: user.Role, Recent: []RecentItem{}}
	switch user.Role {
	case model.RoleStudent:
		err = dc.studentDashboard(db, user, &dash)
	case model.RoleInstitution, model.RoleCompany:
		err = dc.ownerDashboard(db, user, &dash)
	case model.RoleAdmin:
		err = dc.adminDashboard(db, &dash)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to build dashboard: %s", err.Error()),
		})
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", dash)
}

func (dc *DashboardController) studentDashboard(db *gorm.DB, user model.User, dash *Dashboard) error {
	apps, err := countBy(db.Model(&model.Application{}).Where("student_id = ?", user.ID), "status", applicationStatuses())
	if err != nil {
		return err
	}
	admissions, err := countBy(db.Model(&model.Admission{}).Where("student_id = ?", user.ID), "status", []string{
		model.AdmissionStatusPending, model.AdmissionStatusAccepted, model.AdmissionStatusDeclined,
	})
	if err != nil {
		return err
	}
	dash.Applications = apps
	dash.Admissions = admissions
	return recentApplications(db, "applications.student_id = ?", user.ID, dash)
}

func (dc *DashboardController) ownerDashboard(db *gorm.DB, user model.User, dash *Dashboard) error {
	apps, err := countBy(db.Model(&model.Application{}).Where("owner_id = ?", user.ID), "status", applicationStatuses())
	if err != nil {
		return err
	}
	dash.Applications = apps

	var listings int64
	if user.Role == model.RoleInstitution {
		err = db.Model(&model.Course{}).Where("institution_id = ?", user.ID).Count(&listings).Error
	} else {
		err = db.Model(&model.Job{}).Where("company_id = ?", user.ID).Count(&listings).Error
	}
	if err != nil {
		return err
	}
	dash.Listings = &listings

	return recentApplications(db, "applications.owner_id = ?", user.ID, dash)
}

func (dc *DashboardController) adminDashboard(db *gorm.DB, dash *Dashboard) error {
	users, err := countBy(db.Model(&model.User{}), "role", []string{
		model.RoleStudent, model.RoleInstitution, model.RoleCompany, model.RoleAdmin,
	})
	if err != nil {
		return err
	}
	dash.Users = users

	var recent []model.User
	if err := db.Order("created_at DESC").Limit(recentLimit).Find(&recent).Error; err != nil {
		return err
	}
	now := time.Now()
	for _, u := range recent {
		dash.Recent = append(dash.Recent, RecentItem{
			ID:      u.ID.String(),
			Kind:    "user",
			Title:   u.Username,
			Status:  u.Role,
			TimeAgo: utilities.TimeAgo(u.CreatedAt, now),
		})
	}
	return nil
}

// countBy group query by column, every key in keys is present in result even with zero count
func countBy(query *gorm.DB, column string, keys []string) (map[string]int64, error) {
	var rows []groupCount
	if err := query.Select(column + " AS group_key, COUNT(*) AS count").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	for _, r := range rows {
		out[r.GroupKey] = r.Count
	}
	return out, nil
}

func recentApplications(db *gorm.DB, cond string, id interface{}, dash *Dashboard) error {
	var rows []recentApplication
	if err := db.Table("applications").
		Select("applications.id, applications.type, applications.status, applications.submitted_at, COALESCE(courses.title, jobs.title, '') AS title").
		Joins("LEFT JOIN courses ON applications.type = ? AND courses.id = applications.target_id", model.ApplicationTypeCourse).
		Joins("LEFT JOIN jobs ON applications.type = ? AND jobs.id = applications.target_id", model.ApplicationTypeJob).
		Where(cond, id).
		Order("applications.submitted_at DESC").
		Limit(recentLimit).
		Scan(&rows).Error; err != nil {
		return err
	}

	now := time.Now()
	for _, r := range rows {
		dash.Recent = append(dash.Recent, RecentItem{
			ID:      fmt.Sprint(r.ID),
			Kind:    r.Type,
			Title:   r.Title,
			Status:  r.Status,
			TimeAgo: utilities.TimeAgo(r.SubmittedAt, now),
		})
	}
	return nil
}

func applicationStatuses() []string {
	return []string{
		model.ApplicationStatusPending,
		model.ApplicationStatusApproved,
		model.ApplicationStatusAccepted,
		model.ApplicationStatusRejected,
		model.ApplicationStatusDeclined,
	}
}
