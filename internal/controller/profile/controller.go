// Package profile provides HTTP handlers for student, institution and company profiles.
package profile

import (
	"encoding/json"
	"fmt"
	"net/http"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
	"CareerFindr-backend/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

// ProfileController handles profile related endpoints of every role
type ProfileController struct {
	DB *database.DBinstanceStruct
}

// NewProfileController creates a new instance of ProfileController
func NewProfileController(db *database.DBinstanceStruct) *ProfileController {
	return &ProfileController{
		DB: db,
	}
}

type editStudentUser struct {
	model.EditableStudentInfo
	model.EditableUserInfo
}

type editInstitutionUser struct {
	model.EditableOrganizationInfo
	model.EditableUserInfo
}

type editCompanyUser struct {
	Industry string `json:"industry"`
	model.EditableOrganizationInfo
	model.EditableUserInfo
}

// InstitutionPage is public view of institution, account information is hidden
type InstitutionPage struct {
	model.Institution
	User *struct{} `json:"user,omitempty"`
}

// CompanyPage is public view of company, account information is hidden
type CompanyPage struct {
	model.Company
	User *struct{} `json:"user,omitempty"`
}

// decodeEdit decode request body strictly into dst and run binding rules on it
func decodeEdit(c *gin.Context, dst interface{}) bool {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return false
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		validation.SendBindError(c, err)
		return false
	}
	return true
}

// GetStudentProfile retrieve profile of logged in student
// @Summary Retrieve student profile from database
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.SuccessResponse{data=model.StudentProfile} "Successfully retrieve student profile"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /student/profile [get]
func (pc *ProfileController) GetStudentProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	student := model.StudentProfile{}
	if err := pc.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("user_id = ?", user.ID).
		First(&student).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", student)
}

// EditStudentProfile merge given fields into student profile
// @Summary Edit student profile
// @Description Only non-empty fields are written. Resume is changed through its upload endpoint
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_profile body editStudentUser true "Student info to be written"
// @Success 200 {object} utilities.SuccessResponse{data=model.StudentProfile} "Successfully update"
// @Failure 400 {object} utilities.ValidationErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 409 {object} utilities.ErrorResponse "Email already in use"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /student/profile [patch]
func (pc *ProfileController) EditStudentProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	db := pc.DB.WithContext(c.Request.Context())
	student := model.StudentProfile{}
	if err := db.Preload("User").Where("user_id = ?", user.ID).First(&student).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	edited := editStudentUser{}
	if !decodeEdit(c, &edited) {
		return
	}

	utilities.MergeNonEmpty(&student.EditableStudentInfo, &edited.EditableStudentInfo)
	utilities.MergeNonEmpty(&student.User.EditableUserInfo, &edited.EditableUserInfo)

	if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&student).Error; err != nil {
		utilities.SendError(c, err, "update user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "Profile updated", student)
}

// GetInstitutionProfile retrieve profile of logged in institution together with its courses
// @Summary Retrieve institution profile from database
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.SuccessResponse{data=model.Institution} "Successfully retrieve institution profile"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /institution/profile [get]
func (pc *ProfileController) GetInstitutionProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	institution := model.Institution{}
	if err := pc.DB.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Courses", orderByNewest).
		Where("user_id = ?", user.ID).
		First(&institution).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", institution)
}

// EditInstitutionProfile merge given fields into institution profile
// @Summary Edit institution profile
// @Description Only non-empty fields are written. Slug, verified status and logo can't be overwritten
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param institution_profile body editInstitutionUser true "Institution info to be written"
// @Success 200 {object} utilities.SuccessResponse{data=model.Institution} "Successfully update"
// @Failure 400 {object} utilities.ValidationErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as institution"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /institution/profile [patch]
func (pc *ProfileController) EditInstitutionProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	db := pc.DB.WithContext(c.Request.Context())
	institution := model.Institution{}
	if err := db.Preload("User").Where("user_id = ?", user.ID).First(&institution).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	edited := editInstitutionUser{}
	if !decodeEdit(c, &edited) {
		return
	}

	utilities.MergeNonEmpty(&institution.EditableOrganizationInfo, &edited.EditableOrganizationInfo)
	utilities.MergeNonEmpty(&institution.User.EditableUserInfo, &edited.EditableUserInfo)

	if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&institution).Error; err != nil {
		utilities.SendError(c, err, "update user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "Profile updated", institution)
}

// GetCompanyProfile retrieve profile of logged in company together with its job posts
// @Summary Retrieve company profile from database
// @Tags Profile
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} utilities.SuccessResponse{data=model.Company} "Successfully retrieve company profile"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile [get]
func (pc *ProfileController) GetCompanyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company := model.Company{}
	if err := pc.DB.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Jobs", orderByNewest).
		Where("user_id = ?", user.ID).
		First(&company).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", company)
}

// EditCompanyProfile merge given fields into company profile
// @Summary Edit company profile
// @Description Only non-empty fields are written. Slug, verified status and logo can't be overwritten
// @Tags Profile
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company_profile body editCompanyUser true "Company info to be written"
// @Success 200 {object} utilities.SuccessResponse{data=model.Company} "Successfully update"
// @Failure 400 {object} utilities.ValidationErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as company"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile [patch]
func (pc *ProfileController) EditCompanyProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	db := pc.DB.WithContext(c.Request.Context())
	company := model.Company{}
	if err := db.Preload("User").Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		utilities.SendError(c, err, "retrieve user information", "Profile not found")
		return
	}

	edited := editCompanyUser{}
	if !decodeEdit(c, &edited) {
		return
	}

	if edited.Industry != "" {
		company.Industry = edited.Industry
	}
	utilities.MergeNonEmpty(&company.EditableOrganizationInfo, &edited.EditableOrganizationInfo)
	utilities.MergeNonEmpty(&company.User.EditableUserInfo, &edited.EditableUserInfo)

	if err := db.Session(&gorm.Session{FullSaveAssociations: true}).Save(&company).Error; err != nil {
		utilities.SendError(c, err, "update user information", "Profile not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "Profile updated", company)
}

// GetInstitutionBySlug retrieve public page of institution with its courses
// @Summary Retrieve institution by slug
// @Tags Profile
// @Produce json
// @Param slug path string true "Slug of institution"
// @Success 200 {object} utilities.SuccessResponse{data=InstitutionPage} "Return the institution"
// @Failure 404 {object} utilities.ErrorResponse "Institution not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /institution/{slug} [get]
func (pc *ProfileController) GetInstitutionBySlug(c *gin.Context) {
	institution := model.Institution{}
	if err := pc.DB.WithContext(c.Request.Context()).
		Preload("Courses", orderByNewest).
		Where("slug = ?", c.Param("slug")).
		First(&institution).Error; err != nil {
		utilities.SendError(c, err, "retrieve institution", "Institution not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", InstitutionPage{Institution: institution})
}

// GetCompanyBySlug retrieve public page of company with its job posts
// @Summary Retrieve company by slug
// @Tags Profile
// @Produce json
// @Param slug path string true "Slug of company"
// @Success 200 {object} utilities.SuccessResponse{data=CompanyPage} "Return the company"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{slug} [get]
func (pc *ProfileController) GetCompanyBySlug(c *gin.Context) {
	company := model.Company{}
	if err := pc.DB.WithContext(c.Request.Context()).
		Preload("Jobs", orderByNewest).
		Where("slug = ?", c.Param("slug")).
		First(&company).Error; err != nil {
		utilities.SendError(c, err, "retrieve company", "Company not found")
		return
	}

	utilities.SendSuccess(c, http.StatusOK, "", CompanyPage{Company: company})
}

func orderByNewest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
