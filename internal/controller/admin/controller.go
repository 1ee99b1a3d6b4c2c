// Package admin provides HTTP handlers that let admins manage user accounts.
package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminController handles admin only endpoints
type AdminController struct {
	DB *database.DBinstanceStruct
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(db *database.DBinstanceStruct) *AdminController {
	return &AdminController{
		DB: db,
	}
}

// GetUsers query users based on given "role" and "q"
// @Summary Get users based on given query
// @Description Only admin can access this endpoints
// @Description If no query given, the server will return all users
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param role query string false "Roles separated by space, case insensitive" example(student company)
// @Param q query string false "Username or email with substring matching"
// @Param page query int false "Page number, start from 1"
// @Param limit query int false "Item per page, at most 100"
// @Success 200 {object} utilities.SuccessResponse{data=[]model.User}
// @Failure 400 {object} utilities.ErrorResponse "Unknown role"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users [get]
func (ac *AdminController) GetUsers(c *gin.Context) {
	rawRole := c.Query("role")
	rawSearch := c.Query("q")

	result := ac.DB.WithContext(c.Request.Context()).Model(&model.User{})
	if rawRole != "" {
		roles := strings.Fields(strings.ToLower(rawRole))
		for _, r := range roles {
			if !validRole(r) {
				c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
					Error: fmt.Sprintf("Unknown role: %s", r),
				})
				return
			}
		}
		result = result.Where("role IN ?", roles)
	}
	if rawSearch != "" {
		result = result.Where("username ILIKE ? OR email ILIKE ?", "%"+rawSearch+"%", "%"+rawSearch+"%")
	}

	var total int64
	if err := result.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	p, l := utilities.ParsePagination(c)
	page := utilities.Paginate(p, l, total)

	var users []model.User
	if err := result.Order("created_at DESC").Offset(page.Offset).Limit(page.Limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	utilities.SendPaginated(c, users, page)
}

// VerifyInstitution allow admin to change verified flag of given institution
// @Summary Verify, or unverify institution
// @Description Only admin can access this endpoints
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Institution user ID"
// @Param status query string false "Only unverified, or verified with case insensitive (verified by default)" default(verified)
// @Success 200 {object} utilities.SuccessResponse{data=model.Institution}
// @Failure 400 {object} utilities.ErrorResponse "Unknown status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Given institution ID not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/institution/{id}/verify [patch]
func (ac *AdminController) VerifyInstitution(c *gin.Context) {
	verified, ok := parseVerifyStatus(c)
	if !ok {
		return
	}

	institution := model.Institution{}
	if !ac.setVerified(c, &institution, verified, "Institution") {
		return
	}
	utilities.SendSuccess(c, http.StatusOK, "Verification status updated", institution)
}

// VerifyCompany allow admin to change verified flag of given company
// @Summary Verify, or unverify company
// @Description Only admin can access this endpoints
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "Company user ID"
// @Param status query string false "Only unverified, or verified with case insensitive (verified by default)" default(verified)
// @Success 200 {object} utilities.SuccessResponse{data=model.Company}
// @Failure 400 {object} utilities.ErrorResponse "Unknown status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Given company ID not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/company/{id}/verify [patch]
func (ac *AdminController) VerifyCompany(c *gin.Context) {
	verified, ok := parseVerifyStatus(c)
	if !ok {
		return
	}

	company := model.Company{}
	if !ac.setVerified(c, &company, verified, "Company") {
		return
	}
	utilities.SendSuccess(c, http.StatusOK, "Verification status updated", company)
}

// DeleteUser remove account of given user together with its profile.
// Applications received by the user are removed too.
// @Summary Delete user
// @Description Only admin can access this endpoints. Admin accounts can't be deleted
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "User ID"
// @Success 200 {object} utilities.MessageResponse "User deleted"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin, or target is admin"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users/{id} [delete]
func (ac *AdminController) DeleteUser(c *gin.Context) {
	target := model.User{}
	err := ac.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", c.Param("id")).First(&target).Error; err != nil {
			return err
		}
		if target.Role == model.RoleAdmin {
			return model.ErrForbidden
		}
		if err := tx.Where("owner_id = ?", target.ID).Delete(&model.Application{}).Error; err != nil {
			return err
		}
		return tx.Delete(&target).Error
	})
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Admin account can't be deleted"})
			return
		}
		utilities.SendError(c, err, "delete user", "User not found")
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "User deleted"})
}

func (ac *AdminController) setVerified(c *gin.Context, profile interface{}, verified bool, name string) bool {
	db := ac.DB.WithContext(c.Request.Context())
	if err := db.Where("user_id = ?", c.Param("id")).First(profile).Error; err != nil {
		utilities.SendError(c, err, "retrieve "+strings.ToLower(name), name+" not found")
		return false
	}
	if err := db.Model(profile).Update("verified", verified).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update verification status: %s", err.Error()),
		})
		return false
	}
	if err := db.Where("user_id = ?", c.Param("id")).First(profile).Error; err != nil {
		utilities.SendError(c, err, "retrieve "+strings.ToLower(name), name+" not found")
		return false
	}
	return true
}

func parseVerifyStatus(c *gin.Context) (bool, bool) {
	status := strings.ToLower(c.DefaultQuery("status", "verified"))
	switch status {
	case "verified":
		return true, true
	case "unverified":
		return false, true
	}
	c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
		Error: fmt.Sprintf("Unknown status: %s", status),
	})
	return false, false
}

func validRole(role string) bool {
	return utilities.Contains([]string{model.RoleStudent, model.RoleInstitution, model.RoleCompany, model.RoleAdmin}, role)
}
