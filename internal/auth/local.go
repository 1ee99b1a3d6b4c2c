// Package auth contains handler relate to log in and create user account
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB: db,
	}
}

type registerInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"required,oneof=student institution company"`
	// Name is organization name when registering as institution or company
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginInfo struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// newProfile build empty profile of given role around base user
func newProfile(user model.User, name string) (interface{}, error) {
	if name == "" {
		name = user.Username
	}

	switch user.Role {
	case model.RoleStudent:
		return &model.StudentProfile{User: user}, nil
	case model.RoleInstitution:
		return &model.Institution{
			User:                     user,
			Slug:                     utilities.UniqueSlug(name),
			EditableOrganizationInfo: model.EditableOrganizationInfo{Name: name},
		}, nil
	case model.RoleCompany:
		return &model.Company{
			User:                     user,
			Slug:                     utilities.UniqueSlug(name),
			EditableOrganizationInfo: model.EditableOrganizationInfo{Name: name},
		}, nil
	}
	return nil, fmt.Errorf("role '%s' not allowed", user.Role)
}

// loadLoginResponse load profile of user and wrap it into response of its role
func loadLoginResponse(db *gorm.DB, user model.User) (model.TokenSetter, error) {
	switch user.Role {
	case model.RoleStudent:
		resp := &model.StudentResponse{}
		err := db.Preload("User").Where("user_id = ?", user.ID).First(&resp.User).Error
		return resp, err
	case model.RoleInstitution:
		resp := &model.InstitutionResponse{}
		err := db.Preload("User").Where("user_id = ?", user.ID).First(&resp.User).Error
		return resp, err
	case model.RoleCompany:
		resp := &model.CompanyResponse{}
		err := db.Preload("User").Where("user_id = ?", user.ID).First(&resp.User).Error
		return resp, err
	}
	return &model.AdminResponse{User: user}, nil
}

// LocalRegisterHandler handles local registration by receiving username and password
// @Summary Handles local registration by receiving username and password
// @Description Username must not already exist and password must longer or equal to 8 characters long.
// @Description Institution and company use name as organization name.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be only 'student', 'institution' or 'company'"
// @Success 201 {object} model.StudentResponse "If role is student"
// @Success 201 {object} model.InstitutionResponse "If role is institution"
// @Success 201 {object} model.CompanyResponse "If role is company"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 409 {object} utilities.ErrorResponse "Username or email already exist"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username, password (at least 8 characters), and role (only 'student', 'institution' or 'company') must be provided",
		})
		return
	}

	var existing model.User
	err := lh.DB.Where("username = ?", info.Username).First(&existing).Error
	switch {
	case err == nil:
		LogAuthAttempt("info", "Local", "Fail", info.Username, "register: username already exist")
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "Username already exist",
		})
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	user := model.User{
		ID:       uuid.New(),
		Username: info.Username,
		Password: hashedPassword,
		Role:     info.Role,
	}
	if email := strings.TrimSpace(info.Email); email != "" {
		user.Email = &email
	}

	profile, err := newProfile(user, strings.TrimSpace(info.Name))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if s, ok := profile.(*model.StudentProfile); ok {
		s.FirstName = strings.TrimSpace(info.FirstName)
		s.LastName = strings.TrimSpace(info.LastName)
	}

	if err := lh.DB.WithContext(c.Request.Context()).Create(profile).Error; err != nil {
		status := http.StatusInternalServerError
		if database.IsUniqueViolation(err) {
			status = http.StatusConflict
		}
		c.JSON(status, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}

	resp, err := loadLoginResponse(lh.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %s", err.Error()),
		})
		return
	}

	accessToken, err := GenerateStandardToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}
	resp.SetAccessToken(accessToken)

	LogAuthAttempt("info", "Local", "Success", info.Username, "register as "+info.Role)
	c.JSON(http.StatusCreated, resp)
}

// LocalLoginHandler handles local login by receiving username and password
// @Summary Handles local login by receiving username and password
// @Description Username must exist and password match
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} model.StudentResponse "If role is student"
// @Success 200 {object} model.InstitutionResponse "If role is institution"
// @Success 200 {object} model.CompanyResponse "If role is company"
// @Success 200 {object} model.AdminResponse "If role is admin"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Username not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Username or password is not provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("username = ?", info.Username).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		LogAuthAttempt("info", "Local", "Fail", info.Username, "user not found")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	case err == nil:
		// Do nothing
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	// Google account without password can't login locally
	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		LogAuthAttempt("info", "Local", "Fail", info.Username, "wrong password")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Username or password is incorrect",
		})
		return
	}

	resp, err := loadLoginResponse(lh.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %s", err.Error()),
		})
		return
	}

	accessToken, err := GenerateStandardToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}
	resp.SetAccessToken(accessToken)

	LogAuthAttempt("info", "Local", "Success", info.Username, "")
	c.JSON(http.StatusOK, resp)
}
