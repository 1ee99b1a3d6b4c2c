package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"CareerFindr-backend/internal/config"
	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

// GoogleUserInfoEndpoint is where user profile is fetched after code exchange
const GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleUserInfo is response of google userinfo endpoint
type GoogleUserInfo struct {
	GID       string `json:"sub"`
	FirstName string `json:"given_name"`
	LastName  string `json:"family_name"`
	Email     string `json:"email"`
	Picture   string `json:"picture"`
}

// OauthLoginHandler struct holds the database connection and OAuth2 configuration for handling OAuth login.
type OauthLoginHandler struct {
	DB               *database.DBinstanceStruct
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
}

type code struct {
	Code string `json:"code" binding:"required"`
}

// NewGoogleOauthConfig build oauth2 config of google login from application config
func NewGoogleOauthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"openid",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: cfg.OAuthRedirectURL,
	}
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler with the provided database connection and OAuth2 configuration.
func NewOauthLoginHandler(db *database.DBinstanceStruct, oauthConfig *oauth2.Config, userInfoEndpoint string) *OauthLoginHandler {
	return &OauthLoginHandler{
		DB:               db,
		OauthConfig:      oauthConfig,
		UserInfoEndpoint: userInfoEndpoint,
	}
}

func (h *OauthLoginHandler) getUserInfo(c *gin.Context) (GoogleUserInfo, error) {
	var code code
	var uInfo GoogleUserInfo

	if err := c.ShouldBindJSON(&code); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %v", err.Error()),
		})
		return uInfo, err
	}

	token, err := h.OauthConfig.Exchange(c.Request.Context(), code.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to receive token: %v", err.Error()),
		})
		return uInfo, err
	}

	client := h.OauthConfig.Client(c.Request.Context(), token)
	resp, err := client.Get(h.UserInfoEndpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: %v", err.Error()),
		})
		return uInfo, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: status=%d body=%s", resp.StatusCode, string(bodyBytes)),
		})
		return uInfo, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&uInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to decode user info: %v", err.Error()),
		})
		return uInfo, err
	}
	if uInfo.GID == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Google account id is missing from user information",
		})
		return uInfo, errors.New("empty google id")
	}
	return uInfo, nil
}

// newGoogleUser build base user of given role from google profile
func newGoogleUser(uinfo GoogleUserInfo, role string) model.User {
	gid := uinfo.GID
	user := model.User{
		ID:       uuid.New(),
		Username: "google_" + gid,
		GoogleID: &gid,
		Role:     role,
		EditableUserInfo: model.EditableUserInfo{
			ProfilePicture: uinfo.Picture,
		},
	}
	if uinfo.Email != "" {
		email := uinfo.Email
		user.Email = &email
	}
	return user
}

func (h *OauthLoginHandler) loginOrRegisterUser(role string, uinfo GoogleUserInfo, c *gin.Context) {
	var user model.User
	respStatus := http.StatusOK

	err := h.DB.Where("google_id = ?", uinfo.GID).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = newGoogleUser(uinfo, role)

		name := uinfo.FirstName
		if role != model.RoleStudent && uinfo.LastName != "" {
			name += " " + uinfo.LastName
		}
		profile, err := newProfile(user, name)
		if err != nil {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
			return
		}
		if s, ok := profile.(*model.StudentProfile); ok {
			s.FirstName = uinfo.FirstName
			s.LastName = uinfo.LastName
		}

		if err := h.DB.WithContext(c.Request.Context()).Create(profile).Error; err != nil {
			status := http.StatusInternalServerError
			if database.IsUniqueViolation(err) {
				status = http.StatusConflict
			}
			LogAuthAttempt("error", "Google", "Fail", uinfo.Email, err.Error())
			c.JSON(status, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %v", err.Error()),
			})
			return
		}

		respStatus = http.StatusCreated
	case err == nil:
		if user.Role != role {
			LogAuthAttempt("info", "Google", "Fail", uinfo.Email, "registered as "+user.Role)
			c.JSON(http.StatusConflict, utilities.ErrorResponse{
				Error: "You already registered as a different user type",
			})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %v", err.Error()),
		})
		return
	}

	resp, err := loadLoginResponse(h.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %v", err.Error()),
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

	LogAuthAttempt("info", "Google", "Success", uinfo.Email, "")
	c.JSON(respStatus, resp)
}

// GoogleLoginHandler handles Google login authentication for the role in path, exchanges code for user
// info, checks and creates user in the database, generates an access token, and returns user
// information with the access token.
// @Summary Handles Google login authentication, exchanges code for user
// @Description Checks and creates user of given role in the database, generates an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param role path string true "student, institution or company"
// @Param Code body code true "Authentication code from google"
// @Success 200 {object} model.StudentResponse "Login success"
// @Success 201 {object} model.StudentResponse "Register success"
// @Failure 400 {object} utilities.ErrorResponse "Fail to receive token or fetch user info"
// @Failure 409 {object} utilities.ErrorResponse "Account registered with another role"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/google/{role} [post]
func (h *OauthLoginHandler) GoogleLoginHandler(c *gin.Context) {
	role := c.Param("role")
	if role != model.RoleStudent && role != model.RoleInstitution && role != model.RoleCompany {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Role '%s' not allowed", role),
		})
		return
	}

	uInfo, err := h.getUserInfo(c)
	if err != nil {
		LogAuthAttempt("info", "Google", "Fail", "", err.Error())
		return
	}

	h.loginOrRegisterUser(role, uInfo, c)
}

// Callback retrieves a query parameter named "code" from the request and returns it in a JSON response.
// @Summary Retrieves a query parameter named "code" from the request and returns it in a JSON response
// @Tags Auth
// @Produce json
// @Param Code query string false "Authentication code from google"
// @Success 200 {object} code
// @Router /auth/google/callback [get]
func (h *OauthLoginHandler) Callback(c *gin.Context) {
	aCode := c.Query("code")
	c.JSON(http.StatusOK, code{
		Code: aCode,
	})
}
