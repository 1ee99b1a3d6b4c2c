package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/model"
	"CareerFindr-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	Configure("auth-test-secret", time.Hour)

	teardown, db, err := database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := teardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "teardown error: %v\n", err)
	}
	os.Exit(code)
}

// assertValidAccessToken validate access token in response and return claims.
func assertValidAccessToken(t *testing.T, resp map[string]interface{}) *jwt.RegisteredClaims {
	t.Helper()
	tokenStr, ok := resp["access_token"].(string)
	require.True(t, ok, "access_token not a string")
	token, err := ValidatedToken(tokenStr)
	require.NoError(t, err)
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	require.True(t, ok, "claims type mismatch")
	assert.NotEmpty(t, claims.Subject, "token subject empty")
	return claims
}

func TestRegisterStudent(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username":   "new_student",
		"password":   "password123",
		"email":      "new.student@example.com",
		"role":       "student",
		"first_name": "Ayanda",
		"last_name":  "Zulu",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code, "unexpected status, body: %s", rec.Body.String())

	claims := assertValidAccessToken(t, resp)
	user, ok := resp["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, claims.Subject, user["user_id"])
	assert.Equal(t, "Ayanda", user["first_name"])

	var stored model.StudentProfile
	require.NoError(t, testDB.Preload("User").Where("user_id = ?", claims.Subject).First(&stored).Error)
	assert.Equal(t, model.RoleStudent, stored.User.Role)
	assert.NotEqual(t, "password123", stored.User.Password)
}

func TestRegisterInstitution(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": "hillside_admissions",
		"password": "password123",
		"role":     "institution",
		"name":     "Hillside Technical College",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code, "unexpected status, body: %s", rec.Body.String())

	assertValidAccessToken(t, resp)
	user, _ := resp["user"].(map[string]interface{})
	assert.Equal(t, "Hillside Technical College", user["name"])
	assert.Contains(t, user["slug"], "hillside-technical-college-")
}

func TestRegisterCompany(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": "acme_hr",
		"password": "companyPass123",
		"role":     "company",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, rec.Code, "unexpected status, body: %s", rec.Body.String())

	assertValidAccessToken(t, resp)
	user, _ := resp["user"].(map[string]interface{})
	assert.Equal(t, "acme_hr", user["name"], "name falls back to username")
	assert.Equal(t, false, user["verified"])
}

func TestRegisterPasswordTooShort(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": "short_pwd_user",
		"password": "1234567",
		"role":     "student",
	}
	rec, _, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": database.TestUserStudent1.Username,
		"password": "password123",
		"role":     "student",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username already exist", resp["error"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": "email_thief",
		"password": "password123",
		"email":    *database.TestUserStudent1.Email,
		"role":     "student",
	}
	rec, _, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterInvalidRole(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"username": "invalid_role_user",
		"password": "password123",
		"role":     "admin",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalRegisterHandler, "/register", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["error"], "'student', 'institution' or 'company'")
}

func TestLoginSuccess(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	cases := []struct {
		name   string
		user   model.User
		idKey  string
		wantID string
	}{
		{"student", database.TestUserStudent1, "user_id", database.TestUserStudent1.ID.String()},
		{"institution", database.TestUserInstitution1, "user_id", database.TestUserInstitution1.ID.String()},
		{"company", database.TestUserCompany1, "user_id", database.TestUserCompany1.ID.String()},
		{"admin", database.TestAdminUser, "id", database.TestAdminUser.ID.String()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := map[string]string{
				"username": tc.user.Username,
				"password": database.TestSeedPassword,
			}
			rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, payload)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

			claims := assertValidAccessToken(t, resp)
			assert.Equal(t, tc.wantID, claims.Subject)
			assert.Equal(t, JwtIssuer, claims.Issuer)

			user, ok := resp["user"].(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, tc.wantID, user[tc.idKey])
		})
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)
	payload := map[string]string{
		"username": database.TestUserStudent1.Username,
		"password": "WrongPass999!",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Username or password is incorrect", resp["error"])
}

func TestLoginUserNotFound(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)
	payload := map[string]string{
		"username": "non_existent_user_xyz",
		"password": "SomePassword1!",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, payload)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Username or password is incorrect", resp["error"])
}

func TestLoginMissingFields(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)
	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{"username": "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username or password is not provided", resp["error"])
}

func TestGetAccessToken(t *testing.T) {
	token, err := GetAccessToken(t, testDB, database.TestUserCompany2.Username, database.TestSeedPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = GetAccessToken(t, testDB, database.TestUserCompany2.Username, "nope")
	assert.Error(t, err)
}
