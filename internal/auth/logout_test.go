package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CareerFindr-backend/internal/database"
)

type failingBlacklistStore struct{}

func (failingBlacklistStore) IsBlacklisted(string) (bool, error) { return false, nil }

func (failingBlacklistStore) AddToBlacklist(string, time.Time) error {
	return errors.New("store unavailable")
}

// newLogoutContext build context the way RequireAuth leave it for logout handler
func newLogoutContext(t *testing.T, accessToken string, withClaims bool) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	if accessToken != "" {
		c.Request.Header.Set("Authorization", "Bearer "+accessToken)
	}

	if withClaims {
		token, err := ValidatedToken(accessToken)
		require.NoError(t, err)
		c.Set("claims", token.Claims.(*jwt.RegisteredClaims))
	}
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestLogoutSuccess(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserStudent1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	store := newStore(t)
	c, rec := newLogoutContext(t, accessToken, true)
	NewLogoutController(store).LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out", decode(t, rec)["message"])

	listed, err := store.IsBlacklisted(accessToken)
	require.NoError(t, err)
	assert.True(t, listed, "Token should be blacklisted after logout")
}

func TestLogoutMissingToken(t *testing.T) {
	c, rec := newLogoutContext(t, "", false)
	NewLogoutController(newStore(t)).LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "authorization header")
}

func TestLogoutMissingClaims(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserStudent2.Username, database.TestSeedPassword)
	require.NoError(t, err)

	c, rec := newLogoutContext(t, accessToken, false)
	NewLogoutController(newStore(t)).LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token claims", decode(t, rec)["error"])
}

func TestLogoutInvalidClaimsType(t *testing.T) {
	c, rec := newLogoutContext(t, "whatever", false)
	c.Set("claims", jwt.MapClaims{"sub": "x"})
	NewLogoutController(newStore(t)).LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid token claims type", decode(t, rec)["error"])
}

func TestLogoutBlacklistStoreError(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserCompany1.Username, database.TestSeedPassword)
	require.NoError(t, err)

	c, rec := newLogoutContext(t, accessToken, true)
	NewLogoutController(failingBlacklistStore{}).LogoutHandler(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to logout", decode(t, rec)["error"])
}

func TestLogoutKeepsOtherTokensValid(t *testing.T) {
	first, err := GetAccessToken(t, testDB, database.TestUserInstitution1.Username, database.TestSeedPassword)
	require.NoError(t, err)
	second, err := GetAccessToken(t, testDB, database.TestUserInstitution1.Username, database.TestSeedPassword)
	require.NoError(t, err)
	require.NotEqual(t, first, second, "every token carry its own id")

	store := newStore(t)
	c, rec := newLogoutContext(t, first, true)
	NewLogoutController(store).LogoutHandler(c)
	require.Equal(t, http.StatusOK, rec.Code)

	listed, _ := store.IsBlacklisted(first)
	assert.True(t, listed)
	listed, _ = store.IsBlacklisted(second)
	assert.False(t, listed)
}
