package auth

import (
	"fmt"
	"net/http"
	"testing"

	"CareerFindr-backend/internal/database"
	"CareerFindr-backend/internal/utilities"
)

// GetAccessToken is a helper function to obtain an access token for a user by simulating a login API call.
func GetAccessToken(
	t *testing.T,
	db *database.DBinstanceStruct,
	username string,
	password string,
) (string, error) {
	t.Helper()
	handler := NewLocalAuthHandler(db)
	rec, resp, err := utilities.SimulateAPICall(handler.LocalLoginHandler, "/login", http.MethodPost, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if rec.Code != http.StatusOK {
		return "", fmt.Errorf("login Failed: status %d, body: %s", rec.Code, rec.Body.String())
	}
	token, ok := resp["access_token"].(string)
	if !ok || token == "" {
		return "", fmt.Errorf("login Failed: no access_token in response: %s", rec.Body.String())
	}
	return token, nil
}
