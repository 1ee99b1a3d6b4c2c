package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

// MockOAuth2Server imitate google token and userinfo endpoints
type MockOAuth2Server struct {
	*httptest.Server
	Config           *oauth2.Config
	MockInfoEndpoint string

	mu        sync.Mutex
	users     map[string]GoogleUserInfo
	codes     map[string]string
	tokens    map[string]string
	exchanged map[string]bool
}

// NewMockOAuth2Server start server that know given users
func NewMockOAuth2Server(users []GoogleUserInfo) *MockOAuth2Server {
	m := &MockOAuth2Server{
		users:     map[string]GoogleUserInfo{},
		codes:     map[string]string{},
		tokens:    map[string]string{},
		exchanged: map[string]bool{},
	}
	for _, u := range users {
		m.users[u.GID] = u
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", m.handleToken)
	mux.HandleFunc("/userinfo", m.handleUserInfo)
	m.Server = httptest.NewServer(mux)

	m.Config = &oauth2.Config{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Endpoint: oauth2.Endpoint{
			AuthURL:   m.URL + "/auth",
			TokenURL:  m.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: "http://localhost/callback",
	}
	m.MockInfoEndpoint = m.URL + "/userinfo"
	return m
}

// GetAuthCode issue authorization code for user
func (m *MockOAuth2Server) GetAuthCode(gid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[gid]; !ok {
		return "", fmt.Errorf("unknown user %s", gid)
	}
	code := fmt.Sprintf("code-%s-%d", gid, len(m.codes))
	m.codes[code] = gid
	return code, nil
}

// IsUserTokenExchanged report whether code of user was exchanged for token
func (m *MockOAuth2Server) IsUserTokenExchanged(gid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchanged[gid]
}

func (m *MockOAuth2Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	gid, ok := m.codes[r.FormValue("code")]
	if ok {
		delete(m.codes, r.FormValue("code"))
		m.exchanged[gid] = true
	}
	token := "token-" + gid
	m.tokens[token] = gid
	m.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (m *MockOAuth2Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	m.mu.Lock()
	gid, ok := m.tokens[token]
	user := m.users[gid]
	m.mu.Unlock()

	if !ok {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}
