package auth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"CareerFindr-backend/internal/config"
)

var (
	authLogging bool
	authLogPath = filepath.Join("log", "auth.log")
	authLogMu   sync.Mutex
)

func init() {
	authLogging = config.New().GetBool("LOGGING")
}

// SetAuthLogging turn auth attempt logging on or off
func SetAuthLogging(enabled bool) {
	authLogging = enabled
}

// LogAuthAttempt appends an authentication attempt record to log/auth.log.
// Fields: timestamp (RFC3339) | level | authType | status | identifier? | message?
// level: debug|info|warning|error|fatal
// authType: Local|Google|Logout
// status: Success|Fail
func LogAuthAttempt(level string, authType string, status string, identifier string, message string) {
	if !authLogging {
		return
	}

	authLogMu.Lock()
	defer authLogMu.Unlock()

	// logging failure must not break authentication
	if err := os.MkdirAll(filepath.Dir(authLogPath), 0o750); err != nil {
		return
	}
	f, err := os.OpenFile(authLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	ts := time.Now().UTC().Format(time.RFC3339)
	parts := []string{ts, level, authType, status}
	if identifier != "" {
		parts = append(parts, identifier)
	}
	if message != "" {
		parts = append(parts, message)
	}

	_, _ = f.WriteString(strings.Join(parts, " | ") + "\n")
}
