package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"imhub/internal/auth"
	"imhub/internal/config"
	"imhub/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret           = "server-test-secret-0123456789abcdef"
	testFallbackUser     = "admin"
	testFallbackPassword = "fallback-Passw0rd!"
)

// newTestServer wires a Server over an in-memory SQLite store without Redis.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.RunMigrations(context.Background(), db))

	dir := t.TempDir()
	cfg := &config.Config{
		Env:                        "test",
		Port:                       "0",
		JWTSecret:                  testSecret,
		TokenTTLHours:              24,
		BcryptCost:                 bcrypt.MinCost,
		AdminUsername:              testFallbackUser,
		AdminPassword:              testFallbackPassword,
		AdminFallbackEnabled:       true,
		ContentPath:                filepath.Join(dir, "content.yaml"),
		FilesDir:                   filepath.Join(dir, "files"),
		UpstreamFeedURL:            "http://127.0.0.1:1/feed",
		UpstreamFeedTimeoutSeconds: 1,
		PublicBaseURL:              "http://hub.test",
		AllowedOrigins:             "http://localhost:5173",
	}

	s, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	return s, s.NewApp()
}

// tokenFor issues a bearer token without going through the login route.
func tokenFor(t *testing.T, s *Server, username string, admin bool) string {
	t.Helper()
	token, _, err := s.issuer.Issue(auth.Identity{Username: username, IsAdmin: admin})
	require.NoError(t, err)
	return token
}

// doRequest sends a JSON request and returns the status and raw body.
func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func idsOf(rows []map[string]any) []float64 {
	ids := make([]float64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r["id"].(float64))
	}
	return ids
}


func newRawRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// newForeignToken signs a token with a different key.
func newForeignToken() (string, auth.Identity, error) {
	return auth.NewIssuer("some-other-secret-0123456789abcdef", time.Hour).
		Issue(auth.Identity{Username: "intruder", IsAdmin: true})
}
