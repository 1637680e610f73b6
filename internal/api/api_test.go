package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/platewise/backend/internal/ai"
	"github.com/pageza/platewise/backend/internal/database"
	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/service"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func createTestUserAndToken(t *testing.T, db *gorm.DB, auth *service.AuthService) (uuid.UUID, string) {
	token, err := auth.Register("test@example.com", "password123")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	return claims.UserID, token
}

// performForm posts an urlencoded form with the session cookie set.
func performForm(router *gin.Engine, path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// performJSON sends a JSON request with a bearer token.
func performJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// fakeRunner serves both agent entry points with canned output.
type fakeRunner struct {
	out string
	err error

	gotRoute  ai.Route
	gotPrompt string
}

func (f *fakeRunner) RunAgent(ctx context.Context, route ai.Route, prompt string) (string, error) {
	f.gotRoute = route
	f.gotPrompt = prompt
	return f.out, f.err
}

func (f *fakeRunner) RunAgentWithImage(ctx context.Context, route ai.Route, prompt, imageBase64, mimeType string) (string, error) {
	f.gotRoute = route
	f.gotPrompt = prompt
	return f.out, f.err
}
