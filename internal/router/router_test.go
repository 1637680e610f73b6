package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/platewise/backend/config"
	"github.com/pageza/platewise/backend/internal/agent"
	"github.com/pageza/platewise/backend/internal/ai"
	"github.com/pageza/platewise/backend/internal/api"
	"github.com/pageza/platewise/backend/internal/database"
	"github.com/pageza/platewise/backend/internal/service"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))

	cfg := &config.Config{DBHost: "localhost"}
	aiClient := ai.NewClient()
	auth := service.NewAuthService(db, "test-secret")
	ingest := service.NewIngestService(db, aiClient, nil)

	return SetupRouter(
		api.NewAuthHandler(auth),
		api.NewGroceryHandler(db),
		api.NewInventoryHandler(db),
		api.NewPlanHandler(db),
		api.NewSettingsHandler(db),
		api.NewAgentHandler(db, aiClient, ingest, agent.NewDispatcher(db), cfg, nil),
		auth,
		nil,
	)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestJSONRoutesRequireAuth(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{
		"/api/v1/grocery",
		"/api/v1/inventory",
		"/api/v1/plan",
		"/api/v1/settings",
		"/api/diag",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "path %s", path)
	}
}

func TestFormRoutesRedirectToLogin(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{
		"/grocery/add",
		"/inventory/add",
		"/plan/add",
		"/settings",
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code, "path %s", path)
		assert.Contains(t, w.Header().Get("Location"), "/login", "path %s", path)
	}
}
