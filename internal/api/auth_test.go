package api

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/service"
)

func setupAuthHandlerRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	auth := service.NewAuthService(db, "test-secret")

	router := gin.New()
	NewAuthHandler(auth).RegisterRoutes(router)
	return router, db
}

func sessionCookie(w http.ResponseWriter) *http.Cookie {
	for _, c := range (&http.Response{Header: w.Header()}).Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignUpSetsSessionAndRedirects(t *testing.T) {
	router, _ := setupAuthHandlerRouter(t)

	w := performForm(router, "/signup", "", url.Values{
		"email":    {"new@example.com"},
		"password": {"password123"},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/inventory", w.Header().Get("Location"))

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestSignUpMissingFields(t *testing.T) {
	router, _ := setupAuthHandlerRouter(t)

	w := performForm(router, "/signup", "", url.Values{"email": {"new@example.com"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login?message=")
	assert.Nil(t, sessionCookie(w))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	router, _ := setupAuthHandlerRouter(t)

	form := url.Values{"email": {"new@example.com"}, "password": {"password123"}}
	performForm(router, "/signup", "", form)
	w := performForm(router, "/signup", "", form)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "user+already+exists")
}

func TestSignInAndOut(t *testing.T) {
	router, _ := setupAuthHandlerRouter(t)

	performForm(router, "/signup", "", url.Values{
		"email":    {"new@example.com"},
		"password": {"password123"},
	})

	w := performForm(router, "/login", "", url.Values{
		"email":    {"new@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/inventory", w.Header().Get("Location"))
	require.NotNil(t, sessionCookie(w))

	w = performForm(router, "/logout", sessionCookie(w).Value, nil)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "Signed+out.")

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestSignInBadCredentials(t *testing.T) {
	router, _ := setupAuthHandlerRouter(t)

	w := performForm(router, "/login", "", url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "invalid+credentials")
	assert.Nil(t, sessionCookie(w))
}
