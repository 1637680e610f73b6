package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/platewise/backend/config"
	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/service"
)

// AuthHandler handles the sign-in/up/out form flows
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes registers the auth routes
func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/signup", h.SignUp)
	router.POST("/login", h.SignIn)
	router.POST("/logout", h.SignOut)
}

// SignIn handles the login form post
func (h *AuthHandler) SignIn(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	token, err := h.auth.Login(email, password)
	if err != nil {
		redirectWithMessage(c, "/login", err.Error())
		return
	}

	setSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/inventory")
}

// SignUp handles the account creation form post
func (h *AuthHandler) SignUp(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if email == "" || password == "" {
		redirectWithMessage(c, "/login", "Email and password are required.")
		return
	}

	token, err := h.auth.Register(email, password)
	if err != nil {
		redirectWithMessage(c, "/login", err.Error())
		return
	}

	setSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/inventory")
}

// SignOut clears the session cookie
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	redirectWithMessage(c, "/login", "Signed out.")
}

func setSessionCookie(c *gin.Context, token string) {
	// 24h, matching token expiry
	c.SetCookie(middleware.SessionCookie, token, 86400, "/", "", config.IsProduction(), true)
}

// redirectWithMessage sends the browser back to a page with a human-readable
// message query parameter.
func redirectWithMessage(c *gin.Context, path, message string) {
	c.Redirect(http.StatusSeeOther, path+"?message="+url.QueryEscape(message))
}
