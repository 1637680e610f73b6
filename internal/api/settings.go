package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/models"
)

// SettingsHandler handles user preferences
type SettingsHandler struct {
	db *gorm.DB
}

// NewSettingsHandler creates a new SettingsHandler instance
func NewSettingsHandler(db *gorm.DB) *SettingsHandler {
	return &SettingsHandler{db: db}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(router *gin.Engine, validator middleware.TokenValidator) {
	router.POST("/settings", middleware.RequireUser(validator), h.Save)
	router.GET("/api/v1/settings", middleware.AuthMiddleware(validator), h.Get)
}

// parseList splits a comma-separated form value into trimmed entries.
func parseList(raw string) models.JSONStringArray {
	parts := strings.Split(raw, ",")
	out := make(models.JSONStringArray, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Save upserts the single preferences row keyed by user_id
func (h *SettingsHandler) Save(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	prefs := models.UserPreferences{
		UserID:              userID,
		DislikedIngredients: parseList(c.PostForm("disliked")),
		AvoidNuts:           parseList(c.PostForm("avoid_nuts")),
		PreferredProteins:   parseList(c.PostForm("preferred_proteins")),
		Notes:               strings.TrimSpace(c.PostForm("notes")),
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"disliked_ingredients", "avoid_nuts", "preferred_proteins", "notes", "updated_at",
		}),
	}).Create(&prefs).Error; err != nil {
		redirectWithMessage(c, "/settings", err.Error())
		return
	}

	redirectWithMessage(c, "/settings", "Preferences saved.")
}

// Get returns the caller's preferences row, or an empty object when unset
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var prefs models.UserPreferences
	err := h.db.Where("user_id = ?", userID).First(&prefs).Error
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusOK, gin.H{"preferences": nil})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}
