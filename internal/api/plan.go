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

// PlanHandler handles the weekly meal plan
type PlanHandler struct {
	db *gorm.DB
}

// NewPlanHandler creates a new PlanHandler instance
func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

// RegisterRoutes registers the plan routes
func (h *PlanHandler) RegisterRoutes(router *gin.Engine, validator middleware.TokenValidator) {
	forms := router.Group("/plan", middleware.RequireUser(validator))
	{
		forms.POST("/add", h.Add)
	}
	router.GET("/api/v1/plan", middleware.AuthMiddleware(validator), h.List)
}

// Add upserts one planned meal on (user_id, day, meal_slot)
func (h *PlanHandler) Add(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	day := strings.TrimSpace(c.PostForm("day"))
	mealSlot := strings.TrimSpace(c.PostForm("meal_slot"))
	recipeName := strings.TrimSpace(c.PostForm("recipe_name"))
	notes := strings.TrimSpace(c.PostForm("notes"))

	if day == "" || mealSlot == "" || recipeName == "" {
		redirectWithMessage(c, "/plan", "Missing day, meal slot, or recipe name.")
		return
	}

	row := models.MealPlanDay{
		UserID:     userID,
		Day:        day,
		MealSlot:   mealSlot,
		RecipeName: recipeName,
		Notes:      notes,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "meal_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"recipe_name", "notes", "updated_at"}),
	}).Create(&row).Error; err != nil {
		redirectWithMessage(c, "/plan", err.Error())
		return
	}

	redirectWithMessage(c, "/plan", "Meal planned.")
}

// List returns the caller's plan ordered by day
func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var days []models.MealPlanDay
	if err := h.db.Where("user_id = ?", userID).
		Order("day asc").
		Find(&days).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}
