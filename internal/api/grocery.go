package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/models"
)

// GroceryHandler handles grocery list CRUD
type GroceryHandler struct {
	db *gorm.DB
}

// NewGroceryHandler creates a new GroceryHandler instance
func NewGroceryHandler(db *gorm.DB) *GroceryHandler {
	return &GroceryHandler{db: db}
}

// RegisterRoutes registers the grocery routes. Form posts redirect with a
// message; the JSON list backs the page.
func (h *GroceryHandler) RegisterRoutes(router *gin.Engine, validator middleware.TokenValidator) {
	forms := router.Group("/grocery", middleware.RequireUser(validator))
	{
		forms.POST("/add", h.Add)
		forms.POST("/toggle", h.Toggle)
		forms.POST("/delete", h.Delete)
	}
	router.GET("/api/v1/grocery", middleware.AuthMiddleware(validator), h.List)
}

// Add inserts a grocery item from the form post
func (h *GroceryHandler) Add(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		redirectWithMessage(c, "/grocery", "Missing item name.")
		return
	}

	qty := 1.0
	if qtyStr := strings.TrimSpace(c.PostForm("qty")); qtyStr != "" {
		if parsed, err := strconv.ParseFloat(qtyStr, 64); err == nil {
			qty = parsed
		}
	}
	unit := strings.TrimSpace(c.PostForm("unit"))
	if unit == "" {
		unit = "count"
	}
	category := strings.TrimSpace(c.PostForm("category"))
	if category == "" {
		category = "other"
	}

	item := models.GroceryItem{
		UserID:   userID,
		Name:     name,
		Qty:      qty,
		Unit:     unit,
		Category: category,
		Checked:  false,
	}
	if err := h.db.Create(&item).Error; err != nil {
		redirectWithMessage(c, "/grocery", err.Error())
		return
	}

	redirectWithMessage(c, "/grocery", "Item added.")
}

// Toggle sets the checked flag on an item, scoped to the caller
func (h *GroceryHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	id := strings.TrimSpace(c.PostForm("id"))
	if id == "" {
		redirectWithMessage(c, "/grocery", "Missing item id.")
		return
	}
	checked := c.PostForm("checked") == "true"

	if err := h.db.Model(&models.GroceryItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("checked", checked).Error; err != nil {
		redirectWithMessage(c, "/grocery", err.Error())
		return
	}

	c.Redirect(http.StatusSeeOther, "/grocery")
}

// Delete removes an item, scoped to the caller
func (h *GroceryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	id := strings.TrimSpace(c.PostForm("id"))
	if id == "" {
		redirectWithMessage(c, "/grocery", "Missing item id.")
		return
	}

	if err := h.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.GroceryItem{}).Error; err != nil {
		redirectWithMessage(c, "/grocery", err.Error())
		return
	}

	redirectWithMessage(c, "/grocery", "Item removed.")
}

// List returns the caller's grocery list, newest first
func (h *GroceryHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var items []models.GroceryItem
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
