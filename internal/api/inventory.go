package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/models"
)

// InventoryHandler handles pantry/inventory CRUD
type InventoryHandler struct {
	db *gorm.DB
}

// NewInventoryHandler creates a new InventoryHandler instance
func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

// RegisterRoutes registers the inventory routes
func (h *InventoryHandler) RegisterRoutes(router *gin.Engine, validator middleware.TokenValidator) {
	forms := router.Group("/inventory", middleware.RequireUser(validator))
	{
		forms.POST("/add", h.Add)
		forms.POST("/delete", h.Delete)
	}
	router.GET("/api/v1/inventory", middleware.AuthMiddleware(validator), h.List)
}

// Add inserts an inventory item from the form post
func (h *InventoryHandler) Add(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		redirectWithMessage(c, "/inventory", "Missing item name.")
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

	item := models.InventoryItem{
		UserID:   userID,
		Name:     name,
		Qty:      qty,
		Unit:     unit,
		Location: strings.TrimSpace(c.PostForm("location")),
		Category: strings.TrimSpace(c.PostForm("category")),
	}

	if expiry := strings.TrimSpace(c.PostForm("expiry_date")); expiry != "" {
		parsed, err := time.Parse("2006-01-02", expiry)
		if err != nil {
			redirectWithMessage(c, "/inventory", "Invalid expiry date.")
			return
		}
		item.ExpiryDate = &parsed
	}

	if err := h.db.Create(&item).Error; err != nil {
		redirectWithMessage(c, "/inventory", "Failed to add item")
		return
	}

	redirectWithMessage(c, "/inventory", "Item added successfully")
}

// Delete removes an inventory item, scoped to the caller
func (h *InventoryHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		redirectWithMessage(c, "/login", "Please sign in.")
		return
	}

	id := strings.TrimSpace(c.PostForm("id"))
	if id == "" {
		redirectWithMessage(c, "/inventory", "Missing item id.")
		return
	}

	if err := h.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.InventoryItem{}).Error; err != nil {
		redirectWithMessage(c, "/inventory", err.Error())
		return
	}

	redirectWithMessage(c, "/inventory", "Item removed.")
}

// List returns the caller's inventory, newest first
func (h *InventoryHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	var items []models.InventoryItem
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
