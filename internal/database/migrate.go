package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/platewise/backend/internal/models"
)

// RunMigrations brings the schema up to date for every persisted entity.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.GroceryItem{},
		&models.InventoryItem{},
		&models.MealPlanDay{},
		&models.UserPreferences{},
		&models.AgentRun{},
		&models.ImageIngest{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
