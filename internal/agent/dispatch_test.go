package agent

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/platewise/backend/internal/database"
	"github.com/pageza/platewise/backend/internal/models"
)

func setupDispatchDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func floatPtr(v float64) *float64 { return &v }

func TestApplyAddGroceryDefaults(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	userID := uuid.New()

	failed, err := d.Apply(context.Background(), userID, []Action{
		{Type: ActionAddGrocery, AddGrocery: &AddGroceryAction{Name: "milk"}},
	})
	require.NoError(t, err)
	assert.Nil(t, failed)

	var item models.GroceryItem
	require.NoError(t, db.Where("user_id = ?", userID).First(&item).Error)
	assert.Equal(t, "milk", item.Name)
	assert.Equal(t, 1.0, item.Qty)
	assert.Equal(t, "count", item.Unit)
	assert.Equal(t, "other", item.Category)
	assert.False(t, item.Checked)
}

func TestApplyAddGroceryNoDedup(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	userID := uuid.New()

	_, err := d.Apply(context.Background(), userID, []Action{
		{Type: ActionAddGrocery, AddGrocery: &AddGroceryAction{Name: "eggs", Qty: floatPtr(12)}},
		{Type: ActionAddGrocery, AddGrocery: &AddGroceryAction{Name: "eggs", Qty: floatPtr(12)}},
	})
	require.NoError(t, err)

	var count int64
	db.Model(&models.GroceryItem{}).Where("user_id = ?", userID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestApplyPlanMealUpsert(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	userID := uuid.New()

	_, err := d.Apply(context.Background(), userID, []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-11", MealSlot: "dinner", RecipeName: "Tacos"}},
	})
	require.NoError(t, err)

	// Same key again replaces the recipe instead of adding a row
	_, err = d.Apply(context.Background(), userID, []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-11", MealSlot: "dinner", RecipeName: "Stir fry", Notes: "use the broccoli"}},
	})
	require.NoError(t, err)

	var rows []models.MealPlanDay
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Stir fry", rows[0].RecipeName)
	assert.Equal(t, "use the broccoli", rows[0].Notes)
}

func TestApplyPlanMealLastWriteWinsWithinBatch(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	userID := uuid.New()

	_, err := d.Apply(context.Background(), userID, []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-12", MealSlot: "lunch", RecipeName: "Salad"}},
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-12", MealSlot: "lunch", RecipeName: "Soup"}},
	})
	require.NoError(t, err)

	var row models.MealPlanDay
	require.NoError(t, db.Where("user_id = ? AND day = ? AND meal_slot = ?", userID, "2025-06-12", "lunch").First(&row).Error)
	assert.Equal(t, "Soup", row.RecipeName)
}

func TestApplyScopedPerUser(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	alice := uuid.New()
	bob := uuid.New()

	_, err := d.Apply(context.Background(), alice, []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-11", MealSlot: "dinner", RecipeName: "Tacos"}},
	})
	require.NoError(t, err)
	_, err = d.Apply(context.Background(), bob, []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-11", MealSlot: "dinner", RecipeName: "Curry"}},
	})
	require.NoError(t, err)

	var rows []models.MealPlanDay
	require.NoError(t, db.Find(&rows).Error)
	assert.Len(t, rows, 2)
}

func TestApplyHaltsOnFirstFailure(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)
	userID := uuid.New()

	// Make every grocery write fail
	require.NoError(t, db.Migrator().DropTable(&models.GroceryItem{}))

	actions := []Action{
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-11", MealSlot: "dinner", RecipeName: "Tacos"}},
		{Type: ActionAddGrocery, AddGrocery: &AddGroceryAction{Name: "salsa"}},
		{Type: ActionPlanMeal, PlanMeal: &PlanMealAction{Day: "2025-06-12", MealSlot: "dinner", RecipeName: "Curry"}},
	}

	failed, err := d.Apply(context.Background(), userID, actions)
	require.Error(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, ActionAddGrocery, failed.Type)
	assert.Equal(t, "salsa", failed.AddGrocery.Name)

	// The first action was applied and stays applied; the third never ran
	var rows []models.MealPlanDay
	require.NoError(t, db.Where("user_id = ?", userID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tacos", rows[0].RecipeName)
}

func TestApplyUnrecognizedType(t *testing.T) {
	db := setupDispatchDB(t)
	d := NewDispatcher(db)

	failed, err := d.Apply(context.Background(), uuid.New(), []Action{
		{Type: "remove_meal"},
	})
	require.Error(t, err)
	require.NotNil(t, failed)
	assert.Equal(t, "remove_meal", failed.Type)
}
