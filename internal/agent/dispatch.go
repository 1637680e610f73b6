package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/platewise/backend/internal/models"
)

// Dispatcher applies validated actions to the store, sequentially and in the
// original order. It halts at the first failing write and does not roll back
// actions already applied; partial application is a visible outcome.
type Dispatcher struct {
	db *gorm.DB
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(db *gorm.DB) *Dispatcher {
	return &Dispatcher{db: db}
}

// Apply runs every action against the store. On failure it returns the
// failing action together with the store error.
func (d *Dispatcher) Apply(ctx context.Context, userID uuid.UUID, actions []Action) (*Action, error) {
	for i := range actions {
		action := &actions[i]

		var err error
		switch action.Type {
		case ActionPlanMeal:
			err = d.planMeal(ctx, userID, action.PlanMeal)
		case ActionAddGrocery:
			err = d.addGrocery(ctx, userID, action.AddGrocery)
		default:
			err = fmt.Errorf("unrecognized action type %q", action.Type)
		}
		if err != nil {
			return action, err
		}
	}
	return nil, nil
}

// planMeal upserts on (user_id, day, meal_slot); a later action in the same
// batch for the same key overwrites an earlier one.
func (d *Dispatcher) planMeal(ctx context.Context, userID uuid.UUID, a *PlanMealAction) error {
	row := models.MealPlanDay{
		UserID:     userID,
		Day:        a.Day,
		MealSlot:   a.MealSlot,
		RecipeName: a.RecipeName,
		Notes:      a.Notes,
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}, {Name: "meal_slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"recipe_name", "notes", "updated_at"}),
	}).Create(&row).Error
}

// addGrocery is an unconditional insert, no dedup.
func (d *Dispatcher) addGrocery(ctx context.Context, userID uuid.UUID, a *AddGroceryAction) error {
	qty := 1.0
	if a.Qty != nil {
		qty = *a.Qty
	}
	unit := a.Unit
	if unit == "" {
		unit = "count"
	}
	category := a.Category
	if category == "" {
		category = "other"
	}

	row := models.GroceryItem{
		UserID:   userID,
		Name:     a.Name,
		Qty:      qty,
		Unit:     unit,
		Category: category,
		Checked:  false,
	}
	return d.db.WithContext(ctx).Create(&row).Error
}
