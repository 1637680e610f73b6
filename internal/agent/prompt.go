package agent

import (
	"encoding/json"
	"fmt"

	"github.com/pageza/platewise/backend/internal/models"
)

// replanRules is the fixed instruction block prepended to every replan call.
const replanRules = `Return ONLY valid JSON:
{
  "assistant_message": string,
  "actions": [
    {"type":"plan_meal","day":"YYYY-MM-DD","meal_slot":"breakfast"|"lunch"|"dinner","recipe_name":string,"notes"?:string}
    | {"type":"add_grocery","name":string,"qty"?:number,"unit"?:string,"category"?:string}
  ]
}

Rules:
- If user says "tomorrow", infer from Today.
- Use Preferences to avoid dislikes.
- Keep actions minimal and practical.
- If unclear, return zero actions and ask a clarifying question in assistant_message.`

// PantryPrompt is the fixed instruction for pantry photo extraction.
const PantryPrompt = `Return ONLY valid JSON with this shape:
{
  "assistant_message": string,
  "items": [
    { "name": string, "qty"?: number, "unit"?: string, "location"?: "fridge"|"freezer"|"pantry", "notes"?: string, "confidence"?: number }
  ]
}

Goal: Extract a pantry/inventory list from the photo.
- If unsure about an item, include it with low confidence.
- Prefer common names (e.g., "chicken breast", "broccoli florets", "penne pasta").`

// Context row shapes mirror the columns the replan prompt exposes to the
// model; anything else stays out of the prompt.
type inventoryRow struct {
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Unit     string  `json:"unit"`
	Location string  `json:"location"`
}

type planRow struct {
	Day        string `json:"day"`
	MealSlot   string `json:"meal_slot"`
	RecipeName string `json:"recipe_name"`
	Notes      string `json:"notes,omitempty"`
}

type groceryRow struct {
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	Checked  bool    `json:"checked"`
}

// BuildReplanPrompt assembles the full replan prompt: rules, Today, the user
// prompt and the read-only context rows as JSON blocks.
func BuildReplanPrompt(today, userPrompt string, prefs *models.UserPreferences, inventory []models.InventoryItem, plan []models.MealPlanDay, groceries []models.GroceryItem) string {
	invRows := make([]inventoryRow, 0, len(inventory))
	for _, item := range inventory {
		invRows = append(invRows, inventoryRow{Name: item.Name, Qty: item.Qty, Unit: item.Unit, Location: item.Location})
	}

	planRows := make([]planRow, 0, len(plan))
	for _, day := range plan {
		planRows = append(planRows, planRow{Day: day.Day, MealSlot: day.MealSlot, RecipeName: day.RecipeName, Notes: day.Notes})
	}

	groceryRows := make([]groceryRow, 0, len(groceries))
	for _, item := range groceries {
		groceryRows = append(groceryRows, groceryRow{Name: item.Name, Qty: item.Qty, Unit: item.Unit, Category: item.Category, Checked: item.Checked})
	}

	prefsJSON := "{}"
	if prefs != nil {
		prefsJSON = marshalBlock(prefs)
	}

	context := fmt.Sprintf(`Today: %s

User prompt:
%s

Preferences:
%s

Inventory (up to 100):
%s

Existing meal plan (up to 100):
%s

Existing grocery list (up to 100):
%s`,
		today,
		userPrompt,
		prefsJSON,
		marshalBlock(invRows),
		marshalBlock(planRows),
		marshalBlock(groceryRows),
	)

	return replanRules + "\n\n" + context
}

func marshalBlock(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
