package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/pageza/platewise/backend/internal/models"
)

// ParseError means the model output was not JSON at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "model output is not valid JSON: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError names the field of the model output that violated the
// schema. Missing required fields are a hard failure; extra fields are
// ignored.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Action types recognized in replan output.
const (
	ActionPlanMeal   = "plan_meal"
	ActionAddGrocery = "add_grocery"
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// PlanMealAction upserts one recipe into a (day, meal_slot) cell.
type PlanMealAction struct {
	Day        string `json:"day"`
	MealSlot   string `json:"meal_slot"`
	RecipeName string `json:"recipe_name"`
	Notes      string `json:"notes,omitempty"`
}

func (a *PlanMealAction) validate(path string) error {
	if !dayPattern.MatchString(a.Day) {
		return &ValidationError{Field: path + ".day", Reason: "must match YYYY-MM-DD"}
	}
	switch a.MealSlot {
	case models.MealSlotBreakfast, models.MealSlotLunch, models.MealSlotDinner:
	default:
		return &ValidationError{Field: path + ".meal_slot", Reason: "must be breakfast, lunch or dinner"}
	}
	if a.RecipeName == "" {
		return &ValidationError{Field: path + ".recipe_name", Reason: "must not be empty"}
	}
	return nil
}

// AddGroceryAction inserts one grocery list row. Qty is a pointer so an
// absent value can be distinguished from zero and defaulted at dispatch.
type AddGroceryAction struct {
	Name     string   `json:"name"`
	Qty      *float64 `json:"qty,omitempty"`
	Unit     string   `json:"unit,omitempty"`
	Category string   `json:"category,omitempty"`
}

func (a *AddGroceryAction) validate(path string) error {
	if a.Name == "" {
		return &ValidationError{Field: path + ".name", Reason: "must not be empty"}
	}
	return nil
}

// Action is the tagged union over the recognized action kinds. Exactly one
// of the variant pointers is set, matching Type.
type Action struct {
	Type       string
	PlanMeal   *PlanMealAction
	AddGrocery *AddGroceryAction
}

// MarshalJSON flattens the active variant back into the wire shape.
func (a Action) MarshalJSON() ([]byte, error) {
	switch a.Type {
	case ActionPlanMeal:
		return json.Marshal(struct {
			Type string `json:"type"`
			*PlanMealAction
		}{Type: a.Type, PlanMealAction: a.PlanMeal})
	case ActionAddGrocery:
		return json.Marshal(struct {
			Type string `json:"type"`
			*AddGroceryAction
		}{Type: a.Type, AddGroceryAction: a.AddGrocery})
	default:
		return nil, fmt.Errorf("unrecognized action type %q", a.Type)
	}
}

// parseAction decodes and validates one element of the actions array.
func parseAction(raw json.RawMessage, path string) (Action, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return Action{}, &ValidationError{Field: path, Reason: "must be an object"}
	}
	if head.Type == nil {
		return Action{}, &ValidationError{Field: path + ".type", Reason: "required"}
	}

	switch *head.Type {
	case ActionPlanMeal:
		var v PlanMealAction
		if err := json.Unmarshal(raw, &v); err != nil {
			return Action{}, fieldError(err, path)
		}
		if err := v.validate(path); err != nil {
			return Action{}, err
		}
		return Action{Type: ActionPlanMeal, PlanMeal: &v}, nil
	case ActionAddGrocery:
		var v AddGroceryAction
		if err := json.Unmarshal(raw, &v); err != nil {
			return Action{}, fieldError(err, path)
		}
		if err := v.validate(path); err != nil {
			return Action{}, err
		}
		return Action{Type: ActionAddGrocery, AddGrocery: &v}, nil
	default:
		return Action{}, &ValidationError{Field: path + ".type", Reason: fmt.Sprintf("unrecognized action type %q", *head.Type)}
	}
}

// fieldError converts a json type mismatch into a ValidationError that names
// the offending field.
func fieldError(err error, path string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ValidationError{Field: path + "." + typeErr.Field, Reason: "must be of type " + typeErr.Type.String()}
	}
	return &ValidationError{Field: path, Reason: err.Error()}
}

// AgentOutput is the validated shape of a replan model response.
type AgentOutput struct {
	AssistantMessage string   `json:"assistant_message"`
	Actions          []Action `json:"actions"`
}

// ParseAgentOutput parses raw model text against the replan schema.
func ParseAgentOutput(raw string) (*AgentOutput, error) {
	var aux struct {
		AssistantMessage *string           `json:"assistant_message"`
		Actions          []json.RawMessage `json:"actions"`
	}
	if err := json.Unmarshal([]byte(raw), &aux); err != nil {
		return nil, &ParseError{Err: err}
	}
	if aux.AssistantMessage == nil {
		return nil, &ValidationError{Field: "assistant_message", Reason: "required"}
	}
	if aux.Actions == nil {
		return nil, &ValidationError{Field: "actions", Reason: "required"}
	}

	out := &AgentOutput{
		AssistantMessage: *aux.AssistantMessage,
		Actions:          make([]Action, 0, len(aux.Actions)),
	}
	for i, rawAction := range aux.Actions {
		action, err := parseAction(rawAction, fmt.Sprintf("actions[%d]", i))
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, action)
	}
	return out, nil
}

// PantryItem is one extracted item from a pantry photo.
type PantryItem struct {
	Name       string   `json:"name"`
	Qty        *float64 `json:"qty,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Location   string   `json:"location,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

func (p *PantryItem) validate(path string) error {
	if p.Name == "" {
		return &ValidationError{Field: path + ".name", Reason: "must not be empty"}
	}
	switch p.Location {
	case "", models.LocationFridge, models.LocationFreezer, models.LocationPantry:
	default:
		return &ValidationError{Field: path + ".location", Reason: "must be fridge, freezer or pantry"}
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
		return &ValidationError{Field: path + ".confidence", Reason: "must be between 0 and 1"}
	}
	return nil
}

// PantryExtract is the validated shape of a pantry extraction response.
type PantryExtract struct {
	AssistantMessage string       `json:"assistant_message"`
	Items            []PantryItem `json:"items"`
}

// ParsePantryExtract parses raw model text against the pantry schema.
func ParsePantryExtract(raw string) (*PantryExtract, error) {
	var aux struct {
		AssistantMessage *string           `json:"assistant_message"`
		Items            []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &aux); err != nil {
		return nil, &ParseError{Err: err}
	}
	if aux.AssistantMessage == nil {
		return nil, &ValidationError{Field: "assistant_message", Reason: "required"}
	}
	if aux.Items == nil {
		return nil, &ValidationError{Field: "items", Reason: "required"}
	}

	out := &PantryExtract{
		AssistantMessage: *aux.AssistantMessage,
		Items:            make([]PantryItem, 0, len(aux.Items)),
	}
	for i, rawItem := range aux.Items {
		path := fmt.Sprintf("items[%d]", i)
		var item PantryItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			return nil, fieldError(err, path)
		}
		if err := item.validate(path); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
