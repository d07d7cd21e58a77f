package model

import "time"

type DietaryMatch string

const (
	// MatchAny accepts an item sharing at least one tag with the restriction set.
	MatchAny DietaryMatch = "any"
	// MatchAll accepts an item only when it carries every restricted tag.
	MatchAll DietaryMatch = "all"
)

func (m DietaryMatch) Valid() bool {
	return m == MatchAny || m == MatchAll
}

// Preferences is the fully resolved set of generation options stored with a plan.
type Preferences struct {
	DietaryRestrictions []string     `json:"dietary_restrictions"`
	DietaryMatch        DietaryMatch `json:"dietary_match"`
	MealTypes           []MealType   `json:"meal_types"`
	Servings            int          `json:"servings"`
	SnackSkipChance     float64      `json:"snack_skip_chance"`
	MaxPrepMinutes      int          `json:"max_prep_minutes"`
}

type MealPlanItem struct {
	Date       time.Time `json:"date"`
	MealType   MealType  `json:"meal_type"`
	RecipeID   int64     `json:"recipe_id"`
	RecipeName string    `json:"recipe_name"`
	Servings   int       `json:"servings"`
	Notes      string    `json:"notes"`
}

type MealPlan struct {
	ID          int64          `json:"id"`
	HouseholdID int64          `json:"household_id"`
	WeekStart   time.Time      `json:"week_start"`
	WeekEnd     time.Time      `json:"week_end"`
	IsActive    bool           `json:"is_active"`
	Items       []MealPlanItem `json:"items"`
	Preferences Preferences    `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
}
