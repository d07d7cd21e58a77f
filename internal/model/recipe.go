package model

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
	MealDessert   MealType = "dessert"
	MealBeverage  MealType = "beverage"
)

// SlotOrder is the fixed per-day order of the weekly plan grid.
var SlotOrder = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

var validMealTypes = map[MealType]bool{
	MealBreakfast: true,
	MealLunch:     true,
	MealDinner:    true,
	MealSnack:     true,
	MealDessert:   true,
	MealBeverage:  true,
}

func (m MealType) Valid() bool {
	return validMealTypes[m]
}

// SlotIndex returns the position of m in SlotOrder, or len(SlotOrder) for
// categories that never appear in a plan grid.
func (m MealType) SlotIndex() int {
	for i, s := range SlotOrder {
		if s == m {
			return i
		}
	}
	return len(SlotOrder)
}

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Recipe is owned by a household, or shared with every household when
// HouseholdID is nil.
type Recipe struct {
	ID           int64        `json:"id"`
	HouseholdID  *int64       `json:"household_id"`
	Name         string       `json:"name"`
	Category     MealType     `json:"category"`
	DietaryTags  []string     `json:"dietary_tags"`
	BaseServings int          `json:"base_servings"`
	PrepMinutes  int          `json:"prep_minutes"`
	Ingredients  []Ingredient `json:"ingredients"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
