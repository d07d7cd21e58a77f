package model

import "time"

type GroceryContribution struct {
	RecipeName string    `json:"recipe_name"`
	Quantity   float64   `json:"quantity"`
	MealType   MealType  `json:"meal_type"`
	Date       time.Time `json:"date"`
}

// GroceryItem is one merged shopping-list line. It is derived from a meal plan
// on every read and never stored.
type GroceryItem struct {
	Key           string                `json:"key"`
	Name          string                `json:"name"`
	Unit          string                `json:"unit"`
	TotalQuantity float64               `json:"total_quantity"`
	Category      string                `json:"category"`
	Contributions []GroceryContribution `json:"contributions"`
}
