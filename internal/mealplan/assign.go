package mealplan

import (
	"time"

	"github.com/dukerupert/hearth/internal/lottery"
	"github.com/dukerupert/hearth/internal/model"
)

const DaysPerWeek = 7

// Assign fills the weekly grid one slot at a time, day-major and in
// model.SlotOrder within a day. Each slot draws one recipe whose category
// equals the slot's meal type; a slot with no such recipe stays empty.
// Snack slots are skipped with probability prefs.SnackSkipChance. Recipes may
// repeat across the week.
func Assign(src lottery.Source, pool []model.Recipe, weekStart time.Time, prefs model.Preferences) []model.MealPlanItem {
	byType := make(map[model.MealType][]model.Recipe)
	for _, r := range pool {
		byType[r.Category] = append(byType[r.Category], r)
	}

	enabled := make(map[model.MealType]bool, len(prefs.MealTypes))
	for _, mt := range prefs.MealTypes {
		enabled[mt] = true
	}

	items := []model.MealPlanItem{}
	for day := range DaysPerWeek {
		date := weekStart.AddDate(0, 0, day)
		for _, mt := range model.SlotOrder {
			if !enabled[mt] {
				continue
			}
			if mt == model.MealSnack && lottery.Coin(src, prefs.SnackSkipChance) {
				continue
			}
			r, ok := lottery.Pick(src, byType[mt])
			if !ok {
				continue
			}
			items = append(items, model.MealPlanItem{
				Date:       date,
				MealType:   mt,
				RecipeID:   r.ID,
				RecipeName: r.Name,
				Servings:   prefs.Servings,
			})
		}
	}
	return items
}
