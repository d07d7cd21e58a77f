package mealplan

import (
	"fmt"
	"slices"
	"time"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/model"
)

const (
	DefaultServings        = 2
	MaxServings            = 20
	DefaultSnackSkipChance = 0.5
)

// ValidationError reports a malformed input field. It is returned before any
// generation or aggregation work starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// PreferencesInput is the caller-supplied, possibly partial, set of
// generation options. Nil fields take their defaults.
type PreferencesInput struct {
	DietaryRestrictions []string           `json:"dietary_restrictions"`
	DietaryMatch        *model.DietaryMatch `json:"dietary_match"`
	MealTypes           []model.MealType   `json:"meal_types"`
	Servings            *int               `json:"servings"`
	SnackSkipChance     *float64           `json:"snack_skip_chance"`
	MaxPrepMinutes      *int               `json:"max_prep_minutes"`
}

// ResolvePreferences validates in and fills every unset field.
// defaultMatch applies when in carries no dietary policy.
func ResolvePreferences(in PreferencesInput, defaultMatch model.DietaryMatch) (model.Preferences, error) {
	p := model.Preferences{
		DietaryRestrictions: []string{},
		DietaryMatch:        defaultMatch,
		MealTypes:           slices.Clone(model.SlotOrder),
		Servings:            DefaultServings,
		SnackSkipChance:     DefaultSnackSkipChance,
	}
	if p.DietaryMatch == "" {
		p.DietaryMatch = model.MatchAny
	}

	for _, tag := range in.DietaryRestrictions {
		tag = candidate.NormalizeTag(tag)
		if tag != "" && !slices.Contains(p.DietaryRestrictions, tag) {
			p.DietaryRestrictions = append(p.DietaryRestrictions, tag)
		}
	}

	if in.DietaryMatch != nil {
		if !in.DietaryMatch.Valid() {
			return p, &ValidationError{Field: "dietary_match", Message: fmt.Sprintf("must be %q or %q", model.MatchAny, model.MatchAll)}
		}
		p.DietaryMatch = *in.DietaryMatch
	}

	if len(in.MealTypes) > 0 {
		enabled := make(map[model.MealType]bool, len(in.MealTypes))
		for _, mt := range in.MealTypes {
			if mt.SlotIndex() == len(model.SlotOrder) {
				return p, &ValidationError{Field: "meal_types", Message: fmt.Sprintf("%q is not a plannable meal type", mt)}
			}
			enabled[mt] = true
		}
		p.MealTypes = p.MealTypes[:0]
		for _, mt := range model.SlotOrder {
			if enabled[mt] {
				p.MealTypes = append(p.MealTypes, mt)
			}
		}
	}

	if in.Servings != nil {
		if *in.Servings < 1 || *in.Servings > MaxServings {
			return p, &ValidationError{Field: "servings", Message: fmt.Sprintf("must be between 1 and %d", MaxServings)}
		}
		p.Servings = *in.Servings
	}

	if in.SnackSkipChance != nil {
		if *in.SnackSkipChance < 0 || *in.SnackSkipChance > 1 {
			return p, &ValidationError{Field: "snack_skip_chance", Message: "must be between 0 and 1"}
		}
		p.SnackSkipChance = *in.SnackSkipChance
	}

	if in.MaxPrepMinutes != nil {
		if *in.MaxPrepMinutes < 0 {
			return p, &ValidationError{Field: "max_prep_minutes", Message: "must not be negative"}
		}
		p.MaxPrepMinutes = *in.MaxPrepMinutes
	}

	return p, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(field, value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return d, nil
}
