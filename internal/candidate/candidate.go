// Package candidate narrows a household's recipes and routines down to the
// items eligible for planning or a random pick.
package candidate

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/hearth/internal/model"
)

// RecipeRepository lists a household's recipes together with shared ones.
type RecipeRepository interface {
	FindByHousehold(ctx context.Context, householdID int64, category model.MealType) ([]model.Recipe, error)
}

// RoutineRepository lists a household's routines together with shared ones.
type RoutineRepository interface {
	FindByHousehold(ctx context.Context, householdID int64, category string) ([]model.Routine, error)
}

// RecipeFilter zero values mean "no constraint".
type RecipeFilter struct {
	Category       model.MealType
	DietaryTags    []string
	Match          model.DietaryMatch
	MaxPrepMinutes int
}

// RoutineFilter zero values mean "no constraint".
type RoutineFilter struct {
	Category           string
	EnergyLevel        model.EnergyLevel
	MaxDurationMinutes int
	Difficulty         model.Difficulty
	Tags               []string
	Match              model.DietaryMatch
}

// Pool fetches candidates from the repositories and filters them in process.
type Pool struct {
	recipes  RecipeRepository
	routines RoutineRepository
}

// NewPool returns a Pool over the given repositories.
func NewPool(recipes RecipeRepository, routines RoutineRepository) *Pool {
	return &Pool{recipes: recipes, routines: routines}
}

// Recipes returns the household's eligible recipes, shared ones included.
// No match yields an empty slice, not an error.
func (p *Pool) Recipes(ctx context.Context, householdID int64, f RecipeFilter) ([]model.Recipe, error) {
	all, err := p.recipes.FindByHousehold(ctx, householdID, f.Category)
	if err != nil {
		return nil, fmt.Errorf("fetch recipes: %w", err)
	}
	out := []model.Recipe{}
	for _, r := range all {
		if MatchRecipe(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Routines returns the household's eligible routines, shared ones included.
func (p *Pool) Routines(ctx context.Context, householdID int64, f RoutineFilter) ([]model.Routine, error) {
	all, err := p.routines.FindByHousehold(ctx, householdID, f.Category)
	if err != nil {
		return nil, fmt.Errorf("fetch routines: %w", err)
	}
	out := []model.Routine{}
	for _, r := range all {
		if MatchRoutine(r, f) {
			out = append(out, r)
		}
	}
	return out, nil
}

// MatchRecipe reports whether r satisfies every constraint set in f.
func MatchRecipe(r model.Recipe, f RecipeFilter) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.MaxPrepMinutes > 0 && r.PrepMinutes > f.MaxPrepMinutes {
		return false
	}
	return MatchTags(r.DietaryTags, f.DietaryTags, f.Match)
}

// MatchRoutine reports whether r satisfies every constraint set in f.
func MatchRoutine(r model.Routine, f RoutineFilter) bool {
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.EnergyLevel != "" && r.EnergyLevel != f.EnergyLevel {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if f.MaxDurationMinutes > 0 && r.DurationMinutes > f.MaxDurationMinutes {
		return false
	}
	return MatchTags(r.Tags, f.Tags, f.Match)
}

// MatchTags compares an item's tags with a restriction set, case-insensitively.
// Blank restrictions are ignored, and a set with nothing else matches
// everything. MatchAny (also used when policy is empty) needs one shared tag;
// MatchAll needs every restricted tag present.
func MatchTags(itemTags, restrictions []string, policy model.DietaryMatch) bool {
	if len(restrictions) == 0 {
		return true
	}

	have := make(map[string]struct{}, len(itemTags))
	for _, t := range itemTags {
		have[NormalizeTag(t)] = struct{}{}
	}

	restricted := false
	for _, want := range restrictions {
		want = NormalizeTag(want)
		if want == "" {
			continue
		}
		restricted = true
		_, ok := have[want]
		switch {
		case ok && policy != model.MatchAll:
			return true
		case !ok && policy == model.MatchAll:
			return false
		}
	}
	return !restricted || policy == model.MatchAll
}

// NormalizeTag trims and lowercases a tag for comparison and storage.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
