// Package grocery turns a meal plan into a merged shopping list.
package grocery

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/dukerupert/hearth/internal/model"
	"golang.org/x/sync/errgroup"
)

// Key identifies one shopping-list line. Ingredients merge only when both the
// normalized name and unit match; units are never converted.
type Key struct {
	Name string
	Unit string
}

func NewKey(name, unit string) Key {
	return Key{
		Name: strings.ToLower(strings.TrimSpace(name)),
		Unit: strings.ToLower(strings.TrimSpace(unit)),
	}
}

func (k Key) String() string {
	return k.Name + "_" + k.Unit
}

// RecipeLookup resolves a recipe by id. A nil recipe with a nil error means
// the recipe no longer exists.
type RecipeLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Recipe, error)
}

// ErrQuantityOutOfRange means a scaled or summed quantity is not a finite
// number.
var ErrQuantityOutOfRange = errors.New("grocery quantity out of range")

type Scaling string

const (
	// ScaleFlat multiplies ingredient quantities by the item's servings.
	ScaleFlat Scaling = "flat"
	// ScaleRatio multiplies by servings / recipe base servings.
	ScaleRatio Scaling = "ratio"
)

func (s Scaling) Valid() bool {
	return s == ScaleFlat || s == ScaleRatio
}

const defaultConcurrency = 8

type Options struct {
	Scaling Scaling
	// Concurrency bounds parallel recipe lookups. Zero means 8.
	Concurrency int
}

type line struct {
	key           Key
	contributions []model.GroceryContribution
}

// Aggregate merges the ingredients of every resolvable recipe in plan into
// shopping-list lines sorted by name then unit. Items whose recipe was deleted
// are skipped. A lookup error aborts the whole call.
func Aggregate(ctx context.Context, plan *model.MealPlan, lookup RecipeLookup, opts Options) ([]model.GroceryItem, error) {
	if plan == nil {
		return []model.GroceryItem{}, nil
	}

	recipes, err := resolveRecipes(ctx, plan.Items, lookup, opts.Concurrency)
	if err != nil {
		return nil, err
	}

	lines := make(map[Key]*line)
	for _, item := range plan.Items {
		recipe := recipes[item.RecipeID]
		if recipe == nil {
			continue
		}
		name := item.RecipeName
		if name == "" {
			name = recipe.Name
		}
		for _, ing := range recipe.Ingredients {
			key := NewKey(ing.Name, ing.Unit)
			if key.Name == "" {
				continue
			}
			l, ok := lines[key]
			if !ok {
				l = &line{key: key}
				lines[key] = l
			}
			l.contributions = append(l.contributions, model.GroceryContribution{
				RecipeName: name,
				Quantity:   scale(ing.Quantity, item.Servings, recipe.BaseServings, opts.Scaling),
				MealType:   item.MealType,
				Date:       item.Date,
			})
		}
	}

	items := make([]model.GroceryItem, 0, len(lines))
	for _, l := range lines {
		// Floating point addition is not associative, so the summation order
		// is fixed regardless of the order items appear in the plan.
		slices.SortFunc(l.contributions, compareContributions)
		var total float64
		for _, c := range l.contributions {
			total += c.Quantity
		}
		if math.IsInf(total, 0) || math.IsNaN(total) {
			return nil, fmt.Errorf("%w: %s", ErrQuantityOutOfRange, l.key)
		}
		items = append(items, model.GroceryItem{
			Key:           l.key.String(),
			Name:          l.key.Name,
			Unit:          l.key.Unit,
			TotalQuantity: total,
			Category:      Categorize(l.key.Name),
			Contributions: l.contributions,
		})
	}

	slices.SortFunc(items, func(a, b model.GroceryItem) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Unit, b.Unit))
	})
	return items, nil
}

func resolveRecipes(ctx context.Context, items []model.MealPlanItem, lookup RecipeLookup, limit int) (map[int64]*model.Recipe, error) {
	var ids []int64
	seen := make(map[int64]bool)
	for _, item := range items {
		if !seen[item.RecipeID] {
			seen[item.RecipeID] = true
			ids = append(ids, item.RecipeID)
		}
	}

	if limit <= 0 {
		limit = defaultConcurrency
	}
	found := make([]*model.Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			r, err := lookup.GetByID(gctx, id)
			if err != nil {
				return fmt.Errorf("lookup recipe %d: %w", id, err)
			}
			found[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recipes := make(map[int64]*model.Recipe, len(ids))
	for i, id := range ids {
		recipes[id] = found[i]
	}
	return recipes, nil
}

func scale(quantity float64, servings, baseServings int, s Scaling) float64 {
	if s == ScaleRatio && baseServings > 0 {
		return quantity * float64(servings) / float64(baseServings)
	}
	return quantity * float64(servings)
}

func compareContributions(a, b model.GroceryContribution) int {
	return cmp.Or(
		a.Date.Compare(b.Date),
		cmp.Compare(a.MealType.SlotIndex(), b.MealType.SlotIndex()),
		cmp.Compare(a.MealType, b.MealType),
		cmp.Compare(a.RecipeName, b.RecipeName),
		cmp.Compare(a.Quantity, b.Quantity),
	)
}
