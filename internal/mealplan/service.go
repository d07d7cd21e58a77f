// Package mealplan generates weekly meal plans and serves the plan, grocery
// and lottery operations built on them.
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/grocery"
	"github.com/dukerupert/hearth/internal/lottery"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

var (
	ErrNoCandidates = errors.New("no recipes match the household's preferences")
	ErrNotFound     = errors.New("meal plan not found")
	ErrConflict     = errors.New("meal plan was replaced concurrently, retry")
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// PlanStore persists plans and guards the one-active-plan invariant.
type PlanStore interface {
	ActivePlanID(ctx context.Context, householdID int64) (int64, error)
	ReplaceActive(ctx context.Context, plan *model.MealPlan, expectedActiveID int64) (*model.MealPlan, error)
	GetByID(ctx context.Context, id int64) (*model.MealPlan, error)
	FindActiveCovering(ctx context.Context, householdID int64, day time.Time) (*model.MealPlan, error)
	ListByHousehold(ctx context.Context, householdID int64, limit int) ([]model.MealPlan, error)
	Deactivate(ctx context.Context, householdID, planID int64) (bool, error)
}

type Config struct {
	DietaryMatch    model.DietaryMatch
	Scaling         grocery.Scaling
	WeekStart       time.Weekday
	GenerateTimeout time.Duration
}

type Service struct {
	plans   PlanStore
	recipes grocery.RecipeLookup
	pool    *candidate.Pool
	src     lottery.Source
	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(plans PlanStore, recipes grocery.RecipeLookup, pool *candidate.Pool, src lottery.Source, cfg Config, logger *slog.Logger) *Service {
	if cfg.DietaryMatch == "" {
		cfg.DietaryMatch = model.MatchAny
	}
	if cfg.Scaling == "" {
		cfg.Scaling = grocery.ScaleFlat
	}
	return &Service{
		plans:   plans,
		recipes: recipes,
		pool:    pool,
		src:     src,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.With("component", "mealplan"),
	}
}

// Generate builds a plan for the week starting at weekStart and makes it the
// household's only active plan. ErrConflict means another generation for the
// same household committed first; nothing was written.
func (s *Service) Generate(ctx context.Context, householdID int64, weekStart time.Time, in PreferencesInput) (*model.MealPlan, error) {
	prefs, err := ResolvePreferences(in, s.cfg.DietaryMatch)
	if err != nil {
		return nil, err
	}
	weekStart = dateOf(weekStart)

	if s.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.GenerateTimeout)
		defer cancel()
	}

	pool, err := s.pool.Recipes(ctx, householdID, candidate.RecipeFilter{
		DietaryTags:    prefs.DietaryRestrictions,
		Match:          prefs.DietaryMatch,
		MaxPrepMinutes: prefs.MaxPrepMinutes,
	})
	if err != nil {
		return nil, fmt.Errorf("candidate pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}

	expected, err := s.plans.ActivePlanID(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("read active plan: %w", err)
	}

	plan := &model.MealPlan{
		HouseholdID: householdID,
		WeekStart:   weekStart,
		WeekEnd:     weekStart.AddDate(0, 0, DaysPerWeek-1),
		Items:       Assign(s.src, pool, weekStart, prefs),
		Preferences: prefs,
	}

	saved, err := s.plans.ReplaceActive(ctx, plan, expected)
	if errors.Is(err, store.ErrActivePlanChanged) {
		s.logger.Warn("concurrent generation", "household_id", householdID, "week_start", weekStart.Format(time.DateOnly))
		return nil, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	if err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	s.logger.Info("meal plan generated",
		"household_id", householdID,
		"plan_id", saved.ID,
		"week_start", weekStart.Format(time.DateOnly),
		"candidates", len(pool),
		"items", len(saved.Items),
	)
	return saved, nil
}

// Current returns the active plan covering the start of the current week, or
// nil when there is none.
func (s *Service) Current(ctx context.Context, householdID int64) (*model.MealPlan, error) {
	start := StartOfWeek(s.now(), s.cfg.WeekStart)
	plan, err := s.plans.FindActiveCovering(ctx, householdID, start)
	if err != nil {
		return nil, fmt.Errorf("current plan: %w", err)
	}
	return plan, nil
}

// Get returns one of the household's plans, active or not.
func (s *Service) Get(ctx context.Context, householdID, planID int64) (*model.MealPlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if plan == nil || plan.HouseholdID != householdID {
		return nil, ErrNotFound
	}
	return plan, nil
}

// History lists the household's plans newest first, without items. A zero
// limit means DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, householdID int64, limit int) ([]model.MealPlan, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, &ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxHistoryLimit)}
	}
	plans, err := s.plans.ListByHousehold(ctx, householdID, limit)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	if plans == nil {
		plans = []model.MealPlan{}
	}
	return plans, nil
}

// Deactivate soft-deletes a plan. The record stays available to Get and
// GroceryList.
func (s *Service) Deactivate(ctx context.Context, householdID, planID int64) error {
	ok, err := s.plans.Deactivate(ctx, householdID, planID)
	if err != nil {
		return fmt.Errorf("deactivate plan: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.logger.Info("meal plan deactivated", "household_id", householdID, "plan_id", planID)
	return nil
}

// GroceryList recomputes the shopping list of a plan. Recipes deleted since
// the plan was generated are left out.
func (s *Service) GroceryList(ctx context.Context, householdID, planID int64) ([]model.GroceryItem, error) {
	plan, err := s.Get(ctx, householdID, planID)
	if err != nil {
		return nil, err
	}
	items, err := grocery.Aggregate(ctx, plan, s.recipes, grocery.Options{Scaling: s.cfg.Scaling})
	if err != nil {
		return nil, fmt.Errorf("aggregate grocery list: %w", err)
	}
	return items, nil
}

// DrawRecipes picks up to count random eligible recipes.
func (s *Service) DrawRecipes(ctx context.Context, householdID int64, f candidate.RecipeFilter, count int, exclude []int64) (lottery.Result[model.Recipe], error) {
	if err := validateCount(count); err != nil {
		return lottery.Result[model.Recipe]{}, err
	}
	if f.Category != "" && !f.Category.Valid() {
		return lottery.Result[model.Recipe]{}, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown meal type %q", f.Category)}
	}
	if f.Match == "" {
		f.Match = s.cfg.DietaryMatch
	} else if !f.Match.Valid() {
		return lottery.Result[model.Recipe]{}, &ValidationError{Field: "dietary_match", Message: fmt.Sprintf("must be %q or %q", model.MatchAny, model.MatchAll)}
	}

	candidates, err := s.pool.Recipes(ctx, householdID, f)
	if err != nil {
		return lottery.Result[model.Recipe]{}, fmt.Errorf("candidate pool: %w", err)
	}
	return lottery.Draw(s.src, candidates, func(r model.Recipe) int64 { return r.ID }, count, exclude)
}

// DrawRoutines picks up to count random eligible routines.
func (s *Service) DrawRoutines(ctx context.Context, householdID int64, f candidate.RoutineFilter, count int, exclude []int64) (lottery.Result[model.Routine], error) {
	if err := validateCount(count); err != nil {
		return lottery.Result[model.Routine]{}, err
	}
	if f.EnergyLevel != "" && !f.EnergyLevel.Valid() {
		return lottery.Result[model.Routine]{}, &ValidationError{Field: "energy_level", Message: fmt.Sprintf("unknown energy level %q", f.EnergyLevel)}
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		return lottery.Result[model.Routine]{}, &ValidationError{Field: "difficulty", Message: fmt.Sprintf("unknown difficulty %q", f.Difficulty)}
	}
	if f.MaxDurationMinutes < 0 {
		return lottery.Result[model.Routine]{}, &ValidationError{Field: "max_duration_minutes", Message: "must not be negative"}
	}
	if f.Match == "" {
		f.Match = s.cfg.DietaryMatch
	} else if !f.Match.Valid() {
		return lottery.Result[model.Routine]{}, &ValidationError{Field: "match", Message: fmt.Sprintf("must be %q or %q", model.MatchAny, model.MatchAll)}
	}

	candidates, err := s.pool.Routines(ctx, householdID, f)
	if err != nil {
		return lottery.Result[model.Routine]{}, fmt.Errorf("candidate pool: %w", err)
	}
	return lottery.Draw(s.src, candidates, func(r model.Routine) int64 { return r.ID }, count, exclude)
}

func validateCount(count int) error {
	if count < 1 || count > lottery.MaxCount {
		return &ValidationError{Field: "count", Message: fmt.Sprintf("must be between 1 and %d", lottery.MaxCount)}
	}
	return nil
}

// StartOfWeek returns midnight UTC of the most recent first day on or before
// t's calendar date.
func StartOfWeek(t time.Time, first time.Weekday) time.Time {
	d := dateOf(t)
	offset := (int(d.Weekday()) - int(first) + 7) % 7
	return d.AddDate(0, 0, -offset)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
