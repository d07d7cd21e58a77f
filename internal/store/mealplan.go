package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/hearth/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrActivePlanChanged means another generation replaced the household's
// active plan between the caller's read and its write.
var ErrActivePlanChanged = errors.New("active meal plan changed concurrently")

const dateLayout = "2006-01-02"

type MealPlanStore struct {
	db *sql.DB
}

func NewMealPlanStore(db *sql.DB) *MealPlanStore {
	return &MealPlanStore{db: db}
}

func scanMealPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var p model.MealPlan
	var weekStart, weekEnd, prefs string
	var active int

	err := scanner.Scan(&p.ID, &p.HouseholdID, &weekStart, &weekEnd, &active, &prefs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if p.WeekStart, err = time.Parse(dateLayout, weekStart); err != nil {
		return nil, fmt.Errorf("plan %d week_start: %w", p.ID, err)
	}
	if p.WeekEnd, err = time.Parse(dateLayout, weekEnd); err != nil {
		return nil, fmt.Errorf("plan %d week_end: %w", p.ID, err)
	}
	p.IsActive = active != 0
	if err := decodeJSON(prefs, &p.Preferences); err != nil {
		return nil, fmt.Errorf("plan %d preferences: %w", p.ID, err)
	}
	return &p, nil
}

func scanMealPlanItem(scanner interface{ Scan(...any) error }) (*model.MealPlanItem, error) {
	var item model.MealPlanItem
	var date string

	err := scanner.Scan(&date, &item.MealType, &item.RecipeID, &item.RecipeName, &item.Servings, &item.Notes)
	if err != nil {
		return nil, err
	}
	if item.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("item date: %w", err)
	}
	return &item, nil
}

const mealPlanCols = `id, household_id, week_start, week_end, is_active, preferences, created_at`
const mealPlanItemCols = `date, meal_type, recipe_id, recipe_name, servings, notes`

// ActivePlanID returns the id of the household's active plan, or 0 if none.
func (s *MealPlanStore) ActivePlanID(ctx context.Context, householdID int64) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM meal_plans WHERE household_id = ? AND is_active = 1`,
		householdID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("active plan id: %w", err)
	}
	return id, nil
}

// ReplaceActive deactivates the household's active plan and inserts plan as
// the new active one in a single transaction. expectedActiveID is the active
// plan id the caller observed before building plan (0 for none); if it no
// longer matches, nothing is written and ErrActivePlanChanged is returned.
func (s *MealPlanStore) ReplaceActive(ctx context.Context, plan *model.MealPlan, expectedActiveID int64) (*model.MealPlan, error) {
	prefs, err := encodeJSON(plan.Preferences)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", mapConflict(err))
	}
	defer tx.Rollback()

	var currentID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM meal_plans WHERE household_id = ? AND is_active = 1`,
		plan.HouseholdID,
	).Scan(&currentID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("read active plan: %w", mapConflict(err))
	}
	if currentID != expectedActiveID {
		return nil, ErrActivePlanChanged
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE meal_plans SET is_active = 0 WHERE household_id = ? AND is_active = 1`,
		plan.HouseholdID,
	); err != nil {
		return nil, fmt.Errorf("deactivate plans: %w", mapConflict(err))
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO meal_plans (household_id, week_start, week_end, is_active, preferences) VALUES (?, ?, ?, 1, ?)`,
		plan.HouseholdID, plan.WeekStart.Format(dateLayout), plan.WeekEnd.Format(dateLayout), prefs,
	)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", mapConflict(err))
	}
	planID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	items := make([]model.MealPlanItem, len(plan.Items))
	for i, item := range plan.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meal_plan_items (plan_id, position, date, meal_type, recipe_id, recipe_name, servings, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			planID, i, item.Date.Format(dateLayout), item.MealType, item.RecipeID, item.RecipeName, item.Servings, item.Notes,
		); err != nil {
			return nil, fmt.Errorf("insert plan item %d: %w", i, err)
		}
		item.Date = dateOnly(item.Date)
		items[i] = item
	}

	var createdAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM meal_plans WHERE id = ?`, planID).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("read created_at: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", mapConflict(err))
	}

	// The plan is active once committed. Return what was written; no reload.
	return &model.MealPlan{
		ID:          planID,
		HouseholdID: plan.HouseholdID,
		WeekStart:   dateOnly(plan.WeekStart),
		WeekEnd:     dateOnly(plan.WeekEnd),
		IsActive:    true,
		Items:       items,
		Preferences: plan.Preferences,
		CreatedAt:   createdAt,
	}, nil
}

// dateOnly returns t's calendar date at midnight UTC, as stored.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetByID loads a plan and its items regardless of whether it is active.
func (s *MealPlanStore) GetByID(ctx context.Context, id int64) (*model.MealPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+mealPlanCols+` FROM meal_plans WHERE id = ?`, id)
	p, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	if p.Items, err = s.listItems(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// FindActiveCovering returns the household's active plan whose week contains
// day, or nil.
func (s *MealPlanStore) FindActiveCovering(ctx context.Context, householdID int64, day time.Time) (*model.MealPlan, error) {
	d := day.Format(dateLayout)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+mealPlanCols+` FROM meal_plans
		 WHERE household_id = ? AND is_active = 1 AND week_start <= ? AND week_end >= ?`,
		householdID, d, d,
	)
	p, err := scanMealPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find current plan: %w", err)
	}
	if p.Items, err = s.listItems(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByHousehold returns the household's plans newest first, without items.
func (s *MealPlanStore) ListByHousehold(ctx context.Context, householdID int64, limit int) ([]model.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealPlanCols+` FROM meal_plans WHERE household_id = ? ORDER BY id DESC LIMIT ?`,
		householdID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		p, err := scanMealPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// Deactivate clears is_active on a plan owned by the household. The record is
// kept for history and grocery list recomputation. It reports whether the plan
// exists for that household.
func (s *MealPlanStore) Deactivate(ctx context.Context, householdID, planID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE meal_plans SET is_active = 0 WHERE id = ? AND household_id = ?`,
		planID, householdID,
	)
	if err != nil {
		return false, fmt.Errorf("deactivate plan: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// CountActive returns how many plans of the household are flagged active.
func (s *MealPlanStore) CountActive(ctx context.Context, householdID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE household_id = ? AND is_active = 1`,
		householdID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}
	return count, nil
}

func (s *MealPlanStore) listItems(ctx context.Context, planID int64) ([]model.MealPlanItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+mealPlanItemCols+` FROM meal_plan_items WHERE plan_id = ? ORDER BY position ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plan items: %w", err)
	}
	defer rows.Close()

	items := []model.MealPlanItem{}
	for rows.Next() {
		item, err := scanMealPlanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// mapConflict turns lock contention and the one-active-plan unique index
// violation into ErrActivePlanChanged.
func mapConflict(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return err
	}
	code := se.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_BUSY || code&0xff == sqlite3.SQLITE_LOCKED {
		return fmt.Errorf("%w: %v", ErrActivePlanChanged, err)
	}
	return err
}
