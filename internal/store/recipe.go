package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	var householdID sql.NullInt64
	var tags, ingredients string

	err := scanner.Scan(
		&r.ID, &householdID, &r.Name, &r.Category, &tags,
		&r.BaseServings, &r.PrepMinutes, &ingredients,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if householdID.Valid {
		r.HouseholdID = &householdID.Int64
	}
	if err := decodeJSON(tags, &r.DietaryTags); err != nil {
		return nil, fmt.Errorf("recipe %d tags: %w", r.ID, err)
	}
	if err := decodeJSON(ingredients, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("recipe %d ingredients: %w", r.ID, err)
	}
	if r.DietaryTags == nil {
		r.DietaryTags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	return &r, nil
}

const recipeCols = `id, household_id, name, category, dietary_tags, base_servings, prep_minutes, ingredients, created_at, updated_at`

// Create inserts r. A nil HouseholdID creates a shared recipe.
func (s *RecipeStore) Create(ctx context.Context, r model.Recipe) (*model.Recipe, error) {
	if r.DietaryTags == nil {
		r.DietaryTags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []model.Ingredient{}
	}
	tags, err := encodeJSON(r.DietaryTags)
	if err != nil {
		return nil, err
	}
	ingredients, err := encodeJSON(r.Ingredients)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (household_id, name, category, dietary_tags, base_servings, prep_minutes, ingredients) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableID(r.HouseholdID), r.Name, r.Category, tags, r.BaseServings, r.PrepMinutes, ingredients,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RecipeStore) GetByID(ctx context.Context, id int64) (*model.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return r, nil
}

// FindByHousehold returns the household's own recipes plus the shared ones.
// An empty category returns every category.
func (s *RecipeStore) FindByHousehold(ctx context.Context, householdID int64, category model.MealType) ([]model.Recipe, error) {
	query := `SELECT ` + recipeCols + ` FROM recipes WHERE (household_id = ? OR household_id IS NULL)`
	args := []any{householdID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

// Delete removes a recipe owned by the household. Shared recipes cannot be
// deleted through a household. It reports whether a row was removed.
func (s *RecipeStore) Delete(ctx context.Context, householdID, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return false, fmt.Errorf("delete recipe: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
