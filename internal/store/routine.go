package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

type RoutineStore struct {
	db *sql.DB
}

func NewRoutineStore(db *sql.DB) *RoutineStore {
	return &RoutineStore{db: db}
}

func scanRoutine(scanner interface{ Scan(...any) error }) (*model.Routine, error) {
	var r model.Routine
	var householdID sql.NullInt64
	var tags string

	err := scanner.Scan(
		&r.ID, &householdID, &r.Name, &r.Category, &r.EnergyLevel,
		&r.DurationMinutes, &r.Difficulty, &tags,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if householdID.Valid {
		r.HouseholdID = &householdID.Int64
	}
	if err := decodeJSON(tags, &r.Tags); err != nil {
		return nil, fmt.Errorf("routine %d tags: %w", r.ID, err)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return &r, nil
}

const routineCols = `id, household_id, name, category, energy_level, duration_minutes, difficulty, tags, created_at, updated_at`

func (s *RoutineStore) Create(ctx context.Context, r model.Routine) (*model.Routine, error) {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	tags, err := encodeJSON(r.Tags)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO routines (household_id, name, category, energy_level, duration_minutes, difficulty, tags) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableID(r.HouseholdID), r.Name, r.Category, r.EnergyLevel, r.DurationMinutes, r.Difficulty, tags,
	)
	if err != nil {
		return nil, fmt.Errorf("insert routine: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *RoutineStore) GetByID(ctx context.Context, id int64) (*model.Routine, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+routineCols+` FROM routines WHERE id = ?`, id)
	r, err := scanRoutine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return r, nil
}

// FindByHousehold returns the household's own routines plus the shared ones.
// An empty category returns every category.
func (s *RoutineStore) FindByHousehold(ctx context.Context, householdID int64, category string) ([]model.Routine, error) {
	query := `SELECT ` + routineCols + ` FROM routines WHERE (household_id = ? OR household_id IS NULL)`
	args := []any{householdID}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find routines: %w", err)
	}
	defer rows.Close()

	var routines []model.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		routines = append(routines, *r)
	}
	return routines, rows.Err()
}
