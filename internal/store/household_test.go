package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dukerupert/hearth/internal/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createHousehold(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	h, err := NewHouseholdStore(db).Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return h.ID
}

func TestHouseholdCreate(t *testing.T) {
	hs := NewHouseholdStore(setupTestDB(t))

	h, err := hs.Create(context.Background(), "Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.Name != "Test Household" {
		t.Errorf("name = %q, want %q", h.Name, "Test Household")
	}
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}
}

func TestHouseholdGetByIDNotFound(t *testing.T) {
	hs := NewHouseholdStore(setupTestDB(t))

	h, err := hs.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if h != nil {
		t.Error("expected nil for nonexistent household")
	}
}

func TestHouseholdUpdate(t *testing.T) {
	db := setupTestDB(t)
	hs := NewHouseholdStore(db)
	id := createHousehold(t, db, "Old Name")

	h, err := hs.Update(context.Background(), id, "New Name")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if h.Name != "New Name" {
		t.Errorf("name = %q, want %q", h.Name, "New Name")
	}
}

func TestHouseholdDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	id := createHousehold(t, db, "Doomed")

	rs := NewRecipeStore(db)
	r, err := rs.Create(ctx, testRecipe(&id, "Toast"))
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}

	if err := NewHouseholdStore(db).Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	h, _ := NewHouseholdStore(db).GetByID(ctx, id)
	if h != nil {
		t.Error("household should be gone")
	}
	got, err := rs.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if got != nil {
		t.Error("recipe should be deleted with its household")
	}
}
