package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dukerupert/hearth/internal/config"
	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/grocery"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

type testServer struct {
	handler   http.Handler
	household int64
	recipes   *store.RecipeStore
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	house, err := store.NewHouseholdStore(db).Create(context.Background(), "Test Household")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	cfg := &config.Config{
		RandomSeed:      1,
		HasSeed:         true,
		DietaryMatch:    model.MatchAny,
		GroceryScaling:  grocery.ScaleFlat,
		GenerateTimeout: 5 * time.Second,
		GenerateRate:    3,
		WeekStart:       time.Monday,
	}
	srv := New(db, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &testServer{handler: srv.Router(), household: house.ID, recipes: store.NewRecipeStore(db)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("X-Household-ID", strconv.FormatInt(s.household, 10))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (s *testServer) seedBreakfasts(t *testing.T) {
	t.Helper()
	for _, body := range []map[string]any{
		{"name": "Pancakes", "category": "breakfast", "ingredients": []map[string]any{{"name": "Flour", "quantity": 2, "unit": "cup"}}},
		{"name": "Crepes", "category": "breakfast", "ingredients": []map[string]any{
			{"name": "flour", "quantity": 1, "unit": "Cup"},
			{"name": "milk", "quantity": 1, "unit": "cup"},
		}},
	} {
		if rec := s.do(t, "POST", "/api/recipes", body); rec.Code != http.StatusCreated {
			t.Fatalf("create recipe: status %d: %s", rec.Code, rec.Body.String())
		}
	}
}

func TestHealth(t *testing.T) {
	s := setupServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected request id header")
	}
}

func TestAPIRequiresHousehold(t *testing.T) {
	s := setupServer(t)
	req := httptest.NewRequest("GET", "/api/meal-plans/current", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestMealPlanLifecycle(t *testing.T) {
	s := setupServer(t)
	s.seedBreakfasts(t)

	body := map[string]any{
		"week_start":  "2026-10-12",
		"preferences": map[string]any{"snack_skip_chance": 0},
	}
	rec := s.do(t, "POST", "/api/meal-plans", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: status %d: %s", rec.Code, rec.Body.String())
	}
	plan := decode[model.MealPlan](t, rec)
	if !plan.IsActive || len(plan.Items) != 7 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if plan.Preferences.Servings != 2 || plan.Preferences.SnackSkipChance != 0 {
		t.Errorf("preferences not resolved: %+v", plan.Preferences)
	}

	planPath := "/api/meal-plans/" + strconv.FormatInt(plan.ID, 10)

	rec = s.do(t, "GET", planPath, nil)
	if rec.Code != http.StatusOK || decode[model.MealPlan](t, rec).ID != plan.ID {
		t.Fatalf("get: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, "GET", planPath+"/grocery-list", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("grocery list: status %d: %s", rec.Code, rec.Body.String())
	}
	list := decode[struct {
		PlanID int64               `json:"plan_id"`
		Items  []model.GroceryItem `json:"items"`
	}](t, rec)
	if list.PlanID != plan.ID || len(list.Items) == 0 || list.Items[0].Key != "flour_cup" {
		t.Errorf("unexpected grocery list %+v", list)
	}

	rec = s.do(t, "GET", "/api/meal-plans?limit=5", nil)
	if rec.Code != http.StatusOK || len(decode[[]model.MealPlan](t, rec)) != 1 {
		t.Errorf("history: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, "DELETE", planPath, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, "GET", "/api/meal-plans/current", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("current after deactivate: status %d, want 204", rec.Code)
	}

	rec = s.do(t, "GET", planPath, nil)
	if rec.Code != http.StatusOK || decode[model.MealPlan](t, rec).IsActive {
		t.Errorf("deactivated plan should still be readable and inactive: %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateErrors(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"invalid json", "not an object", http.StatusBadRequest},
		{"bad date", map[string]any{"week_start": "12/10/2026"}, http.StatusBadRequest},
		{"bad servings", map[string]any{"week_start": "2026-10-12", "preferences": map[string]any{"servings": 99}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := s.do(t, "POST", "/api/meal-plans", tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestGenerateNoCandidates(t *testing.T) {
	s := setupServer(t)

	rec := s.do(t, "POST", "/api/meal-plans", map[string]any{"week_start": "2026-10-12"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if got := decode[map[string]string](t, rec)["status"]; got != "no_candidates" {
		t.Errorf("status field = %q, want no_candidates", got)
	}
}

func TestGenerateIsRateLimited(t *testing.T) {
	s := setupServer(t)
	s.seedBreakfasts(t)

	body := map[string]any{"week_start": "2026-10-12"}
	for i := 0; i < 3; i++ {
		if rec := s.do(t, "POST", "/api/meal-plans", body); rec.Code != http.StatusCreated {
			t.Fatalf("call %d: status %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}
	if rec := s.do(t, "POST", "/api/meal-plans", body); rec.Code != http.StatusTooManyRequests {
		t.Errorf("4th call: status %d, want 429", rec.Code)
	}
	if rec := s.do(t, "GET", "/api/meal-plans/current", nil); rec.Code == http.StatusTooManyRequests {
		t.Error("reads should not be rate limited")
	}
}

func TestMealPlanNotFound(t *testing.T) {
	s := setupServer(t)

	for _, tt := range []struct{ method, path string }{
		{"GET", "/api/meal-plans/999"},
		{"DELETE", "/api/meal-plans/999"},
		{"GET", "/api/meal-plans/999/grocery-list"},
	} {
		if rec := s.do(t, tt.method, tt.path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status %d, want 404", tt.method, tt.path, rec.Code)
		}
	}
	if rec := s.do(t, "GET", "/api/meal-plans/abc", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id: status %d, want 400", rec.Code)
	}
}

func TestLotteryRoutines(t *testing.T) {
	s := setupServer(t)
	for _, name := range []string{"Stretch", "Walk"} {
		rec := s.do(t, "POST", "/api/routines", map[string]any{"name": name, "category": "movement", "energy_level": "low"})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create routine: status %d: %s", rec.Code, rec.Body.String())
		}
	}

	rec := s.do(t, "POST", "/api/lottery/routines", map[string]any{"count": 3, "category": "movement"})
	if rec.Code != http.StatusOK {
		t.Fatalf("draw: status %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[struct {
		Items          []model.Routine `json:"items"`
		TotalAvailable int             `json:"total_available"`
		Status         string          `json:"status"`
	}](t, rec)
	if len(res.Items) != 2 || res.TotalAvailable != 2 || res.Status != "ok" {
		t.Errorf("unexpected draw %+v", res)
	}

	rec = s.do(t, "POST", "/api/lottery/routines", map[string]any{"energy_level": "high"})
	if rec.Code != http.StatusOK {
		t.Fatalf("empty draw: status %d: %s", rec.Code, rec.Body.String())
	}
	empty := decode[map[string]any](t, rec)
	if empty["status"] != "no_candidates" || len(empty["items"].([]any)) != 0 {
		t.Errorf("unexpected empty draw %+v", empty)
	}

	if rec := s.do(t, "POST", "/api/lottery/routines", map[string]any{"count": 0}); rec.Code != http.StatusBadRequest {
		t.Errorf("count 0: status %d, want 400", rec.Code)
	}
}

func TestLotteryRecipesExclude(t *testing.T) {
	s := setupServer(t)
	s.seedBreakfasts(t)

	rec := s.do(t, "GET", "/api/recipes?category=breakfast", nil)
	recipes := decode[[]model.Recipe](t, rec)
	if len(recipes) != 2 {
		t.Fatalf("expected 2 recipes, got %d", len(recipes))
	}

	rec = s.do(t, "POST", "/api/lottery/recipes", map[string]any{"count": 2, "exclude_ids": []int64{recipes[0].ID}})
	res := decode[struct {
		Items []model.Recipe `json:"items"`
	}](t, rec)
	if len(res.Items) != 1 || res.Items[0].ID != recipes[1].ID {
		t.Errorf("unexpected draw %+v", res)
	}
}

func TestRecipeValidationAndDelete(t *testing.T) {
	s := setupServer(t)

	for _, body := range []map[string]any{
		{"name": "", "category": "dinner"},
		{"name": "Soup", "category": "brunch"},
		{"name": "Soup", "category": "dinner", "ingredients": []map[string]any{{"name": " ", "quantity": 1}}},
		{"name": "Soup", "category": "dinner", "ingredients": []map[string]any{{"name": "salt", "quantity": -1}}},
	} {
		if rec := s.do(t, "POST", "/api/recipes", body); rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status %d, want 400", body, rec.Code)
		}
	}

	rec := s.do(t, "POST", "/api/recipes", map[string]any{"name": "Soup", "category": "dinner", "dietary_tags": []string{" Vegan "}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d: %s", rec.Code, rec.Body.String())
	}
	recipe := decode[model.Recipe](t, rec)
	if recipe.BaseServings != 1 || len(recipe.DietaryTags) != 1 || recipe.DietaryTags[0] != "vegan" {
		t.Errorf("unexpected recipe %+v", recipe)
	}

	path := "/api/recipes/" + strconv.FormatInt(recipe.ID, 10)
	if rec := s.do(t, "DELETE", path, nil); rec.Code != http.StatusNoContent {
		t.Errorf("delete: status %d, want 204", rec.Code)
	}
	if rec := s.do(t, "DELETE", path, nil); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rec.Code)
	}
}

func TestSharedRecipesAreVisibleButNotDeletable(t *testing.T) {
	s := setupServer(t)
	shared, err := s.recipes.Create(context.Background(), model.Recipe{Name: "Toast", Category: model.MealBreakfast})
	if err != nil {
		t.Fatalf("create shared recipe: %v", err)
	}

	recipes := decode[[]model.Recipe](t, s.do(t, "GET", "/api/recipes", nil))
	if len(recipes) != 1 || recipes[0].ID != shared.ID {
		t.Fatalf("expected the shared recipe, got %+v", recipes)
	}
	if rec := s.do(t, "DELETE", "/api/recipes/"+strconv.FormatInt(shared.ID, 10), nil); rec.Code != http.StatusNotFound {
		t.Errorf("delete shared: status %d, want 404", rec.Code)
	}
}

func TestGroceryListOverflowIsReported(t *testing.T) {
	s := setupServer(t)
	_, err := s.recipes.Create(context.Background(), model.Recipe{
		Name: "Giant Loaf", Category: model.MealBreakfast, BaseServings: 1,
		Ingredients: []model.Ingredient{{Name: "flour", Quantity: 1e308, Unit: "cup"}},
	})
	if err != nil {
		t.Fatalf("create shared recipe: %v", err)
	}

	rec := s.do(t, "POST", "/api/meal-plans", map[string]any{"week_start": "2026-10-12"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate: status %d: %s", rec.Code, rec.Body.String())
	}
	plan := decode[model.MealPlan](t, rec)

	rec = s.do(t, "GET", "/api/meal-plans/"+strconv.FormatInt(plan.ID, 10)+"/grocery-list", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	if decode[map[string]string](t, rec)["error"] == "" {
		t.Error("expected an error message")
	}
}

func TestLotteryIgnoresBlankTags(t *testing.T) {
	s := setupServer(t)
	s.seedBreakfasts(t)

	rec := s.do(t, "POST", "/api/lottery/recipes", map[string]any{"count": 2, "dietary_tags": []string{" "}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	res := decode[struct {
		Items  []model.Recipe `json:"items"`
		Status string         `json:"status"`
	}](t, rec)
	if len(res.Items) != 2 || res.Status != "ok" {
		t.Errorf("blank tags should not filter: %+v", res)
	}
}
