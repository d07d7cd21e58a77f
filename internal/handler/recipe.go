package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

// MaxIngredientQuantity bounds a single ingredient amount. Scaled grocery
// totals stay finite under it.
const MaxIngredientQuantity = 100_000

type RecipeHandler struct {
	store  *store.RecipeStore
	logger *slog.Logger
}

func NewRecipeHandler(s *store.RecipeStore, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{store: s, logger: logger}
}

type recipeRequest struct {
	Name         string             `json:"name"`
	Category     model.MealType     `json:"category"`
	DietaryTags  []string           `json:"dietary_tags"`
	BaseServings int                `json:"base_servings"`
	PrepMinutes  int                `json:"prep_minutes"`
	Ingredients  []model.Ingredient `json:"ingredients"`
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Category.Valid() {
		writeError(w, http.StatusBadRequest, "category must be breakfast, lunch, dinner, snack, dessert or beverage")
		return
	}
	if req.BaseServings == 0 {
		req.BaseServings = 1
	}
	if req.BaseServings < 0 || req.PrepMinutes < 0 {
		writeError(w, http.StatusBadRequest, "base_servings and prep_minutes must not be negative")
		return
	}
	for i, ing := range req.Ingredients {
		req.Ingredients[i].Name = strings.TrimSpace(ing.Name)
		req.Ingredients[i].Unit = strings.TrimSpace(ing.Unit)
		if req.Ingredients[i].Name == "" {
			writeError(w, http.StatusBadRequest, "ingredient name is required")
			return
		}
		if ing.Quantity < 0 || ing.Quantity > MaxIngredientQuantity {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("ingredient quantity must be between 0 and %d", MaxIngredientQuantity))
			return
		}
	}

	tags := []string{}
	for _, t := range req.DietaryTags {
		if t = candidate.NormalizeTag(t); t != "" {
			tags = append(tags, t)
		}
	}

	recipe, err := h.store.Create(r.Context(), model.Recipe{
		HouseholdID:  &householdID,
		Name:         req.Name,
		Category:     req.Category,
		DietaryTags:  tags,
		BaseServings: req.BaseServings,
		PrepMinutes:  req.PrepMinutes,
		Ingredients:  req.Ingredients,
	})
	if err != nil {
		h.logger.Error("create recipe", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// List returns the household's recipes and the shared ones, optionally
// narrowed by ?category=.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	category := model.MealType(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	recipes, err := h.store.FindByHousehold(r.Context(), householdID, category)
	if err != nil {
		h.logger.Error("list recipes", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

// Delete removes one of the household's own recipes. Plans that used it keep
// their items; grocery lists skip them.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	deleted, err := h.store.Delete(r.Context(), householdID, id)
	if err != nil {
		h.logger.Error("delete recipe", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
