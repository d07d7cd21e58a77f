package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/mealplan"
	"github.com/dukerupert/hearth/internal/model"
)

// LotteryHandler serves the "surprise me" random picks.
type LotteryHandler struct {
	svc    *mealplan.Service
	logger *slog.Logger
}

func NewLotteryHandler(svc *mealplan.Service, logger *slog.Logger) *LotteryHandler {
	return &LotteryHandler{svc: svc, logger: logger}
}

type recipeDrawRequest struct {
	Count          *int               `json:"count"`
	ExcludeIDs     []int64            `json:"exclude_ids"`
	Category       model.MealType     `json:"category"`
	DietaryTags    []string           `json:"dietary_tags"`
	Match          model.DietaryMatch `json:"match"`
	MaxPrepMinutes int                `json:"max_prep_minutes"`
}

type routineDrawRequest struct {
	Count              *int               `json:"count"`
	ExcludeIDs         []int64            `json:"exclude_ids"`
	Category           string             `json:"category"`
	EnergyLevel        model.EnergyLevel  `json:"energy_level"`
	MaxDurationMinutes int                `json:"max_duration_minutes"`
	Difficulty         model.Difficulty   `json:"difficulty"`
	Tags               []string           `json:"tags"`
	Match              model.DietaryMatch `json:"match"`
}

func drawCount(c *int) int {
	if c == nil {
		return 1
	}
	return *c
}

func (h *LotteryHandler) DrawRecipes(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var req recipeDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.svc.DrawRecipes(r.Context(), householdID, candidate.RecipeFilter{
		Category:       req.Category,
		DietaryTags:    req.DietaryTags,
		Match:          req.Match,
		MaxPrepMinutes: req.MaxPrepMinutes,
	}, drawCount(req.Count), req.ExcludeIDs)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "draw recipes")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *LotteryHandler) DrawRoutines(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var req routineDrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := h.svc.DrawRoutines(r.Context(), householdID, candidate.RoutineFilter{
		Category:           req.Category,
		EnergyLevel:        req.EnergyLevel,
		MaxDurationMinutes: req.MaxDurationMinutes,
		Difficulty:         req.Difficulty,
		Tags:               req.Tags,
		Match:              req.Match,
	}, drawCount(req.Count), req.ExcludeIDs)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "draw routines")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
