package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/store"
)

type RoutineHandler struct {
	store  *store.RoutineStore
	logger *slog.Logger
}

func NewRoutineHandler(s *store.RoutineStore, logger *slog.Logger) *RoutineHandler {
	return &RoutineHandler{store: s, logger: logger}
}

type routineRequest struct {
	Name            string            `json:"name"`
	Category        string            `json:"category"`
	EnergyLevel     model.EnergyLevel `json:"energy_level"`
	DurationMinutes int               `json:"duration_minutes"`
	Difficulty      model.Difficulty  `json:"difficulty"`
	Tags            []string          `json:"tags"`
}

func (h *RoutineHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.EnergyLevel == "" {
		req.EnergyLevel = model.EnergyMedium
	}
	if !req.EnergyLevel.Valid() {
		writeError(w, http.StatusBadRequest, "energy_level must be low, medium or high")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = model.DifficultyEasy
	}
	if !req.Difficulty.Valid() {
		writeError(w, http.StatusBadRequest, "difficulty must be easy, medium or hard")
		return
	}
	if req.DurationMinutes < 0 {
		writeError(w, http.StatusBadRequest, "duration_minutes must not be negative")
		return
	}

	tags := []string{}
	for _, t := range req.Tags {
		if t = candidate.NormalizeTag(t); t != "" {
			tags = append(tags, t)
		}
	}

	routine, err := h.store.Create(r.Context(), model.Routine{
		HouseholdID:     &householdID,
		Name:            req.Name,
		Category:        strings.TrimSpace(req.Category),
		EnergyLevel:     req.EnergyLevel,
		DurationMinutes: req.DurationMinutes,
		Difficulty:      req.Difficulty,
		Tags:            tags,
	})
	if err != nil {
		h.logger.Error("create routine", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "failed to create routine")
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (h *RoutineHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	routines, err := h.store.FindByHousehold(r.Context(), householdID, r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("list routines", "error", err, "household_id", householdID)
		writeError(w, http.StatusInternalServerError, "failed to list routines")
		return
	}
	if routines == nil {
		routines = []model.Routine{}
	}
	writeJSON(w, http.StatusOK, routines)
}
