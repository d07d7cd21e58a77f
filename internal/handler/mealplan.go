package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/mealplan"
	"github.com/dukerupert/hearth/internal/model"
	"github.com/dukerupert/hearth/internal/websocket"
)

type MealPlanHandler struct {
	svc    *mealplan.Service
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMealPlanHandler(svc *mealplan.Service, hub *websocket.Hub, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{svc: svc, hub: hub, logger: logger}
}

type generateRequest struct {
	WeekStart   string                    `json:"week_start"`
	Preferences mealplan.PreferencesInput `json:"preferences"`
}

func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	weekStart, err := mealplan.ParseDate("week_start", req.WeekStart)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "generate meal plan")
		return
	}

	plan, err := h.svc.Generate(r.Context(), householdID, weekStart, req.Preferences)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "generate meal plan")
		return
	}

	h.hub.Publish(websocket.PlanEvent(websocket.EventPlanGenerated, plan))
	writeJSON(w, http.StatusCreated, plan)
}

func (h *MealPlanHandler) Current(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	plan, err := h.svc.Current(r.Context(), householdID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get current meal plan")
		return
	}
	if plan == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}

	var limit int
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	plans, err := h.svc.History(r.Context(), householdID, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "list meal plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	plan, err := h.svc.Get(r.Context(), householdID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get meal plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *MealPlanHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Deactivate(r.Context(), householdID, id); err != nil {
		writeServiceError(w, r, h.logger, err, "deactivate meal plan")
		return
	}

	h.hub.Publish(websocket.Event{Type: websocket.EventPlanDeactivated, HouseholdID: householdID, PlanID: id})
	w.WriteHeader(http.StatusNoContent)
}

type groceryListResponse struct {
	PlanID int64               `json:"plan_id"`
	Items  []model.GroceryItem `json:"items"`
}

func (h *MealPlanHandler) GroceryList(w http.ResponseWriter, r *http.Request) {
	householdID, ok := household(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	items, err := h.svc.GroceryList(r.Context(), householdID, id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "build grocery list")
		return
	}
	writeJSON(w, http.StatusOK, groceryListResponse{PlanID: id, Items: items})
}
