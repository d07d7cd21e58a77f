package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/grocery"
	"github.com/dukerupert/hearth/internal/mealplan"
)

// writeJSON sends nothing until v is encoded. A value that cannot be encoded
// is logged and answered with a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err, "status", status)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// household writes a 401 and returns false when the request carries no
// household.
func household(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := auth.Household(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return id, true
}

// writeServiceError maps mealplan errors to responses. Unexpected errors are
// logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, action string) {
	var ve *mealplan.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error(), "field": ve.Field})
	case errors.Is(err, mealplan.ErrNotFound):
		writeError(w, http.StatusNotFound, "meal plan not found")
	case errors.Is(err, mealplan.ErrConflict):
		writeError(w, http.StatusConflict, "meal plan was changed by another request, please retry")
	case errors.Is(err, mealplan.ErrNoCandidates):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  "no recipes match the household's preferences",
			"status": "no_candidates",
		})
	case errors.Is(err, grocery.ErrQuantityOutOfRange):
		logger.Warn(action, "error", err, "household_id", auth.HouseholdID(r.Context()))
		writeError(w, http.StatusUnprocessableEntity, "grocery quantities are too large to total")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error(action, "error", err, "household_id", auth.HouseholdID(r.Context()))
		writeError(w, http.StatusServiceUnavailable, "request timed out")
	default:
		logger.Error(action, "error", err, "household_id", auth.HouseholdID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to "+action)
	}
}
