package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/hearth/internal/auth"
	"github.com/dukerupert/hearth/internal/model"
)

// Set by the authenticating proxy in front of the service.
const (
	HouseholdHeader = "X-Household-ID"
	UserHeader      = "X-User-ID"
)

type HouseholdLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Household, error)
}

// RequireHousehold trusts the household header set upstream, checks that the
// household exists, and populates AuthContext. Anything else gets a 401.
func RequireHousehold(households HouseholdLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			householdID, err := strconv.ParseInt(r.Header.Get(HouseholdHeader), 10, 64)
			if err != nil || householdID <= 0 {
				unauthorized(w)
				return
			}

			var userID int64
			if v := r.Header.Get(UserHeader); v != "" {
				userID, err = strconv.ParseInt(v, 10, 64)
				if err != nil {
					unauthorized(w)
					return
				}
			}

			household, err := households.GetByID(r.Context(), householdID)
			if err != nil {
				logger.Error("lookup household", "error", err, "household_id", householdID)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				return
			}
			if household == nil {
				unauthorized(w)
				return
			}

			ctx := auth.WithAuth(r.Context(), auth.AuthContext{HouseholdID: householdID, UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
