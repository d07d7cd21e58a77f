// Package auth carries the caller identity established by upstream
// authentication through a request context.
package auth

import (
	"context"
	"errors"
)

var ErrNoHousehold = errors.New("no household in context")

type contextKey struct{}

// AuthContext identifies the caller. UserID is zero when the upstream proxy
// only vouched for the household.
type AuthContext struct {
	HouseholdID int64
	UserID      int64
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

// Household returns the caller's household id, or ErrNoHousehold when the
// request did not pass through household middleware.
func Household(ctx context.Context) (int64, error) {
	ac, ok := FromContext(ctx)
	if !ok || ac.HouseholdID == 0 {
		return 0, ErrNoHousehold
	}
	return ac.HouseholdID, nil
}

func HouseholdID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.HouseholdID
}

func UserID(ctx context.Context) int64 {
	ac, _ := FromContext(ctx)
	return ac.UserID
}
