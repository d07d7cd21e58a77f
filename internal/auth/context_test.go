package auth

import (
	"context"
	"errors"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{HouseholdID: 2, UserID: 9})

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected AuthContext in context")
	}
	if got.HouseholdID != 2 {
		t.Errorf("HouseholdID = %d, want 2", got.HouseholdID)
	}
	if got.UserID != 9 {
		t.Errorf("UserID = %d, want 9", got.UserID)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected false for missing AuthContext")
	}
}

func TestHousehold(t *testing.T) {
	id, err := Household(WithAuth(context.Background(), AuthContext{HouseholdID: 42}))
	if err != nil {
		t.Fatalf("Household: %v", err)
	}
	if id != 42 {
		t.Errorf("Household = %d, want 42", id)
	}
}

func TestHouseholdMissing(t *testing.T) {
	if _, err := Household(context.Background()); !errors.Is(err, ErrNoHousehold) {
		t.Errorf("expected ErrNoHousehold, got %v", err)
	}
	if _, err := Household(WithAuth(context.Background(), AuthContext{UserID: 3})); !errors.Is(err, ErrNoHousehold) {
		t.Errorf("expected ErrNoHousehold for zero household, got %v", err)
	}
}

func TestAccessorsMissing(t *testing.T) {
	if HouseholdID(context.Background()) != 0 {
		t.Error("expected household 0 for missing context")
	}
	if UserID(context.Background()) != 0 {
		t.Error("expected user 0 for missing context")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{HouseholdID: 1, UserID: 7})
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
}
