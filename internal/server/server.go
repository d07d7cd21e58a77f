package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/candidate"
	"github.com/dukerupert/hearth/internal/config"
	"github.com/dukerupert/hearth/internal/handler"
	"github.com/dukerupert/hearth/internal/lottery"
	"github.com/dukerupert/hearth/internal/mealplan"
	"github.com/dukerupert/hearth/internal/middleware"
	"github.com/dukerupert/hearth/internal/store"
	ws "github.com/dukerupert/hearth/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	mealPlanH      *handler.MealPlanHandler
	lotteryH       *handler.LotteryHandler
	recipeH        *handler.RecipeHandler
	routineH       *handler.RoutineHandler
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	logger         *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	householdStore := store.NewHouseholdStore(db)
	recipeStore := store.NewRecipeStore(db)
	routineStore := store.NewRoutineStore(db)
	mealPlanStore := store.NewMealPlanStore(db)

	src := lottery.NewRandomSource()
	if cfg.HasSeed {
		src = lottery.NewSource(cfg.RandomSeed)
	}

	svc := mealplan.NewService(
		mealPlanStore,
		recipeStore,
		candidate.NewPool(recipeStore, routineStore),
		src,
		mealplan.Config{
			DietaryMatch:    cfg.DietaryMatch,
			Scaling:         cfg.GroceryScaling,
			WeekStart:       cfg.WeekStart,
			GenerateTimeout: cfg.GenerateTimeout,
		},
		logger,
	)

	return &Server{
		db:             db,
		hub:            hub,
		mealPlanH:      handler.NewMealPlanHandler(svc, hub, logger.With("component", "meal_plan")),
		lotteryH:       handler.NewLotteryHandler(svc, logger.With("component", "lottery")),
		recipeH:        handler.NewRecipeHandler(recipeStore, logger.With("component", "recipe")),
		routineH:       handler.NewRoutineHandler(routineStore, logger.With("component", "routine")),
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(cfg.GenerateRate),
		logger:         logger,
	}
}

// RateLimiter returns the generation rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()
	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	requireHousehold := middleware.RequireHousehold(s.householdStore, s.logger.With("component", "auth"))
	outerMux.Handle("/", requireHousehold(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.HouseholdKey)(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Meal plans
	mux.Handle("POST /api/meal-plans", s.rateLimited(s.mealPlanH.Generate))
	mux.HandleFunc("GET /api/meal-plans", s.mealPlanH.List)
	mux.HandleFunc("GET /api/meal-plans/current", s.mealPlanH.Current)
	mux.HandleFunc("GET /api/meal-plans/{id}", s.mealPlanH.Get)
	mux.HandleFunc("DELETE /api/meal-plans/{id}", s.mealPlanH.Deactivate)
	mux.HandleFunc("GET /api/meal-plans/{id}/grocery-list", s.mealPlanH.GroceryList)

	// Lottery
	mux.HandleFunc("POST /api/lottery/recipes", s.lotteryH.DrawRecipes)
	mux.HandleFunc("POST /api/lottery/routines", s.lotteryH.DrawRoutines)

	// Recipes and routines
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/routines", s.routineH.Create)
	mux.HandleFunc("GET /api/routines", s.routineH.List)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}
