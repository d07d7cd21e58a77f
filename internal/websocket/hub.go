// Package websocket pushes meal plan changes to the connected clients of the
// household they belong to.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/hearth/internal/model"
)

const (
	EventPlanGenerated   = "meal_plan_generated"
	EventPlanDeactivated = "meal_plan_deactivated"
)

// Event is the JSON payload sent to clients.
type Event struct {
	Type        string `json:"type"`
	HouseholdID int64  `json:"household_id"`
	PlanID      int64  `json:"plan_id"`
	WeekStart   string `json:"week_start,omitempty"`
	Items       int    `json:"items,omitempty"`
}

func PlanEvent(eventType string, plan *model.MealPlan) Event {
	return Event{
		Type:        eventType,
		HouseholdID: plan.HouseholdID,
		PlanID:      plan.ID,
		WeekStart:   plan.WeekStart.Format(time.DateOnly),
		Items:       len(plan.Items),
	}
}

// Hub tracks connected clients per household.
type Hub struct {
	mu         sync.RWMutex
	households map[int64]map[*Client]struct{}
	logger     *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		households: make(map[int64]map[*Client]struct{}),
		logger:     logger.With("component", "websocket"),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.households[c.householdID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.households[c.householdID] = clients
	}
	clients[c] = struct{}{}
}

// Unregister removes c and closes its send channel. It is safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.households[c.householdID]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.households, c.householdID)
	}
}

// Publish sends ev to every client of its household. Clients whose buffer is
// full miss the event.
func (h *Hub) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.households[ev.HouseholdID] {
		select {
		case c.send <- data:
		default:
			h.logger.Debug("client buffer full, event dropped", "household_id", ev.HouseholdID, "type", ev.Type)
		}
	}
}

// ClientCount returns the number of clients connected for a household.
func (h *Hub) ClientCount(householdID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.households[householdID])
}
