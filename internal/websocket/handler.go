package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/dukerupert/hearth/internal/auth"
)

// Handler upgrades the request and streams the caller's household events.
// It must run behind household middleware.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		householdID, err := auth.Household(r.Context())
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // origin checks happen at the upstream proxy
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err, "household_id", householdID)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn, householdID).Run(r.Context())
	}
}
