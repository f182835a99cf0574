package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dvfens/ags/internal/app/service"
	"github.com/dvfens/ags/internal/middleware"
	ws "github.com/dvfens/ags/internal/websocket"
)

// SessionController upgrades storefront connections that receive live cart and
// location updates for their session.
type SessionController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewSessionController(hub *ws.Hub, allowedOrigins []string) *SessionController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &SessionController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// SessionSnapshot builds the events a freshly connected or resyncing client needs.
func SessionSnapshot(carts service.CartService, locations service.LocationService) ws.SnapshotFunc {
	return func(ctx context.Context, sessionID string) ([]ws.Event, error) {
		view, err := carts.GetCart(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		loc, err := locations.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return []ws.Event{
			{Type: "cart", Data: view},
			{Type: "location", Data: loc},
		}, nil
	}
}

// WebSocketHandler
// GET /api/session/ws
func (ctrl *SessionController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sid, ok := requireSession(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, conn, sid)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	ctrl.hub.SendSnapshot(client)

	log.Info("WebSocket connection established", map[string]interface{}{
		"session_id": sid,
	})
}
