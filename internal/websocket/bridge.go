package websocket

import (
	"github.com/dvfens/ags/internal/statestore"
	"github.com/dvfens/ags/pkg/logger"
)

// Forward pushes every change of store to the sessions connected to hub.
// render turns the stored value into the event payload. The returned func unsubscribes.
func Forward[T any](hub *Hub, store statestore.Store[T], eventType string, render func(T) (interface{}, error)) func() {
	return store.Subscribe(func(sessionID string, v T) {
		if !hub.IsSessionOnline(sessionID) {
			return
		}
		data, err := render(v)
		if err != nil {
			logger.Error("Failed to render state event", err, map[string]interface{}{
				"session_id": sessionID,
				"type":       eventType,
			})
			return
		}
		hub.SendToSession(sessionID, Event{Type: eventType, Data: data})
	})
}
