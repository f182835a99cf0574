package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/dvfens/ags/config"
	"github.com/dvfens/ags/internal/errors"
)

const (
	SessionIDKey   = "session_id"
	sessionIDValue = "sid"
)

// NewSessionStore builds the signed cookie store that carries the guest session id.
func NewSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Session makes sure every request carries a session id. The id keys the
// per-session cart and address flow, for guests and logged-in users alike.
func Session(store sessions.Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		// A cookie that fails to decode yields a fresh session.
		sess, err := store.Get(c.Request, cookieName)
		if err != nil {
			log.Debug("Discarding undecodable session cookie", map[string]interface{}{
				"error": err.Error(),
			})
		}

		sid, _ := sess.Values[sessionIDValue].(string)
		if sid == "" {
			sid = uuid.NewString()
			sess.Values[sessionIDValue] = sid
			if err := sess.Save(c.Request, c.Writer); err != nil {
				log.Error("Failed to save session cookie", err)
				errors.InternalError(c, "")
				c.Abort()
				return
			}
			log.Debug("New session started", map[string]interface{}{
				"session_id": sid,
			})
		}

		c.Set(SessionIDKey, sid)
		c.Next()
	}
}

// GetSessionID returns the id set by Session.
func GetSessionID(c *gin.Context) (string, bool) {
	sid := c.GetString(SessionIDKey)
	return sid, sid != ""
}
