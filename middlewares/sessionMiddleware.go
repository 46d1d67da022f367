package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/shop_backend/appctx"
	"github.com/mmdatafocus/shop_backend/config"
	"github.com/mmdatafocus/shop_backend/sessions"
)

const SessionCookieName = "sessionid"

// SessionMiddleware loads the session named by the cookie, or starts a new one,
// and saves it after the handler when it was modified.
func SessionMiddleware(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *sessions.Session
		if id, err := c.Cookie(SessionCookieName); err == nil && id != "" {
			loaded, err := store.Load(c.Request.Context(), id)
			if err != nil && !errors.Is(err, sessions.ErrSessionNotFound) {
				config.LogError(config.GetLogger(), "middlewares", "SessionMiddleware", "Load session", id, err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}
			sess = loaded
		}
		if sess == nil {
			sess = sessions.New()
		}

		// the cookie has to go out with the headers, before the handler writes a body
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sess.ID, int(sessions.Lifespan().Seconds()), "/", "", false, true)

		c.Set(string(appctx.ContextKeySession), sess)
		c.Request = c.Request.WithContext(appctx.Set(c.Request.Context(), appctx.ContextKeySession, sess))
		c.Next()

		if err := SaveSession(c, store); err != nil {
			config.LogError(config.GetLogger(), "middlewares", "SessionMiddleware", "Save session", sess.ID, err)
		}
	}
}

func GetSession(c *gin.Context) *sessions.Session {
	sess, _ := c.Request.Context().Value(appctx.ContextKeySession).(*sessions.Session)
	return sess
}

// SaveSession persists the request's session if it changed. Handlers call it
// before writing the response so the next request sees the change.
func SaveSession(c *gin.Context, store sessions.Store) error {
	sess := GetSession(c)
	if sess == nil || !sess.Modified() {
		return nil
	}
	return store.Save(c.Request.Context(), sess)
}
