package app

import (
	"net/http"

	"github.com/Gautamrajanand/crm-supabase-sub000/db"
	"github.com/Gautamrajanand/crm-supabase-sub000/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// StreamCookie mirrors the active stream id for server-rendered requests.
// The Redis reference is authoritative; the cookie is a client-visible copy.
const StreamCookie = "currentStreamId"

// AuthRequired resolves the session cookie and confirms the user still
// exists before letting the request through. userID, userEmail and
// sessionID land in the gin context for downstream handlers.
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("sessionID", ck.Value)
		c.Set("userID", u.ID)
		c.Set("userEmail", u.Email)
		c.Next()
	}
}

// SessionID returns the request's app session id set by AuthRequired.
func SessionID(c *gin.Context) string {
	v, _ := c.Get("sessionID")
	s, _ := v.(string)
	return s
}

func UserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	s, _ := v.(string)
	return s
}

func UserEmail(c *gin.Context) string {
	v, _ := c.Get("userEmail")
	s, _ := v.(string)
	return s
}
