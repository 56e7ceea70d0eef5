package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/db"
	"github.com/Gautamrajanand/crm-supabase-sub000/notify"
	"github.com/Gautamrajanand/crm-supabase-sub000/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	Streams   *session.ActiveStreamStore
	Broadcast *notify.Broadcaster
	WebOrigin string
	Cfg       app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AppSess:   a.AppSessions(),
		Streams:   a.ActiveStreams(),
		Broadcast: a.Broadcast,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

func (s *Srv) secureCookies() bool { return strings.HasPrefix(s.WebOrigin, "https://") }

func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies(),
	})
}

// The stream cookie is readable by the front end (not HttpOnly); it mirrors
// the Redis reference so server-rendered routes and the SPA agree.
func (s *Srv) setStreamCookie(w http.ResponseWriter, streamID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.StreamCookie,
		Value:    streamID,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearStreamCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.StreamCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secureCookies(),
	})
}

// issueSession creates the Redis session, sets the cookie and records the
// login snapshot.
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, email, ip, ua string) (string, error) {
	_ = s.Repo.TouchUserLogin(ctx, userID, ip, ua)
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID, email); err != nil {
		return "", err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return id, nil
}

// activateStream is the single setActive path: persists the Redis
// reference, mirrors the cookie and broadcasts the switch once.
func (s *Srv) activateStream(c *gin.Context, sessionID, streamID string) (*session.StreamRef, error) {
	ref, err := s.Streams.Set(c.Request.Context(), sessionID, streamID)
	if err != nil {
		return nil, err
	}
	s.setStreamCookie(c.Writer, streamID, s.Cfg.SessionTTL)
	s.Broadcast.Publish(c.Request.Context(), notify.StreamChange{
		SessionID: sessionID,
		StreamID:  streamID,
		Epoch:     ref.Epoch,
	})
	return ref, nil
}

// clearActiveStream drops the reference, expires the cookie in the same
// response and broadcasts a null switch.
func (s *Srv) clearActiveStream(c *gin.Context, sessionID string) error {
	if err := s.Streams.Clear(c.Request.Context(), sessionID); err != nil {
		return err
	}
	s.clearStreamCookie(c.Writer)
	epoch, _ := s.Streams.Epoch(c.Request.Context(), sessionID)
	s.Broadcast.Publish(c.Request.Context(), notify.StreamChange{
		SessionID: sessionID,
		StreamID:  "",
		Epoch:     epoch,
	})
	return nil
}

// abortStale answers 409 when the session switched streams while this
// request's scoped read was in flight; the caller must retry against the
// new stream instead of rendering stale rows.
func (s *Srv) abortStale(c *gin.Context) bool {
	stale, err := s.Streams.Stale(c.Request.Context(), app.SessionID(c), app.StreamEpoch(c))
	if err != nil || !stale {
		return false
	}
	c.AbortWithStatusJSON(http.StatusConflict, app.H{"error": "stale stream", "streamId": app.StreamID(c)})
	return true
}

// httpError maps repo sentinels onto statuses; anything unknown is a 500.
func httpError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotAMember):
		c.JSON(http.StatusForbidden, app.H{"error": "not a member of this stream"})
	case errors.Is(err, db.ErrLastOwner):
		c.JSON(http.StatusConflict, app.H{"error": "stream must keep at least one owner"})
	case errors.Is(err, db.ErrInviteResolved):
		c.JSON(http.StatusConflict, app.H{"error": "invalid or expired invite"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}
