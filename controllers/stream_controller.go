package controllers

import (
	"io"
	"net/http"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type StreamController struct{ *Srv }

func GetStreamController(s *Srv) *StreamController { return &StreamController{Srv: s} }

// GET /api/streams: the caller's stream directory, earliest joined first.
func (sc *StreamController) ListStreams(c *gin.Context) {
	entries, err := sc.Repo.ListStreamsForUser(c.Request.Context(), app.UserID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"streams": entries})
}

// POST /api/streams: create a stream; the creator becomes owner and the
// new stream becomes active.
func (sc *StreamController) CreateStream(c *gin.Context) {
	var in struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	st, err := sc.Repo.CreateStream(c.Request.Context(), in.Name, in.Description, app.UserID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	ref, err := sc.activateStream(c, app.SessionID(c), st.ID)
	if err != nil {
		httpError(c, err)
		return
	}
	_, _ = sc.Repo.LogActivity(c.Request.Context(), st.ID, "stream.created", app.UserID(c), app.UserEmail(c), nil)
	c.JSON(http.StatusCreated, app.H{"stream": st, "active": ref})
}

// GET /api/stream: the resolved active stream for this session.
func (sc *StreamController) GetActive(c *gin.Context) {
	m := app.Membership(c)
	st, err := sc.Repo.FindStreamByID(c.Request.Context(), m.StreamID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"stream": st,
		"role":   m.Role,
		"epoch":  app.StreamEpoch(c),
	})
}

// POST /api/streams/:id/activate: setActive. The id must map to one of
// the caller's memberships; a stale or forged id is rejected, never
// persisted.
func (sc *StreamController) Activate(c *gin.Context) {
	streamID := c.Param("id")
	if _, err := sc.Repo.GetMembership(c.Request.Context(), app.UserID(c), streamID); err != nil {
		httpError(c, err)
		return
	}
	ref, err := sc.activateStream(c, app.SessionID(c), streamID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"active": ref})
}

// PUT /api/streams/:id: rename/describe; owners and admins only.
func (sc *StreamController) UpdateStream(c *gin.Context) {
	streamID := c.Param("id")
	m, err := sc.Repo.GetMembership(c.Request.Context(), app.UserID(c), streamID)
	if err != nil {
		httpError(c, err)
		return
	}
	if !m.Role.CanInvite() {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	st, err := sc.Repo.UpdateStream(c.Request.Context(), streamID, in.Name, in.Description)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"stream": st})
}

// DELETE /api/streams/:id: owner only. Removal cascades to every scoped
// row; the caller's active reference is cleared when it pointed here.
func (sc *StreamController) DeleteStream(c *gin.Context) {
	streamID := c.Param("id")
	m, err := sc.Repo.GetMembership(c.Request.Context(), app.UserID(c), streamID)
	if err != nil {
		httpError(c, err)
		return
	}
	if m.Role != models.RoleOwner {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	if err := sc.Repo.DeleteStream(c.Request.Context(), streamID); err != nil {
		httpError(c, err)
		return
	}
	// Only the caller's reference is cleared here. Other sessions still
	// pointing at the deleted stream fail the membership check on their
	// next resolution and fall through to their earliest remaining stream.
	sid := app.SessionID(c)
	if ref, _ := sc.Streams.Get(c.Request.Context(), sid); ref != nil && ref.StreamID == streamID {
		_ = sc.clearActiveStream(c, sid)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/stream/watch: server-sent events carrying this session's
// switch notifications, so open views re-scope before their next fetch.
func (sc *StreamController) Watch(c *gin.Context) {
	sid := app.SessionID(c)
	ch, cancel := sc.Broadcast.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if ev.SessionID != sid {
				return true
			}
			c.SSEvent("stream", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// GET /api/stream/activity: audit trail for the active stream.
func (sc *StreamController) ListActivity(c *gin.Context) {
	entries, err := sc.Repo.ListActivity(c.Request.Context(), app.StreamID(c), 50)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"activity": entries})
}
