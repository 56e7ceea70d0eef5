package controllers

import (
	"net/http"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type EventController struct{ *Srv }

func GetEventController(s *Srv) *EventController { return &EventController{Srv: s} }

// GET /api/events?from=&to= (RFC 3339; both optional)
func (ec *EventController) List(c *gin.Context) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid from"})
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid to"})
			return
		}
		to = t
	}
	events, err := ec.Repo.ListEvents(c.Request.Context(), app.StreamID(c), from, to)
	if err != nil {
		httpError(c, err)
		return
	}
	if ec.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"events": events, "streamId": app.StreamID(c)})
}

// POST /api/events
func (ec *EventController) Create(c *gin.Context) {
	var in struct {
		Title    string    `json:"title" binding:"required"`
		Location string    `json:"location"`
		StartsAt time.Time `json:"startsAt" binding:"required"`
		EndsAt   time.Time `json:"endsAt" binding:"required"`
		AllDay   bool      `json:"allDay"`
		Notes    string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !in.EndsAt.After(in.StartsAt) {
		c.JSON(http.StatusBadRequest, app.H{"error": "endsAt must be after startsAt"})
		return
	}
	e := &models.Event{
		StreamID:  app.StreamID(c),
		Title:     in.Title,
		Location:  in.Location,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		AllDay:    in.AllDay,
		Notes:     in.Notes,
		CreatedBy: app.UserID(c),
	}
	if err := ec.Repo.CreateEvent(c.Request.Context(), e); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// PUT /api/events/:id
func (ec *EventController) Update(c *gin.Context) {
	var in struct {
		Title    *string    `json:"title"`
		Location *string    `json:"location"`
		StartsAt *time.Time `json:"startsAt"`
		EndsAt   *time.Time `json:"endsAt"`
		AllDay   *bool      `json:"allDay"`
		Notes    *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Location != nil {
		updates["location"] = *in.Location
	}
	if in.StartsAt != nil {
		updates["starts_at"] = *in.StartsAt
	}
	if in.EndsAt != nil {
		updates["ends_at"] = *in.EndsAt
	}
	if in.AllDay != nil {
		updates["all_day"] = *in.AllDay
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	e, err := ec.Repo.UpdateEvent(c.Request.Context(), app.StreamID(c), c.Param("id"), updates)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /api/events/:id
func (ec *EventController) Delete(c *gin.Context) {
	if err := ec.Repo.DeleteEvent(c.Request.Context(), app.StreamID(c), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
