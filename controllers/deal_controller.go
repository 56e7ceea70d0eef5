package controllers

import (
	"net/http"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type DealController struct{ *Srv }

func GetDealController(s *Srv) *DealController { return &DealController{Srv: s} }

// GET /api/deals?stage=
func (dc *DealController) List(c *gin.Context) {
	stage := models.DealStage(c.Query("stage"))
	if stage != "" && !stage.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid stage"})
		return
	}
	deals, err := dc.Repo.ListDeals(c.Request.Context(), app.StreamID(c), stage)
	if err != nil {
		httpError(c, err)
		return
	}
	if dc.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"deals": deals, "streamId": app.StreamID(c)})
}

// GET /api/deals/summary: per-stage counts and totals for the dashboard.
func (dc *DealController) Summary(c *gin.Context) {
	sum, err := dc.Repo.SummarizeDeals(c.Request.Context(), app.StreamID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	if dc.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"summary": sum, "streamId": app.StreamID(c)})
}

// POST /api/deals
func (dc *DealController) Create(c *gin.Context) {
	var in struct {
		Title      string     `json:"title" binding:"required"`
		CustomerID *string    `json:"customerId"`
		Stage      string     `json:"stage"`
		ValueCents int64      `json:"valueCents"`
		Currency   string     `json:"currency"`
		CloseDate  *time.Time `json:"closeDate"`
		Notes      string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	stage := models.StageLead
	if in.Stage != "" {
		stage = models.DealStage(in.Stage)
		if !stage.Valid() {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid stage"})
			return
		}
	}
	if in.CustomerID != nil {
		// The referenced customer must live in the same stream.
		if _, err := dc.Repo.FindCustomer(c.Request.Context(), app.StreamID(c), *in.CustomerID); err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "unknown customer"})
			return
		}
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	d := &models.Deal{
		StreamID:   app.StreamID(c),
		Title:      in.Title,
		CustomerID: in.CustomerID,
		Stage:      stage,
		ValueCents: in.ValueCents,
		Currency:   currency,
		CloseDate:  in.CloseDate,
		Notes:      in.Notes,
		CreatedBy:  app.UserID(c),
	}
	if err := dc.Repo.CreateDeal(c.Request.Context(), d); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// PUT /api/deals/:id
func (dc *DealController) Update(c *gin.Context) {
	var in struct {
		Title      *string    `json:"title"`
		Stage      *string    `json:"stage"`
		ValueCents *int64     `json:"valueCents"`
		CloseDate  *time.Time `json:"closeDate"`
		Notes      *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Stage != nil {
		stage := models.DealStage(*in.Stage)
		if !stage.Valid() {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid stage"})
			return
		}
		updates["stage"] = stage
	}
	if in.ValueCents != nil {
		updates["value_cents"] = *in.ValueCents
	}
	if in.CloseDate != nil {
		updates["close_date"] = *in.CloseDate
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	d, err := dc.Repo.UpdateDeal(c.Request.Context(), app.StreamID(c), c.Param("id"), updates)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DELETE /api/deals/:id
func (dc *DealController) Delete(c *gin.Context) {
	if err := dc.Repo.DeleteDeal(c.Request.Context(), app.StreamID(c), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
