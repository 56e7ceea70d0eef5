package controllers

import (
	"net/http"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type OutreachController struct{ *Srv }

func GetOutreachController(s *Srv) *OutreachController { return &OutreachController{Srv: s} }

// GET /api/prospects?status=
func (oc *OutreachController) List(c *gin.Context) {
	status := models.ProspectStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid status"})
		return
	}
	prospects, err := oc.Repo.ListProspects(c.Request.Context(), app.StreamID(c), status)
	if err != nil {
		httpError(c, err)
		return
	}
	if oc.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"prospects": prospects, "streamId": app.StreamID(c)})
}

// POST /api/prospects
func (oc *OutreachController) Create(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Company string `json:"company"`
		Email   string `json:"email"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	p := &models.Prospect{
		StreamID:  app.StreamID(c),
		Name:      in.Name,
		Company:   in.Company,
		Email:     in.Email,
		Status:    models.ProspectNew,
		Notes:     in.Notes,
		CreatedBy: app.UserID(c),
	}
	if err := oc.Repo.CreateProspect(c.Request.Context(), p); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PUT /api/prospects/:id
func (oc *OutreachController) Update(c *gin.Context) {
	var in struct {
		Name      *string `json:"name"`
		Company   *string `json:"company"`
		Email     *string `json:"email"`
		Status    *string `json:"status"`
		Notes     *string `json:"notes"`
		Contacted bool    `json:"contacted"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Company != nil {
		updates["company"] = *in.Company
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.Status != nil {
		status := models.ProspectStatus(*in.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid status"})
			return
		}
		updates["status"] = status
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Contacted {
		updates["last_contacted_at"] = time.Now().UTC()
	}
	p, err := oc.Repo.UpdateProspect(c.Request.Context(), app.StreamID(c), c.Param("id"), updates)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/prospects/:id/convert turns a won prospect into a customer in
// the same stream.
func (oc *OutreachController) Convert(c *gin.Context) {
	cu, err := oc.Repo.ConvertProspect(c.Request.Context(), app.StreamID(c), c.Param("id"), app.UserID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"customer": cu})
}

// DELETE /api/prospects/:id
func (oc *OutreachController) Delete(c *gin.Context) {
	if err := oc.Repo.DeleteProspect(c.Request.Context(), app.StreamID(c), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
