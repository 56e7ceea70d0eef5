package controllers

import (
	"net/http"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type CustomerController struct{ *Srv }

func GetCustomerController(s *Srv) *CustomerController { return &CustomerController{Srv: s} }

// GET /api/customers?q=
func (cc *CustomerController) List(c *gin.Context) {
	customers, err := cc.Repo.ListCustomers(c.Request.Context(), app.StreamID(c), c.Query("q"))
	if err != nil {
		httpError(c, err)
		return
	}
	if cc.abortStale(c) {
		return
	}
	c.JSON(http.StatusOK, app.H{"customers": customers, "streamId": app.StreamID(c)})
}

// POST /api/customers
func (cc *CustomerController) Create(c *gin.Context) {
	var in struct {
		Name    string `json:"name" binding:"required"`
		Company string `json:"company"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cu := &models.Customer{
		StreamID:  app.StreamID(c),
		Name:      in.Name,
		Company:   in.Company,
		Email:     in.Email,
		Phone:     in.Phone,
		Notes:     in.Notes,
		CreatedBy: app.UserID(c),
	}
	if err := cc.Repo.CreateCustomer(c.Request.Context(), cu); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cu)
}

// GET /api/customers/:id
func (cc *CustomerController) Get(c *gin.Context) {
	cu, err := cc.Repo.FindCustomer(c.Request.Context(), app.StreamID(c), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// PUT /api/customers/:id
func (cc *CustomerController) Update(c *gin.Context) {
	var in struct {
		Name    *string `json:"name"`
		Company *string `json:"company"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Notes   *string `json:"notes"`
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
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	cu, err := cc.Repo.UpdateCustomer(c.Request.Context(), app.StreamID(c), c.Param("id"), updates)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// DELETE /api/customers/:id
func (cc *CustomerController) Delete(c *gin.Context) {
	if err := cc.Repo.DeleteCustomer(c.Request.Context(), app.StreamID(c), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
