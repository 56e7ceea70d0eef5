package controllers

import (
	"net/http"
	"strings"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthController owns the thin session surface. Credential verification
// itself happens upstream (the deployment fronts an identity provider);
// these endpoints exchange an established identity for an app session.
type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var in struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"displayName"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := ac.Repo.FindOrCreateUser(c.Request.Context(), in.Email, in.DisplayName, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	if _, err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, u.Email, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

// POST /auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := ac.Repo.FindUserByEmail(c.Request.Context(), strings.ToLower(in.Email))
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unknown account"})
		return
	}
	if _, err := ac.issueSession(c.Request.Context(), c.Writer, u.ID, u.Email, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /auth/logout: kills the session and the active stream reference
// together; neither survives sign-out.
func (ac *AuthController) Logout(c *gin.Context) {
	sid := app.SessionID(c)
	_ = ac.AppSess.Delete(c.Request.Context(), sid)
	_ = ac.clearActiveStream(c, sid)
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /auth/whoami
func (ac *AuthController) WhoAmI(c *gin.Context) {
	u, err := ac.Repo.FindUserByID(c.Request.Context(), app.UserID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}
