package controllers

import (
	"net/http"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type MemberController struct{ *Srv }

func GetMemberController(s *Srv) *MemberController { return &MemberController{Srv: s} }

// GET /api/stream/members
func (mc *MemberController) ListMembers(c *gin.Context) {
	members, err := mc.Repo.ListMembers(c.Request.Context(), app.StreamID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"members": members})
}

// PUT /api/stream/members/:userId: change role and board overrides.
// Demoting the last owner is rejected by the repo.
func (mc *MemberController) UpdateMember(c *gin.Context) {
	var in struct {
		Role  models.Role       `json:"role" binding:"required"`
		Perms models.BoardPerms `json:"perms"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !in.Role.Valid() {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
		return
	}
	m, err := mc.Repo.UpdateMembership(c.Request.Context(), app.StreamID(c), c.Param("userId"), in.Role, in.Perms)
	if err != nil {
		httpError(c, err)
		return
	}
	detail := "role=" + string(in.Role)
	_, _ = mc.Repo.LogActivity(c.Request.Context(), app.StreamID(c), "member.updated", app.UserID(c), app.UserEmail(c), &detail)
	c.JSON(http.StatusOK, app.H{"membership": m})
}

// DELETE /api/stream/members/:userId. The removed user's sessions may
// still hold a reference to this stream; it fails the membership check on
// their next resolution and falls through to their other streams.
func (mc *MemberController) RemoveMember(c *gin.Context) {
	targetID := c.Param("userId")
	if err := mc.Repo.RemoveMembership(c.Request.Context(), app.StreamID(c), targetID); err != nil {
		httpError(c, err)
		return
	}
	_, _ = mc.Repo.LogActivity(c.Request.Context(), app.StreamID(c), "member.removed", app.UserID(c), app.UserEmail(c), &targetID)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// POST /api/stream/leave: leave the active stream; the last owner cannot
// leave. The caller's reference is cleared so resolution falls back.
func (mc *MemberController) Leave(c *gin.Context) {
	if err := mc.Repo.RemoveMembership(c.Request.Context(), app.StreamID(c), app.UserID(c)); err != nil {
		httpError(c, err)
		return
	}
	_ = mc.clearActiveStream(c, app.SessionID(c))
	c.JSON(http.StatusOK, app.H{"ok": true})
}
