package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/db"

	"github.com/gin-gonic/gin"
)

// JoinController handles the public redemption surface behind
// /join/{streamId}/{token} links.
type JoinController struct{ *Srv }

func GetJoinController(s *Srv) *JoinController { return &JoinController{Srv: s} }

// GET /join/:streamId/:token: public preview so the front end can show
// what is being joined and pre-fill sign-in with the invited email.
func (jc *JoinController) Preview(c *gin.Context) {
	inv, err := jc.Repo.GetInvitationByToken(c.Request.Context(), c.Param("token"))
	if err != nil || inv.StreamID != c.Param("streamId") {
		c.JSON(http.StatusNotFound, app.H{"error": "invalid or expired invite"})
		return
	}
	if inv.Status.Resolved() {
		c.JSON(http.StatusConflict, app.H{"error": "invalid or expired invite"})
		return
	}
	st, err := jc.Repo.FindStreamByID(c.Request.Context(), inv.StreamID)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"stream": app.H{"id": st.ID, "name": st.Name},
		"email":  inv.Email,
		"role":   inv.Role,
	})
}

// POST /join/:streamId/:token/accept: authenticated redemption. The repo
// guarantees at-most-once acceptance; a session signed in as someone other
// than the invited email gets a redirect hint instead of a membership.
func (jc *JoinController) Accept(c *gin.Context) {
	token := c.Param("token")
	streamID := c.Param("streamId")

	if inv, err := jc.Repo.GetInvitationByToken(c.Request.Context(), token); err != nil || inv.StreamID != streamID {
		c.JSON(http.StatusNotFound, app.H{"error": "invalid or expired invite"})
		return
	}

	membership, inv, err := jc.Repo.AcceptInvitation(c.Request.Context(), token, app.UserID(c), app.UserEmail(c))
	if errors.Is(err, db.ErrWrongIdentity) {
		// Do not attach the invite to the wrong identity; send the caller
		// back through sign-in as the invited address.
		redirect := strings.TrimRight(jc.Cfg.WebOrigin, "/") +
			"/login?next=" + url.QueryEscape("/join/"+streamID+"/"+token)
		c.JSON(http.StatusConflict, app.H{
			"error":    "invite was issued for a different email",
			"redirect": redirect,
		})
		return
	}
	if err != nil {
		httpError(c, err)
		return
	}

	// Joining switches the new member into the stream right away.
	ref, err := jc.activateStream(c, app.SessionID(c), inv.StreamID)
	if err != nil {
		httpError(c, err)
		return
	}
	_, _ = jc.Repo.LogActivity(c.Request.Context(), inv.StreamID, "member.joined", app.UserID(c), app.UserEmail(c), nil)

	c.JSON(http.StatusOK, app.H{
		"membership": membership,
		"active":     ref,
	})
}
