package controllers

import (
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/app"
	"github.com/Gautamrajanand/crm-supabase-sub000/db"
	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/gin-gonic/gin"
)

type InviteController struct{ *Srv }

func GetInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

func (ic *InviteController) joinLink(streamID, token string) string {
	return strings.TrimRight(ic.Cfg.WebOrigin, "/") + "/join/" + streamID + "/" + token
}

// POST /api/stream/invites: owner/admin. Repeated invites for the same
// address while one is pending return that invitation unchanged.
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Email       string            `json:"email" binding:"required,email"`
		Role        models.Role       `json:"role"`
		Perms       models.BoardPerms `json:"perms"`
		ExpiresDays int               `json:"expiresDays"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Role == "" {
		in.Role = models.RoleMember
	}
	if !in.Role.Valid() || in.Role == models.RoleOwner {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid role"})
		return
	}
	ttl := db.DefaultInviteTTL
	if in.ExpiresDays > 0 {
		ttl = time.Duration(in.ExpiresDays) * 24 * time.Hour
	}

	streamID := app.StreamID(c)
	inv, err := ic.Repo.CreateInvitation(c.Request.Context(), streamID,
		in.Email, in.Role, in.Perms, app.UserID(c), ttl)
	if err != nil {
		httpError(c, err)
		return
	}

	link := ic.joinLink(streamID, inv.Token)
	if err := ic.sendInviteMail(inv.Email, link, inv.ExpiresAt); err != nil {
		log.Printf("[invite email] send failed: %v", err)
	}
	_, _ = ic.Repo.LogActivity(c.Request.Context(), streamID, "invite.created", app.UserID(c), app.UserEmail(c), &inv.Email)

	c.JSON(http.StatusCreated, app.H{
		"invite": inv,
		"link":   link,
	})
}

// GET /api/stream/invites
func (ic *InviteController) ListInvites(c *gin.Context) {
	invs, err := ic.Repo.ListInvitations(c.Request.Context(), app.StreamID(c))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"invites": invs})
}

// POST /api/stream/invites/:inviteId/cancel: pending only; resolved
// invitations report the dedicated conflict message.
func (ic *InviteController) CancelInvite(c *gin.Context) {
	streamID := app.StreamID(c)
	if err := ic.Repo.CancelInvitation(c.Request.Context(), c.Param("inviteId"), streamID); err != nil {
		httpError(c, err)
		return
	}
	id := c.Param("inviteId")
	_, _ = ic.Repo.LogActivity(c.Request.Context(), streamID, "invite.cancelled", app.UserID(c), app.UserEmail(c), &id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// -------------------- mail --------------------

type smtpConf struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	AppName  string
}

func (ic *InviteController) loadSMTP() smtpConf {
	get := func(k, d string) string {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
		return d
	}
	return smtpConf{
		Host:     get("SMTP_HOST", ""),
		Port:     get("SMTP_PORT", "587"),
		Username: get("SMTP_USERNAME", ""),
		Password: get("SMTP_PASSWORD", ""),
		From:     get("SMTP_FROM", ""),
		AppName:  ic.Cfg.AppName,
	}
}

func (ic *InviteController) sendInviteMail(toEmail, link string, expiresAt time.Time) error {
	conf := ic.loadSMTP()

	// No SMTP configured: dev mode, log the link instead.
	if conf.Host == "" || (conf.Username == "" && conf.From == "") {
		log.Printf("[DEV] Invite link for %s: %s (expires %s)", toEmail, link, expiresAt.Format(time.RFC3339))
		return nil
	}

	fromAddr := conf.From
	if fromAddr == "" {
		fromAddr = conf.Username
	}

	subject := fmt.Sprintf("%s Invitation", conf.AppName)
	htmlBody := fmt.Sprintf(`
<div style="font-family:Arial,sans-serif; font-size:14px; color:#222">
  <p>Hello,</p>
  <p>You have been invited to collaborate on a revenue stream in <b>%s</b>. Click below to join:</p>
  <p>
    <a href="%s" style="display:inline-block; padding:10px 16px; background:#2563EB; color:#fff; text-decoration:none; border-radius:6px;">
      Accept Invitation
    </a>
  </p>
  <p>Or open this link directly:</p>
  <p><a href="%s">%s</a></p>
  <p>This invitation expires on %s.</p>
  <hr/>
  <p style="color:#666">If you did not expect this email, you can safely ignore it.</p>
</div>
`, conf.AppName, link, link, link, expiresAt.Format("Jan 2, 2006"))

	msg := buildMIMEWithFromName(conf.AppName, fromAddr, toEmail, subject, htmlBody)

	auth := smtp.PlainAuth("", conf.Username, conf.Password, conf.Host)
	addr := conf.Host + ":" + conf.Port
	return smtp.SendMail(addr, auth, fromAddr, []string{toEmail}, []byte(msg))
}

func buildMIMEWithFromName(fromName, fromAddr, to, subject, html string) string {
	headers := []string{
		fmt.Sprintf("From: %s <%s>", fromName, fromAddr),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
	}
	return strings.Join(headers, "\r\n") + "\r\n\r\n" + html
}
