package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/gorm"
)

// DefaultInviteTTL is how long an invitation stays redeemable.
const DefaultInviteTTL = 7 * 24 * time.Hour

func newInviteToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// CreateInvitation issues an invitation for (stream, email). Issuance is
// idempotent while a pending, unexpired invitation exists: that row is
// returned instead of a duplicate. A partial unique index backs this up
// against concurrent issuers.
func (r *Repo) CreateInvitation(ctx context.Context, streamID, email string, role models.Role, perms models.BoardPerms, inviterID string, ttl time.Duration) (*models.StreamInvitation, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now := time.Now().UTC()

	var existing models.StreamInvitation
	err := r.DB.WithContext(ctx).
		Where("stream_id = ? AND email = ? AND status = ?", streamID, email, models.InvitePending).
		First(&existing).Error
	if err == nil {
		if now.Before(existing.ExpiresAt) {
			return &existing, nil
		}
		// Stale pending row: resolve it so the unique index frees up.
		_ = r.expireInvitation(ctx, existing.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inv := &models.StreamInvitation{
		ID:        newUUID(),
		StreamID:  streamID,
		Email:     email,
		Role:      role,
		Perms:     perms,
		Token:     newInviteToken(),
		Status:    models.InvitePending,
		InvitedBy: inviterID,
		ExpiresAt: now.Add(ttl),
	}
	if err := r.DB.WithContext(ctx).Create(inv).Error; err != nil {
		// Concurrent issuance hit the partial unique index: return the winner.
		var winner models.StreamInvitation
		if ferr := r.DB.WithContext(ctx).
			Where("stream_id = ? AND email = ? AND status = ?", streamID, email, models.InvitePending).
			First(&winner).Error; ferr == nil {
			return &winner, nil
		}
		return nil, err
	}
	return inv, nil
}

// GetInvitationByToken resolves a redemption token. A pending invitation
// past its expiry is flipped to expired on read (best-effort) and reported
// as resolved.
func (r *Repo) GetInvitationByToken(ctx context.Context, token string) (*models.StreamInvitation, error) {
	var inv models.StreamInvitation
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		return nil, err
	}
	if inv.Status == models.InvitePending && !time.Now().UTC().Before(inv.ExpiresAt) {
		_ = r.expireInvitation(ctx, inv.ID)
		inv.Status = models.InviteExpired
	}
	return &inv, nil
}

func (r *Repo) ListInvitations(ctx context.Context, streamID string) ([]models.StreamInvitation, error) {
	var invs []models.StreamInvitation
	err := r.DB.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

func (r *Repo) expireInvitation(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&models.StreamInvitation{}).
		Where("id = ? AND status = ?", id, models.InvitePending).
		Update("status", models.InviteExpired).Error
}

// AcceptInvitation redeems a token for userID (whose email must match the
// invitation's target). The pending -> accepted flip is a conditional
// update, so of two concurrent redemptions exactly one creates the
// membership and the other observes ErrInviteResolved. All effects commit
// together or not at all.
func (r *Repo) AcceptInvitation(ctx context.Context, token, userID, userEmail string) (*models.StreamMembership, *models.StreamInvitation, error) {
	var (
		membership *models.StreamMembership
		invite     *models.StreamInvitation
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.StreamInvitation
		if err := tx.Where("token = ?", token).First(&inv).Error; err != nil {
			return err
		}
		if !strings.EqualFold(inv.Email, userEmail) {
			return ErrWrongIdentity
		}
		now := time.Now().UTC()
		if !inv.Acceptable(now) {
			return ErrInviteResolved
		}

		// The one-way transition. RowsAffected==0 means someone else
		// resolved the invitation between our read and this write.
		res := tx.Model(&models.StreamInvitation{}).
			Where("id = ? AND status = ? AND accepted_at IS NULL", inv.ID, models.InvitePending).
			Updates(map[string]interface{}{
				"status":      models.InviteAccepted,
				"accepted_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInviteResolved
		}

		// An existing membership is kept as-is; accepting an invite to a
		// stream you already belong to must not duplicate or clobber it.
		// The lookup runs on a zero-value dest so no pre-set primary key
		// sneaks into the conditions.
		m := &models.StreamMembership{}
		err := tx.Where("stream_id = ? AND user_id = ?", inv.StreamID, userID).First(m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			m = &models.StreamMembership{
				ID:       newUUID(),
				StreamID: inv.StreamID,
				UserID:   userID,
				Role:     inv.Role,
				Perms:    inv.Perms,
			}
			err = tx.Create(m).Error
		}
		if err != nil {
			return err
		}

		inv.Status = models.InviteAccepted
		inv.AcceptedAt = &now
		membership = m
		invite = &inv
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return membership, invite, nil
}

// CancelInvitation revokes a pending invitation. Already-resolved
// invitations return ErrInviteResolved.
func (r *Repo) CancelInvitation(ctx context.Context, inviteID, streamID string) error {
	res := r.DB.WithContext(ctx).Model(&models.StreamInvitation{}).
		Where("id = ? AND stream_id = ? AND status = ?", inviteID, streamID, models.InvitePending).
		Update("status", models.InviteCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteResolved
	}
	return nil
}
