package db

import (
	"context"
	"errors"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetMembership resolves the caller's membership, mapping a missing row to
// ErrNotAMember. This is the single role/permission lookup every scoped
// request goes through.
func (r *Repo) GetMembership(ctx context.Context, userID, streamID string) (*models.StreamMembership, error) {
	var m models.StreamMembership
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND stream_id = ?", userID, streamID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MemberEntry is a member listing row: membership plus user profile fields.
type MemberEntry struct {
	models.StreamMembership
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func (r *Repo) ListMembers(ctx context.Context, streamID string) ([]MemberEntry, error) {
	var entries []MemberEntry
	err := r.DB.WithContext(ctx).
		Table(models.MembershipTable).
		Select(models.MembershipTable+".*, u.email AS email, u.display_name AS display_name").
		Joins("JOIN crm_users u ON u.id = "+models.MembershipTable+".user_id").
		Where(models.MembershipTable+".stream_id = ?", streamID).
		Order(models.MembershipTable + ".created_at ASC").
		Scan(&entries).Error
	return entries, err
}

// AddMembership inserts a membership; an existing (stream, user) row wins
// and is returned unchanged, so duplicate joins never create ambiguity.
func (r *Repo) AddMembership(ctx context.Context, streamID, userID string, role models.Role, perms models.BoardPerms) (*models.StreamMembership, error) {
	m := &models.StreamMembership{
		ID:       newUUID(),
		StreamID: streamID,
		UserID:   userID,
		Role:     role,
		Perms:    perms,
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stream_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race or already a member: hand back the surviving row.
		return r.GetMembership(ctx, userID, streamID)
	}
	return m, nil
}

func (r *Repo) countOwners(ctx context.Context, tx *gorm.DB, streamID string) (int64, error) {
	var n int64
	err := tx.WithContext(ctx).Model(&models.StreamMembership{}).
		Where("stream_id = ? AND role = ?", streamID, models.RoleOwner).
		Count(&n).Error
	return n, err
}

// UpdateMembership changes role and/or board overrides. Demoting the last
// owner is rejected to keep the at-least-one-owner invariant.
func (r *Repo) UpdateMembership(ctx context.Context, streamID, userID string, role models.Role, perms models.BoardPerms) (*models.StreamMembership, error) {
	var out *models.StreamMembership
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.StreamMembership
		if err := tx.Where("user_id = ? AND stream_id = ?", userID, streamID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAMember
			}
			return err
		}
		if m.Role == models.RoleOwner && role != models.RoleOwner {
			n, err := r.countOwners(ctx, tx, streamID)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastOwner
			}
		}
		m.Role = role
		m.Perms = perms
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		out = &m
		return nil
	})
	return out, err
}

// RemoveMembership deletes a member. Removing the last owner is rejected.
func (r *Repo) RemoveMembership(ctx context.Context, streamID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.StreamMembership
		if err := tx.Where("user_id = ? AND stream_id = ?", userID, streamID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAMember
			}
			return err
		}
		if m.Role == models.RoleOwner {
			n, err := r.countOwners(ctx, tx, streamID)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastOwner
			}
		}
		return tx.Delete(&m).Error
	})
}
