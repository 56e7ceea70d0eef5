package db

import (
	"context"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/gorm"
)

// CreateStream creates the stream and its owner membership in one
// transaction; a stream never exists without an owner.
func (r *Repo) CreateStream(ctx context.Context, name, description, creatorID string) (*models.Stream, error) {
	st := &models.Stream{
		ID:          newUUID(),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(st).Error; err != nil {
			return err
		}
		m := &models.StreamMembership{
			ID:       newUUID(),
			StreamID: st.ID,
			UserID:   creatorID,
			Role:     models.RoleOwner,
		}
		return tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Repo) FindStreamByID(ctx context.Context, id string) (*models.Stream, error) {
	var st models.Stream
	if err := r.DB.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *Repo) UpdateStream(ctx context.Context, id, name, description string) (*models.Stream, error) {
	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	updates["description"] = description
	if err := r.DB.WithContext(ctx).Model(&models.Stream{}).
		Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindStreamByID(ctx, id)
}

// StreamEntry is a directory row: the stream plus the caller's membership.
type StreamEntry struct {
	models.Stream
	Role     models.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// ListStreamsForUser returns every stream the user belongs to, ordered by
// membership creation time ascending. The first entry doubles as the
// deterministic fallback when no active stream is set. Empty result is not
// an error.
func (r *Repo) ListStreamsForUser(ctx context.Context, userID string) ([]StreamEntry, error) {
	var entries []StreamEntry
	err := r.DB.WithContext(ctx).
		Table(models.StreamTable).
		Select(models.StreamTable+".*, m.role AS role, m.created_at AS joined_at").
		Joins("JOIN "+models.MembershipTable+" m ON m.stream_id = "+models.StreamTable+".id").
		Where("m.user_id = ?", userID).
		Order("m.created_at ASC, m.id ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteStream removes the stream and everything scoped to it in one
// transaction: CRM rows, invitations, memberships, activity, the stream row.
func (r *Repo) DeleteStream(ctx context.Context, streamID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Stream
		if err := tx.First(&st, "id = ?", streamID).Error; err != nil {
			return err
		}
		scoped := []interface{}{
			&models.Customer{},
			&models.Deal{},
			&models.Prospect{},
			&models.Task{},
			&models.Event{},
			&models.StreamInvitation{},
			&models.StreamMembership{},
			&models.ActivityLog{},
		}
		for _, m := range scoped {
			if err := tx.Where("stream_id = ?", streamID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&st).Error
	})
}
