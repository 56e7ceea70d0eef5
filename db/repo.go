package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

func newUUID() string { return uuid.NewString() }

// Sentinel errors; controllers map them to HTTP statuses.
var (
	ErrNotAMember     = errors.New("not a member of this stream")
	ErrLastOwner      = errors.New("stream must keep at least one owner")
	ErrInviteResolved = errors.New("invite already used or expired")
	ErrWrongIdentity  = errors.New("invite was issued for a different email")
)

// Users

func (r *Repo) TouchUserLogin(ctx context.Context, userID, ip, ua string) error {
	now := time.Now().UTC()
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_seen_at":  now,
			"login_count":   gorm.Expr("COALESCE(login_count, 0) + 1"),
			"last_login_ip": ip,
			"last_login_ua": ua,
		}).Error
}

func (r *Repo) TouchUserSeen(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", time.Now().UTC()).Error
}

func (r *Repo) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) FindOrCreateUser(ctx context.Context, email, displayName, newID string) (*models.User, error) {
	email = strings.ToLower(email)
	var u models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if displayName == "" {
			displayName = email
		}
		u = models.User{ID: newID, Email: email, DisplayName: displayName}
		if err := r.DB.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	}
	return &u, err
}

func (r *Repo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, err
}

// Activity log

func (r *Repo) LogActivity(ctx context.Context, streamID, action, actorID, actorEmail string, detail *string) (*models.ActivityLog, error) {
	entry := &models.ActivityLog{
		ID:         newUUID(),
		StreamID:   streamID,
		Action:     action,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Detail:     detail,
	}
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repo) ListActivity(ctx context.Context, streamID string, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var entries []models.ActivityLog
	err := r.DB.WithContext(ctx).
		Where("stream_id = ?", streamID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
