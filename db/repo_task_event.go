package db

import (
	"context"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"
)

// Tasks

func (r *Repo) CreateTask(ctx context.Context, t *models.Task) error {
	if t.ID == "" {
		t.ID = newUUID()
	}
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *Repo) FindTask(ctx context.Context, streamID, id string) (*models.Task, error) {
	var t models.Task
	if err := r.DB.WithContext(ctx).
		First(&t, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) ListTasks(ctx context.Context, streamID string, status models.TaskStatus, assigneeID string) ([]models.Task, error) {
	tx := r.DB.WithContext(ctx).Where("stream_id = ?", streamID).Order("due_at ASC NULLS LAST, created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if assigneeID != "" {
		tx = tx.Where("assignee_id = ?", assigneeID)
	}
	var out []models.Task
	err := tx.Find(&out).Error
	return out, err
}

func (r *Repo) UpdateTask(ctx context.Context, streamID, id string, updates map[string]interface{}) (*models.Task, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND stream_id = ?", id, streamID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindTask(ctx, streamID, id)
}

func (r *Repo) CompleteTask(ctx context.Context, streamID, id string) (*models.Task, error) {
	now := time.Now().UTC()
	return r.UpdateTask(ctx, streamID, id, map[string]interface{}{
		"status":  models.TaskDone,
		"done_at": now,
	})
}

func (r *Repo) DeleteTask(ctx context.Context, streamID, id string) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND stream_id = ?", id, streamID).
		Delete(&models.Task{}).Error
}

// Events

func (r *Repo) CreateEvent(ctx context.Context, e *models.Event) error {
	if e.ID == "" {
		e.ID = newUUID()
	}
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *Repo) FindEvent(ctx context.Context, streamID, id string) (*models.Event, error) {
	var e models.Event
	if err := r.DB.WithContext(ctx).
		First(&e, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns events overlapping [from, to); zero bounds list all.
func (r *Repo) ListEvents(ctx context.Context, streamID string, from, to time.Time) ([]models.Event, error) {
	tx := r.DB.WithContext(ctx).Where("stream_id = ?", streamID).Order("starts_at ASC")
	if !from.IsZero() {
		tx = tx.Where("ends_at > ?", from)
	}
	if !to.IsZero() {
		tx = tx.Where("starts_at < ?", to)
	}
	var out []models.Event
	err := tx.Find(&out).Error
	return out, err
}

func (r *Repo) UpdateEvent(ctx context.Context, streamID, id string, updates map[string]interface{}) (*models.Event, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND stream_id = ?", id, streamID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindEvent(ctx, streamID, id)
}

func (r *Repo) DeleteEvent(ctx context.Context, streamID, id string) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND stream_id = ?", id, streamID).
		Delete(&models.Event{}).Error
}
