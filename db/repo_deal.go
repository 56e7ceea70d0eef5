package db

import (
	"context"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"
)

func (r *Repo) CreateDeal(ctx context.Context, d *models.Deal) error {
	if d.ID == "" {
		d.ID = newUUID()
	}
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *Repo) FindDeal(ctx context.Context, streamID, id string) (*models.Deal, error) {
	var d models.Deal
	if err := r.DB.WithContext(ctx).
		First(&d, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repo) ListDeals(ctx context.Context, streamID string, stage models.DealStage) ([]models.Deal, error) {
	tx := r.DB.WithContext(ctx).Where("stream_id = ?", streamID).Order("created_at DESC")
	if stage != "" {
		tx = tx.Where("stage = ?", stage)
	}
	var out []models.Deal
	err := tx.Find(&out).Error
	return out, err
}

func (r *Repo) UpdateDeal(ctx context.Context, streamID, id string, updates map[string]interface{}) (*models.Deal, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Deal{}).
		Where("id = ? AND stream_id = ?", id, streamID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindDeal(ctx, streamID, id)
}

func (r *Repo) DeleteDeal(ctx context.Context, streamID, id string) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND stream_id = ?", id, streamID).
		Delete(&models.Deal{}).Error
}

// DealStageSummary backs the pipeline widget on the dashboard.
type DealStageSummary struct {
	Stage models.DealStage `json:"stage"`
	Count int64            `json:"count"`
	Total int64            `json:"totalCents"`
}

func (r *Repo) SummarizeDeals(ctx context.Context, streamID string) ([]DealStageSummary, error) {
	var out []DealStageSummary
	err := r.DB.WithContext(ctx).Model(&models.Deal{}).
		Select("stage, COUNT(*) AS count, COALESCE(SUM(value_cents), 0) AS total").
		Where("stream_id = ?", streamID).
		Group("stage").
		Scan(&out).Error
	return out, err
}
