package db

import (
	"context"
	"time"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateProspect(ctx context.Context, p *models.Prospect) error {
	if p.ID == "" {
		p.ID = newUUID()
	}
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindProspect(ctx context.Context, streamID, id string) (*models.Prospect, error) {
	var p models.Prospect
	if err := r.DB.WithContext(ctx).
		First(&p, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListProspects(ctx context.Context, streamID string, status models.ProspectStatus) ([]models.Prospect, error) {
	tx := r.DB.WithContext(ctx).Where("stream_id = ?", streamID).Order("created_at DESC")
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	var out []models.Prospect
	err := tx.Find(&out).Error
	return out, err
}

func (r *Repo) UpdateProspect(ctx context.Context, streamID, id string, updates map[string]interface{}) (*models.Prospect, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Prospect{}).
		Where("id = ? AND stream_id = ?", id, streamID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindProspect(ctx, streamID, id)
}

func (r *Repo) DeleteProspect(ctx context.Context, streamID, id string) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND stream_id = ?", id, streamID).
		Delete(&models.Prospect{}).Error
}

// ConvertProspect turns a prospect into a customer in one transaction; the
// prospect row is marked converted, not deleted, so outreach history stays.
func (r *Repo) ConvertProspect(ctx context.Context, streamID, id, actorID string) (*models.Customer, error) {
	var cu *models.Customer
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Prospect
		if err := tx.First(&p, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		res := tx.Model(&models.Prospect{}).
			Where("id = ? AND stream_id = ? AND status <> ?", id, streamID, models.ProspectConverted).
			Updates(map[string]interface{}{"status": models.ProspectConverted, "last_contacted_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		c := &models.Customer{
			ID:        newUUID(),
			StreamID:  streamID,
			Name:      p.Name,
			Company:   p.Company,
			Email:     p.Email,
			Notes:     p.Notes,
			CreatedBy: actorID,
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		cu = c
		return nil
	})
	return cu, err
}
