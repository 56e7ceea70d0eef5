package db

import (
	"context"
	"strings"

	"github.com/Gautamrajanand/crm-supabase-sub000/models"
)

// Every query below is stream-scoped: the WHERE clause always carries the
// stream id, so a row can never leak across streams even with a guessed id.

func (r *Repo) CreateCustomer(ctx context.Context, cu *models.Customer) error {
	if cu.ID == "" {
		cu.ID = newUUID()
	}
	return r.DB.WithContext(ctx).Create(cu).Error
}

func (r *Repo) FindCustomer(ctx context.Context, streamID, id string) (*models.Customer, error) {
	var cu models.Customer
	if err := r.DB.WithContext(ctx).
		First(&cu, "id = ? AND stream_id = ?", id, streamID).Error; err != nil {
		return nil, err
	}
	return &cu, nil
}

func (r *Repo) ListCustomers(ctx context.Context, streamID, q string) ([]models.Customer, error) {
	tx := r.DB.WithContext(ctx).Where("stream_id = ?", streamID).Order("created_at DESC")
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	var out []models.Customer
	err := tx.Find(&out).Error
	return out, err
}

func (r *Repo) UpdateCustomer(ctx context.Context, streamID, id string, updates map[string]interface{}) (*models.Customer, error) {
	if err := r.DB.WithContext(ctx).Model(&models.Customer{}).
		Where("id = ? AND stream_id = ?", id, streamID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.FindCustomer(ctx, streamID, id)
}

func (r *Repo) DeleteCustomer(ctx context.Context, streamID, id string) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND stream_id = ?", id, streamID).
		Delete(&models.Customer{}).Error
}
