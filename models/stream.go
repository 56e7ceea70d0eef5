package models

import "time"

const StreamTable = "crm_streams"

// Stream is a revenue stream: the tenant unit every CRM row hangs off.
// The ID is immutable once created.
type Stream struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedBy   string    `gorm:"type:uuid;index;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Stream) TableName() string { return StreamTable }
