package models

import "time"

const CustomerTable = "crm_customers"

// Customer rows are always stream-scoped; every repo query filters on
// StreamID, never on the customer id alone.
type Customer struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	StreamID string `gorm:"type:uuid;index;not null" json:"streamId"`

	Name    string `gorm:"size:200;not null" json:"name"`
	Company string `gorm:"size:200" json:"company,omitempty"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:40" json:"phone,omitempty"`
	Notes   string `gorm:"size:2000" json:"notes,omitempty"`

	CreatedBy string    `gorm:"type:uuid" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Customer) TableName() string { return CustomerTable }
